// Package etree encodes feeds as RSS 2.0 documents using github.com/beevik/etree.
package etree

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/smach/authorfeed"
)

// XML namespaces declared on the rss element.
const (
	AtomNamespace = "http://www.w3.org/2005/Atom"
	DCNamespace   = "http://purl.org/dc/elements/1.1/"
)

// Ensure Encoder implements authorfeed.FeedEncoder at compile time.
var _ authorfeed.FeedEncoder = (*Encoder)(nil)

// Encoder writes feeds as RSS 2.0 with the atom and dc extensions.
type Encoder struct {
	indent int
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithIndent sets the number of spaces per nesting level. Zero disables
// indentation. Defaults to 2.
func WithIndent(n int) Option {
	return func(e *Encoder) {
		e.indent = n
	}
}

// NewEncoder creates a new Encoder.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{indent: 2}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode serializes the feed. Text content is escaped for the five reserved
// markup characters; item descriptions are wrapped in CDATA sections.
func (e *Encoder) Encode(f *authorfeed.Feed) ([]byte, error) {
	if f == nil {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "feed required")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")
	rss.CreateAttr("xmlns:atom", AtomNamespace)
	rss.CreateAttr("xmlns:dc", DCNamespace)

	ch := rss.CreateElement("channel")
	textElement(ch, "title", f.Channel.Title)
	textElement(ch, "link", f.Channel.Link)
	textElement(ch, "description", f.Channel.Description)
	textElement(ch, "language", f.Channel.Language)
	textElement(ch, "lastBuildDate", formatDate(f.LastBuildDate))
	textElement(ch, "generator", f.Channel.Generator)
	textElement(ch, "ttl", strconv.Itoa(f.Channel.TTL))

	self := ch.CreateElement("atom:link")
	self.CreateAttr("href", f.Channel.SelfURL)
	self.CreateAttr("rel", "self")
	self.CreateAttr("type", "application/rss+xml")

	for _, item := range f.Items {
		encodeItem(ch, item)
	}

	if e.indent > 0 {
		doc.Indent(e.indent)
	}

	b, err := doc.WriteToBytes()
	if err != nil {
		return nil, authorfeed.Errorf(authorfeed.EINTERNAL, "writing feed XML: %v", err)
	}
	return b, nil
}

func encodeItem(parent *etree.Element, item *authorfeed.Item) {
	el := parent.CreateElement("item")
	textElement(el, "title", item.Title)
	textElement(el, "link", item.Link)

	desc := el.CreateElement("description")
	cdata(desc, item.Description)

	textElement(el, "dc:creator", item.Creator)
	textElement(el, "pubDate", formatDate(item.PubDate))

	guid := el.CreateElement("guid")
	guid.CreateAttr("isPermaLink", "true")
	guid.SetText(item.GUID)
}

func textElement(parent *etree.Element, tag, text string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(text)
	return el
}

// cdata adds s to el as CDATA. A "]]>" sequence cannot appear inside one
// section, so it is split across two.
func cdata(el *etree.Element, s string) {
	parts := strings.Split(s, "]]>")
	for i, part := range parts {
		if i > 0 {
			part = ">" + part
		}
		if i < len(parts)-1 {
			part += "]]"
		}
		el.CreateCData(part)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC1123Z)
}
