package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/smach/authorfeed"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nodeText returns the whitespace-normalized text of each text node in sel,
// joined by sep. Script and style content and the subtree rooted at skip
// are ignored.
func nodeText(sel *goquery.Selection, sep string, skip map[*html.Node]bool) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if skip[n] {
			return
		}
		switch n.Type {
		case html.TextNode:
			if t := authorfeed.NormalizeSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}

// linkLabel returns the explicit title or aria-label of a link.
func linkLabel(a *goquery.Selection) string {
	for _, attr := range []string{"title", "aria-label"} {
		if v, ok := a.Attr(attr); ok {
			if v = authorfeed.NormalizeSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// resolveURL turns an anchor href into the absolute article URL used as the
// feed item link and GUID. Fragments are dropped so "#comments" links collapse
// into the article they point at. Links back to the profile page itself
// resolve to "".
func resolveURL(profile *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := profile.ResolveReference(ref)
	abs.Fragment = ""

	self := *profile
	self.Fragment = ""
	if abs.String() == self.String() {
		return ""
	}
	return abs.String()
}

// skippedSchemes are href prefixes that never lead to an article.
var skippedSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// isNonHTTPLink reports whether href uses one of skippedSchemes.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(href, scheme) {
			return true
		}
	}
	return false
}
