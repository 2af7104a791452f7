package goquery

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/smach/authorfeed"
	"golang.org/x/net/html"
)

const (
	headingSelector = "h1, h2, h3, h4, [class*=title], [class*=headline]"
	bylineSelector  = "[rel=author], [itemprop=author], [class*=byline], [class*=author]"
	summarySelector = "[class*=summary], [class*=excerpt], [class*=dek], [class*=description], " +
		"[class*=teaser-text], [itemprop=description]"
	sectionSelector = "section, aside"

	// maxHeadingText rejects title-classed wrappers that hold a whole listing.
	maxHeadingText = 300

	// maxBylineText rejects author-classed elements that are not bylines.
	maxBylineText = 120
)

// filter reports whether the candidate belongs to the target author and sits
// outside labeled non-primary sections. The string names the rejection reason.
func (e *Extractor) filter(c *candidate) (bool, string) {
	if names := structuredAuthors(c.container); len(names) > 0 {
		for _, name := range names {
			if authorfeed.SameAuthor(name, e.author) {
				return e.filterSections(c)
			}
		}
		return false, "structured byline names " + names[0]
	}

	if !authorfeed.AttributedTo(c.ContainerText, e.author) {
		return false, "foreign byline"
	}
	return e.filterSections(c)
}

func (e *Extractor) filterSections(c *candidate) (bool, string) {
	skip := map[*html.Node]bool{c.link.Get(0): true}
	c.container.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		skip[h.Get(0)] = true
	})
	if authorfeed.HasSectionMarker(nodeText(c.container, "\n", skip), e.markers) {
		return false, "section marker in container"
	}

	rejected := false
	c.link.ParentsFiltered(sectionSelector).EachWithBreak(func(_ int, sec *goquery.Selection) bool {
		label, _ := sec.Attr("aria-label")
		heading := sec.ChildrenFiltered("h1, h2, h3, h4, h5, h6, header").First()
		if authorfeed.HasSectionMarker(label+"\n"+nodeText(heading, "\n", nil), e.markers) {
			rejected = true
			return false
		}
		return true
	})
	if rejected {
		return false, "section heading marker"
	}
	return true, ""
}

// structuredAuthors returns the distinct names in byline elements of the container.
func structuredAuthors(container *goquery.Selection) []string {
	var names []string
	container.Find(bylineSelector).Each(func(_ int, el *goquery.Selection) {
		text := nodeText(el, "\n", nil)
		if text == "" || len(text) > maxBylineText {
			return
		}
		name := authorfeed.CleanAuthorName(text)
		if name == "" {
			return
		}
		for _, existing := range names {
			if authorfeed.SameAuthor(existing, name) {
				return
			}
		}
		names = append(names, name)
	})
	return names
}

// rawTitle picks the title source: a heading around, inside or next to the
// link, then the link's title attribute, then the anchor text.
func (e *Extractor) rawTitle(c *candidate) string {
	if t := headingText(c.link.ParentsFiltered(headingSelector).First()); t != "" {
		return t
	}
	if t := headingText(c.link.Find(headingSelector).First()); t != "" {
		return t
	}
	if e.singleTarget(c) {
		var out string
		c.container.Find(headingSelector).EachWithBreak(func(_ int, h *goquery.Selection) bool {
			out = headingText(h)
			return out == ""
		})
		if out != "" {
			return out
		}
	}
	if t := linkLabel(c.link); t != "" {
		return t
	}
	return c.AnchorText
}

func headingText(h *goquery.Selection) string {
	if h.Length() == 0 {
		return ""
	}
	t := nodeText(h, " ", nil)
	if t == "" || len(t) > maxHeadingText || authorfeed.IsMetadataBlob(t) {
		return ""
	}
	return t
}

// singleTarget reports whether every article link in the container points
// at the candidate's URL, so container headings can be trusted for it.
func (e *Extractor) singleTarget(c *candidate) bool {
	single := true
	c.container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if u := e.articleURL(href); u != "" && u != c.URL {
			single = false
		}
		return single
	})
	return single
}

// rawDescription picks a summary element, else the first paragraph that is
// not the title.
func (e *Extractor) rawDescription(c *candidate, title string) string {
	if t := nodeText(c.container.Find(summarySelector).First(), " ", nil); t != "" {
		return t
	}
	var out string
	c.container.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		t := nodeText(p, " ", nil)
		if t == "" || t == title || t == c.AnchorText {
			return true
		}
		out = t
		return false
	})
	return out
}

// publishedAt recovers the publication date from a time element, schema.org
// markup, or a month-name date in the container text. It returns the zero
// time when nothing parses.
func (e *Extractor) publishedAt(c *candidate) time.Time {
	var values []string
	if v, ok := c.container.Find("time[datetime]").First().Attr("datetime"); ok {
		values = append(values, v)
	}
	pub := c.container.Find("[itemprop=datePublished]").First()
	for _, attr := range []string{"content", "datetime"} {
		if v, ok := pub.Attr(attr); ok {
			values = append(values, v)
		}
	}
	if m := authorfeed.DateRE.FindString(c.ContainerText); m != "" {
		values = append(values, m)
	}

	for _, v := range values {
		t, err := e.dates.ParseDate(v)
		if err == nil {
			return t
		}
		e.logger.Debug("unparsed date", "url", c.URL, "value", v, "err", err)
	}
	return time.Time{}
}

// article extracts the fields of an accepted candidate.
func (e *Extractor) article(c *candidate) (*authorfeed.Article, error) {
	title := e.titles.Clean(e.rawTitle(c), c.URL)
	a := &authorfeed.Article{
		Title:       title,
		URL:         c.URL,
		Description: authorfeed.CleanDescription(e.rawDescription(c, title), title),
		Author:      e.author,
		PublishedAt: e.publishedAt(c),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
