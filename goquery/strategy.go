package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/smach/authorfeed"
	"golang.org/x/net/html"
)

// Policy decides how the discovery cascade combines strategy results.
type Policy int

const (
	// FirstMatch uses the first strategy that yields any candidates.
	FirstMatch Policy = iota

	// Union accumulates candidates from every strategy in order.
	Union
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Union:
		return authorfeed.CascadeUnion
	default:
		return authorfeed.CascadeFirstMatch
	}
}

// ParsePolicy converts a policy name into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", authorfeed.CascadeFirstMatch:
		return FirstMatch, nil
	case authorfeed.CascadeUnion:
		return Union, nil
	}
	return FirstMatch, authorfeed.Errorf(authorfeed.EINVALID, "unknown cascade policy %q", s)
}

// Strategy is one step of the discovery cascade.
type Strategy struct {
	// Name labels candidates found by this strategy.
	Name string

	// Selector matches the anchor elements considered by this strategy.
	Selector string

	// ExcludeRegions discards anchors inside sidebars, footers and
	// recommendation blocks. A strategy without it is a fallback and runs
	// only when no earlier strategy found anything, under either policy.
	ExcludeRegions bool
}

// DefaultStrategies is the discovery cascade, most specific first. The last
// strategy matches every link in the document and does not exclude regions.
var DefaultStrategies = []Strategy{
	{
		Name: "primary",
		Selector: strings.Join([]string{
			"main article a[href]",
			"[role=main] article a[href]",
			"[class*=article-list] a[href]",
			"[class*=author-articles] a[href]",
			"[class*=author-content] a[href]",
			"[class*=river] a[href]",
		}, ", "),
		ExcludeRegions: true,
	},
	{
		Name:           "content",
		Selector:       "main a[href], [role=main] a[href], #content a[href], .content a[href]",
		ExcludeRegions: true,
	},
	{
		Name:     "catch-all",
		Selector: "a[href]",
	},
}

// Structural regions are ignored when nested inside an article, where
// headers and footers belong to a card rather than the page.
const structuralRegionSelector = "aside, nav, header, footer, " +
	"[role=complementary], [role=navigation], [role=contentinfo], [role=banner], " +
	"[class*=footer], [id*=footer]"

const namedRegionSelector = "[class*=sidebar], [id*=sidebar], " +
	"[class*=trending], [id*=trending], " +
	"[class*=popular], [id*=popular], " +
	"[class*=related], [id*=related], " +
	"[class*=recommend], [id*=recommend], " +
	"[class*=sponsor], [id*=sponsor], " +
	"[class*=promo], [id*=promo]"

// excludedLinks returns the anchors inside non-primary regions.
func excludedLinks(doc *goquery.Document) map[*html.Node]struct{} {
	excluded := make(map[*html.Node]struct{})
	mark := func(region *goquery.Selection) {
		region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			excluded[a.Get(0)] = struct{}{}
		})
	}

	doc.Find(structuralRegionSelector).Each(func(_ int, region *goquery.Selection) {
		if region.ParentsFiltered("article").Length() > 0 {
			return
		}
		mark(region)
	})
	doc.Find(namedRegionSelector).Each(func(_ int, region *goquery.Selection) {
		mark(region)
	})

	return excluded
}

// candidate is a discovered anchor with the selections needed for field extraction.
type candidate struct {
	authorfeed.Candidate

	link      *goquery.Selection
	container *goquery.Selection
}

// discover applies one strategy and returns its candidates in document order.
func (e *Extractor) discover(doc *goquery.Document, s Strategy, excluded map[*html.Node]struct{}) []*candidate {
	var out []*candidate
	doc.Find(s.Selector).Each(func(_ int, a *goquery.Selection) {
		if s.ExcludeRegions {
			if _, ok := excluded[a.Get(0)]; ok {
				return
			}
		}

		href, _ := a.Attr("href")
		resolved := e.articleURL(href)
		if resolved == "" {
			return
		}

		text := nodeText(a, " ", nil)
		if text == "" {
			text = linkLabel(a)
		}
		if text == "" {
			return
		}

		container := findContainer(a)
		out = append(out, &candidate{
			Candidate: authorfeed.Candidate{
				AnchorText:    text,
				URL:           resolved,
				ContainerText: nodeText(container, "\n", nil),
				Strategy:      s.Name,
			},
			link:      a,
			container: container,
		})
	})
	return out
}

// articleURL resolves href against the profile URL and returns it when it
// is an http(s) link matching the article pattern.
func (e *Extractor) articleURL(href string) string {
	if href == "" || isNonHTTPLink(href) {
		return ""
	}
	resolved := resolveURL(e.base, href)
	if resolved == "" {
		return ""
	}
	u, err := url.Parse(resolved)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	if !e.pattern.MatchString(resolved) {
		return ""
	}
	return resolved
}

// Containers are the smallest elements that usually wrap one listing entry.
const containerSelector = "article, li, [class*=card], [class*=item], [class*=teaser], " +
	"[class*=story], [class*=post], [class*=result]"

// maxContainerText bounds container text; larger containers are too broad
// to say anything about a single link.
const maxContainerText = 2000

func findContainer(a *goquery.Selection) *goquery.Selection {
	parent := a.Parent()
	c := parent.Closest(containerSelector)
	// "card-title" and "post-title" are headings, not containers.
	for c.Length() > 0 && c.Is(headingSelector) {
		c = c.Parent().Closest(containerSelector)
	}
	if c.Length() == 0 || len(nodeText(c, " ", nil)) > maxContainerText {
		return parent
	}
	return c
}
