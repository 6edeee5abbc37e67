package harvest

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// directorySource walks a paginated HTML directory, pulling one record
// per configured item element and following the next-page link until
// the chain runs out.
type directorySource struct {
	name         string
	url          string
	itemSelector string
	nameSel      string
	websiteSel   string
	infoSel      string
	nextSel      string
}

func (s *directorySource) Name() string { return s.name }

func (s *directorySource) Extract(ctx context.Context, fetcher Fetcher, emit EmitFunc) {
	pageURL := s.url
	for pageURL != "" {
		body, ok := fetcher.FetchText(ctx, pageURL)
		if !ok {
			return
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return
		}

		stopped := false
		doc.Find(s.itemSelector).EachWithBreak(func(_ int, item *goquery.Selection) bool {
			name := selectText(item, s.nameSel)
			website := selectAttr(item, s.websiteSel, "href")
			info := selectText(item, s.infoSel)
			if name == "" && website == "" && info == "" {
				return true
			}
			if !emit(Record{
				Name:      name,
				Website:   NormalizeURL(website),
				Info:      info,
				Source:    s.name,
				SourceURL: pageURL,
			}) {
				stopped = true
				return false
			}
			return true
		})
		if stopped || s.nextSel == "" {
			return
		}

		nextHref := selectAttr(doc.Selection, s.nextSel, "href")
		if nextHref == "" {
			return
		}
		pageURL = resolveRef(pageURL, nextHref)
	}
}

// selectText returns the whitespace-collapsed text of the first node
// matching selector under root, or "" when the selector is empty or
// matches nothing.
func selectText(root *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	node := root.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}
	return collapseSpace(node.Text())
}

// selectAttr returns the named attribute of the first node matching
// selector under root, trimmed, or "".
func selectAttr(root *goquery.Selection, selector, attr string) string {
	if selector == "" {
		return ""
	}
	node := root.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}
	value, _ := node.Attr(attr)
	return strings.TrimSpace(value)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
