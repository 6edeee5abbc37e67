package harvest

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// locationDirectorySource scrapes a company-directory listing whose
// page state is embedded as JSON in a data-page attribute. Pagination
// runs through a ?page=N query parameter bounded by the listing's own
// totalPages count and the configured max_pages cap. When a company row
// carries no website and fetch_company_pages is set, the detail page is
// fetched to recover one.
type locationDirectorySource struct {
	name              string
	url               string
	maxPages          int
	fetchCompanyPages bool
}

// aggregatorDomains are hosts that never count as a company's own
// website when scanning detail-page links.
var aggregatorDomains = map[string]struct{}{
	"twitter.com":    {},
	"x.com":          {},
	"linkedin.com":   {},
	"facebook.com":   {},
	"instagram.com":  {},
	"youtube.com":    {},
	"crunchbase.com": {},
	"angel.co":       {},
	"wellfound.com":  {},
	"medium.com":     {},
	"substack.com":   {},
	"forbes.com":     {},
	"techcrunch.com": {},
	"cnbc.com":       {},
	"bloomberg.com":  {},
	"wsj.com":        {},
	"nytimes.com":    {},
}

type listingPage struct {
	Props struct {
		Companies  []listingCompany `json:"companies"`
		TotalPages int              `json:"totalPages"`
	} `json:"props"`
}

type listingCompany struct {
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Website         string      `json:"website"`
	OneLiner        string      `json:"one_liner"`
	LongDescription string      `json:"long_description"`
	DirectoryURL    string      `json:"ycdc_company_url"`
	Status          string      `json:"ycdc_status"`
	BatchName       string      `json:"batch_name"`
	// team_size arrives as a number or a string depending on the page.
	TeamSize        any         `json:"team_size"`
	Location        string      `json:"location"`
	City            string      `json:"city"`
	Tags            []string    `json:"tags"`
	LinkedinURL     string      `json:"linkedin_url"`
	TwitterURL      string      `json:"twitter_url"`
	CrunchbaseURL   string      `json:"cb_url"`
}

func (s *locationDirectorySource) Name() string { return s.name }

func (s *locationDirectorySource) Extract(ctx context.Context, fetcher Fetcher, emit EmitFunc) {
	page := 1
	totalPages := 0
	for {
		pageURL := s.url
		if page > 1 {
			pageURL = setQueryParam(s.url, "page", page)
		}
		body, ok := fetcher.FetchText(ctx, pageURL)
		if !ok {
			return
		}
		listing, ok := parseListingPage(body)
		if !ok {
			return
		}
		if listing.Props.TotalPages > 0 {
			totalPages = listing.Props.TotalPages
		}

		for _, company := range listing.Props.Companies {
			if !emit(s.companyRecord(ctx, fetcher, company, pageURL)) {
				return
			}
		}

		if totalPages == 0 || page >= totalPages {
			return
		}
		page++
		if s.maxPages > 0 && page > s.maxPages {
			return
		}
	}
}

func (s *locationDirectorySource) companyRecord(ctx context.Context, fetcher Fetcher, company listingCompany, pageURL string) Record {
	detailURL := company.DirectoryURL
	if detailURL == "" && company.Slug != "" {
		detailURL = resolveRef(s.url, "/companies/"+company.Slug)
	}
	website := company.Website
	if website == "" && s.fetchCompanyPages && detailURL != "" {
		website = extractCompanyWebsite(ctx, fetcher, detailURL)
	}

	info := company.OneLiner
	if info == "" {
		info = company.LongDescription
	}
	location := company.Location
	if location == "" {
		location = company.City
	}

	rec := Record{
		Name:      company.Name,
		Website:   NormalizeURL(website),
		Info:      info,
		Source:    s.name,
		SourceURL: pageURL,
	}
	extra := map[string]string{
		"directory_url": detailURL,
		"batch":         strings.ToUpper(company.BatchName),
		"status":        company.Status,
		"employees":     coerceString(company.TeamSize),
		"location":      location,
		"tags":          strings.Join(company.Tags, ", "),
		"linkedin_url":  company.LinkedinURL,
		"twitter_url":   company.TwitterURL,
		"cb_url":        company.CrunchbaseURL,
	}
	for k, v := range extra {
		if v == "" {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[k] = v
	}
	return rec
}

// parseListingPage pulls the embedded JSON state out of the first
// element carrying a data-page attribute.
func parseListingPage(body string) (listingPage, bool) {
	var page listingPage
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return page, false
	}
	raw, found := doc.Find("[data-page]").First().Attr("data-page")
	if !found || raw == "" {
		return page, false
	}
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return page, false
	}
	return page, true
}

// extractCompanyWebsite scans a detail page for the company's own site:
// first an anchor labeled "website", then the best external link that is
// not a social/media/aggregator domain.
func extractCompanyWebsite(ctx context.Context, fetcher Fetcher, detailURL string) string {
	body, ok := fetcher.FetchText(ctx, detailURL)
	if !ok {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	anchors := doc.Find("a[href]")

	labeled := ""
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		aria, _ := a.Attr("aria-label")
		if strings.EqualFold(strings.TrimSpace(aria), "website") {
			labeled, _ = a.Attr("href")
			return false
		}
		return true
	})
	if labeled != "" {
		return labeled
	}
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.EqualFold(collapseSpace(a.Text()), "website") {
			labeled, _ = a.Attr("href")
			return false
		}
		return true
	})
	if labeled != "" {
		return labeled
	}

	best := ""
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return true
		}
		parsed, err := url.Parse(href)
		if err != nil {
			return true
		}
		domain := strings.ToLower(parsed.Host)
		domain = strings.TrimPrefix(domain, "www.")
		if _, excluded := aggregatorDomains[domain]; excluded {
			return true
		}
		text := collapseSpace(a.Text())
		if domain != "" && strings.Contains(strings.ToLower(text), domain) {
			best = href
			return false
		}
		if text == href {
			best = href
			return false
		}
		if best == "" {
			best = href
		}
		return true
	})
	return best
}

// setQueryParam returns rawURL with the query parameter key set to page.
func setQueryParam(rawURL, key string, page int) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
