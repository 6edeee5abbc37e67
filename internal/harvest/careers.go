package harvest

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/athenaworks/orgharvest/internal/metrics"
)

// Classifier vocabulary. Strong keywords confirm careers intent on
// their own; weak keywords need the href to also look like a careers
// path, which keeps things like "employment law" articles out.
var (
	strongCareerKeywords = []string{
		"careers",
		"career",
		"jobs",
		"job",
		"open roles",
		"openings",
		"vacancies",
		"join us",
		"work with",
		"work at",
	}

	weakCareerKeywords = []string{
		"employment",
		"hiring",
	}

	careersPathPattern = regexp.MustCompile(
		`(?i)/(careers?|jobs?|open-roles|openings|vacancies|join-us|join|work-with|work-at|employment)`)

	careersExcludePattern = regexp.MustCompile(
		`(?i)/(blog|news|press|media|events|guide|learn|resources|legal|privacy|terms|policy)`)

	// careersProbePaths are tried in order when no homepage link matches.
	careersProbePaths = []string{
		"/careers",
		"/careers/",
		"/jobs",
		"/jobs/",
		"/join",
		"/join-us",
		"/company/careers",
	}
)

// isCareerLink decides whether an anchor points at a careers page based
// on its href and visible text.
func isCareerLink(text, href string) bool {
	if text == "" && href == "" {
		return false
	}
	hrefLower := strings.ToLower(href)
	textLower := strings.ToLower(text)
	if careersExcludePattern.MatchString(hrefLower) {
		return false
	}
	if careersPathPattern.MatchString(hrefLower) {
		return true
	}
	for _, kw := range strongCareerKeywords {
		if strings.Contains(textLower, kw) {
			return true
		}
	}
	for _, kw := range weakCareerKeywords {
		if strings.Contains(textLower, kw) {
			return careersPathPattern.MatchString(hrefLower)
		}
	}
	return false
}

// pageLooksLikeCareers classifies a fetched page by its title and first
// heading.
func pageLooksLikeCareers(body string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return false
	}
	title := collapseSpace(doc.Find("title").First().Text())
	heading := collapseSpace(doc.Find("h1").First().Text())
	blob := strings.ToLower(title + " " + heading)
	for _, kw := range strongCareerKeywords {
		if strings.Contains(blob, kw) {
			return true
		}
	}
	return false
}

// FindCareersURL locates the best-guess careers page for a website.
// Homepage links are preferred over path probing because they reflect
// the site's own navigation; the first matching link in document order
// wins. When no link matches, conventional paths are probed and
// classified by title/heading. Absence means no careers page was found
// or the homepage was unreachable.
func FindCareersURL(ctx context.Context, fetcher Fetcher, website string) (string, bool) {
	if website == "" {
		return "", false
	}

	homepage := NormalizeURL(website)
	body, ok := fetcher.FetchText(ctx, homepage)
	if !ok {
		metrics.ObserveCareersLookup("none")
		return "", false
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
		found := ""
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if href == "" {
				return true
			}
			if isCareerLink(collapseSpace(a.Text()), href) {
				found = resolveRef(homepage, href)
				return false
			}
			return true
		})
		if found != "" {
			metrics.ObserveCareersLookup("link")
			return found, true
		}
	}

	for _, path := range careersProbePaths {
		probe := resolveRef(homepage, path)
		probeBody, probeOK := fetcher.FetchText(ctx, probe)
		if probeOK && pageLooksLikeCareers(probeBody) {
			metrics.ObserveCareersLookup("probe")
			return probe, true
		}
	}

	metrics.ObserveCareersLookup("none")
	return "", false
}
