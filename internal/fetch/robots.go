package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// robotsGate evaluates robots.txt per origin. Rules are fetched lazily
// on the first request to an origin and cached for the process lifetime
// with no TTL. In strict mode a failed robots fetch denies access (and
// is not cached, so the origin is probed again next time); otherwise
// failure means allow-all.
type robotsGate struct {
	client    *http.Client
	cache     sync.Map // origin -> robotsEntry
	strict    bool
	userAgent string
	logger    *zap.Logger
}

// robotsEntry is one cached per-origin policy and when it was fetched.
type robotsEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

func newRobotsGate(strict bool, userAgent string, timeout time.Duration, logger *zap.Logger) *robotsGate {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &robotsGate{
		client:    &http.Client{Timeout: timeout},
		strict:    strict,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Allowed reports whether the configured user-agent may fetch rawURL.
func (g *robotsGate) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return !g.strict
	}

	data, err := g.load(ctx, parsed)
	if err != nil {
		if g.strict {
			g.logger.Warn("robots fetch failed; denying access",
				zap.String("host", parsed.Host), zap.Error(err))
			return false
		}
		g.logger.Warn("robots fetch failed; allowing access",
			zap.String("host", parsed.Host), zap.Error(err))
		if data == nil {
			return true
		}
	}

	group := data.FindGroup(g.userAgent)
	if group == nil {
		return true
	}
	path := parsed.Path
	if path == "" {
		path = "/"
	}
	// Rules can match on the query string too, e.g. "Disallow: /*?print=".
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return group.Test(path)
}

func (g *robotsGate) load(ctx context.Context, parsed *url.URL) (*robotstxt.RobotsData, error) {
	origin := strings.ToLower(parsed.Scheme + "://" + parsed.Host)
	if cached, ok := g.cache.Load(origin); ok {
		entry, assertOK := cached.(robotsEntry)
		if !assertOK {
			return nil, fmt.Errorf("robots cache type mismatch: %T", cached)
		}
		return entry.data, nil
	}

	robotsURL := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: "/robots.txt"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new robots request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		if !g.strict {
			// Cache the allow-all verdict so the origin is not re-probed.
			return g.cacheAllowAll(origin), fmt.Errorf("fetch robots: %w", err)
		}
		return nil, fmt.Errorf("fetch robots: %w", err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		if !g.strict {
			return g.cacheAllowAll(origin), nil
		}
		return nil, fmt.Errorf("parse robots: %w", err)
	}

	g.cache.Store(origin, robotsEntry{data: data, fetchedAt: time.Now()})
	return data, nil
}

func (g *robotsGate) cacheAllowAll(origin string) *robotstxt.RobotsData {
	data, err := robotstxt.FromString("")
	if err != nil || data == nil {
		data = &robotstxt.RobotsData{}
	}
	g.cache.Store(origin, robotsEntry{data: data, fetchedAt: time.Now()})
	return data
}
