// Package fetch implements the polite HTTP client: every request is
// gated on the target origin's robots policy and on one rate limiter
// shared across all hosts.
package fetch

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/athenaworks/orgharvest/internal/metrics"
	"github.com/athenaworks/orgharvest/internal/ratelimit"
)

// Config controls fetcher behavior.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	RateLimit    time.Duration
	StrictRobots bool
}

// Client fetches pages politely. Absence (false) covers robots denials,
// transport failures, and HTTP status >= 400 alike; callers never see
// an error.
type Client struct {
	cfg           Config
	robots        *robotsGate
	limiter       *ratelimit.Limiter
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := colly.NewCollector()
	// colly v2.1.0's Async option ignores its argument and always enables
	// async mode; set the field directly to stay synchronous.
	c.Async = false
	c.AllowURLRevisit = true
	// Robots is enforced by our own gate; colly's built-in check has no
	// strict-mode semantics.
	c.IgnoreRobotsTxt = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())

	return &Client{
		cfg:           cfg,
		robots:        newRobotsGate(cfg.StrictRobots, cfg.UserAgent, cfg.Timeout, logger),
		limiter:       ratelimit.New(cfg.RateLimit),
		baseCollector: c,
		logger:        logger,
	}
}

// Allowed reports whether the robots policy permits fetching url. No
// rate-limited request is made; only the origin's robots.txt may be
// fetched (and cached) to answer.
func (c *Client) Allowed(ctx context.Context, url string) bool {
	return c.robots.Allowed(ctx, url)
}

// FetchText GETs url and returns its body. The second return is false
// when the fetch was denied or failed.
func (c *Client) FetchText(ctx context.Context, url string) (string, bool) {
	if !c.gate(ctx, url, http.MethodGet) {
		return "", false
	}

	var body []byte
	collector := c.cloneCollector(&body)
	if err := c.run(ctx, func() error { return collector.Visit(url) }); err != nil {
		c.logger.Debug("fetch failed", zap.String("url", url), zap.Error(err))
		metrics.ObserveFetch(http.MethodGet, "error")
		return "", false
	}
	metrics.ObserveFetch(http.MethodGet, "ok")
	return string(body), true
}

// HeadOK issues a HEAD request and reports whether it succeeded with a
// status below 400.
func (c *Client) HeadOK(ctx context.Context, url string) bool {
	if !c.gate(ctx, url, http.MethodHead) {
		return false
	}

	collector := c.cloneCollector(nil)
	if err := c.run(ctx, func() error { return collector.Head(url) }); err != nil {
		c.logger.Debug("head failed", zap.String("url", url), zap.Error(err))
		metrics.ObserveFetch(http.MethodHead, "error")
		return false
	}
	metrics.ObserveFetch(http.MethodHead, "ok")
	return true
}

// gate applies the robots check and then blocks on the shared limiter.
// The limiter token is consumed before the request goes out, so even a
// request that subsequently fails has spent its slot.
func (c *Client) gate(ctx context.Context, url, method string) bool {
	if !c.robots.Allowed(ctx, url) {
		metrics.ObserveRobotsDenied(hostOf(url))
		metrics.ObserveFetch(method, "denied")
		c.logger.Debug("robots denied", zap.String("url", url))
		return false
	}
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.ObserveFetch(method, "error")
		return false
	}
	return true
}

func (c *Client) cloneCollector(body *[]byte) *colly.Collector {
	collector := c.baseCollector.Clone()
	if body != nil {
		collector.OnResponse(func(r *colly.Response) {
			*body = append([]byte(nil), r.Body...)
		})
	}
	return collector
}

// run executes the collector call on a goroutine so the caller's
// context can interrupt the wait.
func (c *Client) run(ctx context.Context, visit func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- visit()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return u.Host
}
