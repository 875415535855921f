// Package fetcher implements the polite, retrying HTTP fetcher used for every
// outbound request of a harvest run.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hydrocare/harvester/internal/metrics"
)

// Config controls fetcher behavior.
type Config struct {
	UserAgent     string
	Delay         time.Duration
	Retries       int
	Timeout       time.Duration
	RespectRobots bool
}

// FetchError reports a request that failed after exhausting retries or hit a
// non-retryable status. StatusCode is zero for transport-level failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Response is the result of a successful fetch.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Document parses the response body into a goquery document.
func (r *Response) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", r.URL, err)
	}
	return doc, nil
}

// Fetcher performs rate-limited, retrying HTTP GETs via Colly.
type Fetcher struct {
	cfg     Config
	policy  *ExponentialRetryPolicy
	limiter *rate.Limiter
	base    *colly.Collector
	logger  *zap.Logger
}

// New builds a Fetcher. The rate limiter is shared by all requests issued
// through this instance, so concurrent callers still honor one global budget.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 25 * time.Second
	}

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}

	c := colly.NewCollector(colly.Async(false))
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	// Retries and repeat runs revisit URLs; dedup belongs to the crawl state.
	c.AllowURLRevisit = true
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())

	metrics.Init()

	return &Fetcher{
		cfg:     cfg,
		policy:  NewExponentialRetryPolicy(cfg.Retries),
		limiter: rate.NewLimiter(limit, 1),
		base:    c,
		logger:  logger,
	}
}

// Fetch performs a polite GET of url: a jittered politeness pause precedes
// every attempt, and retryable failures back off exponentially up to the
// configured retry count. The returned error is always a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	for attempt := 0; ; attempt++ {
		if err := f.pause(ctx); err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}

		resp, status, err := f.get(ctx, url)
		if err == nil {
			metrics.ObserveFetch("ok")
			return resp, nil
		}

		if !f.policy.ShouldRetry(status, err, attempt) {
			metrics.ObserveFetch("error")
			return nil, &FetchError{URL: url, StatusCode: status, Err: err}
		}

		metrics.ObserveFetchRetry()
		f.logger.Warn("retrying fetch",
			zap.String("url", url),
			zap.Int("status_code", status),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if err := sleepCtx(ctx, f.policy.Backoff(attempt)); err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
	}
}

// pause waits for the shared rate limiter, then the jittered politeness
// delay: delay + uniform(0, 0.3*delay).
func (f *Fetcher) pause(ctx context.Context) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if f.cfg.Delay <= 0 {
		return nil
	}
	d := f.cfg.Delay + randomJitter(3*f.cfg.Delay/10)
	metrics.ObservePolitenessWait(d)
	return sleepCtx(ctx, d)
}

func (f *Fetcher) get(ctx context.Context, url string) (*Response, int, error) {
	var (
		result   *Response
		fetchErr error
		status   int
	)
	start := time.Now()

	collector := f.base.Clone()
	collector.OnResponse(func(r *colly.Response) {
		result = &Response{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if fetchErr != nil {
			return nil, status, fetchErr
		}
		if err != nil {
			return nil, status, fmt.Errorf("visit: %w", err)
		}
		if result == nil {
			return nil, 0, fmt.Errorf("no response received")
		}
		return result, result.StatusCode, nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
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
