package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("catalog.fetch")

const defaultUserAgent = "catalog-scraper/1.0"

type Options struct {
	UserAgent  string
	Timeout    time.Duration
	RetryCount int
	// Zero disables rate limiting.
	RequestsPerSecond float64
	// Optional; when set, responses are served from and stored in the cache.
	Cache *Cache
}

// Client fetches catalog pages. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	cache   *Cache
}

func NewClient(options Options) *Client {
	userAgent := options.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetRetryCount(options.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(res *resty.Response, err error) bool {
			return res != nil && res.StatusCode() >= 500
		})
	if options.Timeout > 0 {
		client.SetTimeout(options.Timeout)
	}

	var limiter *rate.Limiter
	if options.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), 1)
	}

	return &Client{http: client, limiter: limiter, cache: options.Cache}
}

func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Fetch", trace.WithAttributes(attribute.String("url", url)))
	defer span.End()

	if c.cache != nil {
		page, err := c.cache.Get(ctx, url)
		if err == nil {
			span.AddEvent("cache hit")
			return page, nil
		}
		if !errors.Is(err, ErrNotCached) {
			log.Warn().Err(err).Str("url", url).Msg("failed to read page cache")
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	log.Debug().Str("url", url).Msg("fetching page")
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, err
	}
	if res.IsError() {
		err := fmt.Errorf("GET %v: %v", url, res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}

	body := res.Body()
	if c.cache != nil {
		if err := c.cache.Set(ctx, url, body); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to cache page")
		}
	}
	return body, nil
}
