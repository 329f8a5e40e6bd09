package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	config "github.com/maheshrc27/postflow/configs"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/transfer"
	"golang.org/x/time/rate"
)

// PlatformPublisher performs one publish attempt on one platform. Publish
// never returns an error; every failure is folded into the outcome.
type PlatformPublisher interface {
	Platform() models.Platform
	Publish(ctx context.Context, text string, images []string, acc *models.SocialAccount) models.PublishOutcome
}

type PublisherOptions struct {
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

func PublisherOptionsFrom(cfg config.Platform) PublisherOptions {
	return PublisherOptions{
		Timeout:       cfg.Timeout,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
	}
}

// throttle bounds each attempt in time and spaces attempts out per platform.
type throttle struct {
	timeout time.Duration
	limiter *rate.Limiter
}

func newThrottle(opts PublisherOptions) throttle {
	t := throttle{timeout: opts.Timeout}
	if t.timeout <= 0 {
		t.timeout = 30 * time.Second
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return t
}

func (t throttle) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			cancel()
			return nil, nil, err
		}
	}
	return ctx, cancel, nil
}

func succeeded(platform models.Platform, id, url string) models.PublishOutcome {
	return models.PublishOutcome{
		Success:  true,
		Platform: string(platform),
		PostID:   id,
		URL:      url,
	}
}

func failed(platform models.Platform, err error) models.PublishOutcome {
	return models.FailedOutcome(string(platform), describe(err))
}

// describe turns transport errors into messages a user can read.
func describe(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request was cancelled"
	default:
		return err.Error()
	}
}

func graphFailure(resp *resty.Response, e *transfer.GraphErrorResponse) error {
	if e != nil && e.Error.Message != "" {
		return errors.New(e.Error.Message)
	}
	return fmt.Errorf("unexpected status code %d", resp.StatusCode())
}
