package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/postflow/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	errNoConnectedAccount = "No connected account"
	errUnknownPlatform    = "Unknown platform"
)

type PublishService interface {
	PublishPost(ctx context.Context, post *models.Post, accounts []*models.SocialAccount) *models.PublishResult
}

type publishService struct {
	publishers  map[models.Platform]PlatformPublisher
	concurrency int
}

func NewPublishService(concurrency int, publishers ...PlatformPublisher) PublishService {
	byPlatform := make(map[models.Platform]PlatformPublisher, len(publishers))
	for _, p := range publishers {
		byPlatform[p.Platform()] = p
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &publishService{
		publishers:  byPlatform,
		concurrency: concurrency,
	}
}

// PublishPost attempts every platform flagged in the post and sorts the
// outcomes into successes and failures. Attempts may run concurrently but the
// lists always follow models.TargetOrder.
func (s *publishService) PublishPost(ctx context.Context, post *models.Post, accounts []*models.SocialAccount) *models.PublishResult {
	images := post.ImageURLs()
	targets := models.TargetOrder(post.Platforms)
	outcomes := make([]models.PublishOutcome, len(targets))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, name := range targets {
		platform, ok := models.ParsePlatform(name)
		publisher := s.publishers[platform]
		if !ok || publisher == nil {
			outcomes[i] = models.FailedOutcome(name, errUnknownPlatform)
			continue
		}

		account := connectedAccount(accounts, platform)
		if account == nil {
			outcomes[i] = models.FailedOutcome(name, errNoConnectedAccount)
			continue
		}

		g.Go(func() error {
			outcomes[i] = s.attempt(ctx, publisher, post, images, account)
			return nil
		})
	}
	_ = g.Wait()

	result := &models.PublishResult{
		Successful: []models.PublishOutcome{},
		Failed:     []models.PublishOutcome{},
	}
	for i, outcome := range outcomes {
		outcome.Platform = targets[i]
		if outcome.Success {
			result.Successful = append(result.Successful, outcome)
		} else {
			result.Failed = append(result.Failed, outcome)
		}
	}

	slog.InfoContext(ctx, "post publish attempted",
		"post_id", post.ID.Hex(),
		"successful", models.PlatformNames(result.Successful),
		"failed", models.PlatformNames(result.Failed),
	)
	return result
}

func (s *publishService) attempt(ctx context.Context, publisher PlatformPublisher, post *models.Post, images []string, account *models.SocialAccount) (outcome models.PublishOutcome) {
	platform := publisher.Platform()
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "platform publisher panicked", "platform", platform, "post_id", post.ID.Hex(), "panic", r)
			outcome = models.FailedOutcome(string(platform), fmt.Sprintf("internal error: %v", r))
		}
	}()

	outcome = publisher.Publish(ctx, post.Content, images, account)
	if !outcome.Success {
		slog.WarnContext(ctx, "platform publish failed", "platform", platform, "post_id", post.ID.Hex(), "err", outcome.Error)
	}
	return outcome
}

func connectedAccount(accounts []*models.SocialAccount, platform models.Platform) *models.SocialAccount {
	for _, acc := range accounts {
		if acc != nil && acc.Platform == platform && acc.IsConnected {
			return acc
		}
	}
	return nil
}
