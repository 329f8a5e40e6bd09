package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
)

const (
	TriggerScheduled = "scheduled"
	TriggerImmediate = "immediate"

	msgNoAccounts = "No connected social media accounts found."

	titlePublished = "Post published successfully"
	titlePartial   = "Post partially published"
	titleFailed    = "Post failed to publish"
)

// DeliveryService drives one post through publication and records the
// outcome: post status first, then exactly one notification.
type DeliveryService interface {
	DeliverScheduled(ctx context.Context, post *models.Post) *models.PublishResult
	DeliverNow(ctx context.Context, post *models.Post) *models.PublishResult
	Abort(ctx context.Context, post *models.Post, cause error)
}

type deliveryService struct {
	pr  repository.PostRepository
	ar  repository.SocialAccountRepository
	phr repository.PostingHistoryRepository
	ps  PublishService
	ns  NotificationService
	now func() time.Time
}

// NewDeliveryService accepts a nil history repository when the audit log is disabled.
func NewDeliveryService(
	pr repository.PostRepository,
	ar repository.SocialAccountRepository,
	phr repository.PostingHistoryRepository,
	ps PublishService,
	ns NotificationService) DeliveryService {
	return &deliveryService{
		pr:  pr,
		ar:  ar,
		phr: phr,
		ps:  ps,
		ns:  ns,
		now: time.Now,
	}
}

func (s *deliveryService) DeliverScheduled(ctx context.Context, post *models.Post) *models.PublishResult {
	return s.deliver(ctx, post, TriggerScheduled)
}

func (s *deliveryService) DeliverNow(ctx context.Context, post *models.Post) *models.PublishResult {
	return s.deliver(ctx, post, TriggerImmediate)
}

func (s *deliveryService) deliver(ctx context.Context, post *models.Post, trigger string) (result *models.PublishResult) {
	defer func() {
		if r := recover(); r != nil {
			s.Abort(ctx, post, fmt.Errorf("unexpected error: %v", r))
		}
	}()

	accounts, err := s.ar.ListByUserID(ctx, post.UserID)
	if err != nil {
		s.Abort(ctx, post, fmt.Errorf("loading connected accounts: %w", err))
		return nil
	}

	if len(accounts) == 0 {
		post.Status = models.PostStatusFailed
		post.PublishedAt = nil
		if err := s.pr.Save(ctx, post); err != nil {
			s.Abort(ctx, post, fmt.Errorf("saving post: %w", err))
			return nil
		}
		s.notify(ctx, post, models.NotificationPostFailed, titleFailed, msgNoAccounts, nil)
		return &models.PublishResult{Successful: []models.PublishOutcome{}, Failed: []models.PublishOutcome{}}
	}

	result = s.ps.PublishPost(ctx, post, accounts)
	s.record(ctx, post, result, trigger)

	if len(result.Successful) == 0 {
		post.Status = models.PostStatusFailed
		post.PublishedAt = nil
		if err := s.pr.Save(ctx, post); err != nil {
			s.Abort(ctx, post, fmt.Errorf("saving post: %w", err))
			return result
		}
		s.notify(ctx, post, models.NotificationPostFailed, titleFailed, joinFailures(result.Failed), map[string]any{
			"errors": result.Failed,
		})
		return result
	}

	now := s.now()
	post.Status = models.PostStatusPublished
	post.PublishedAt = &now
	post.PlatformResults = platformResults(result.Successful)
	if err := s.pr.Save(ctx, post); err != nil {
		s.Abort(ctx, post, fmt.Errorf("saving post: %w", err))
		return result
	}

	if trigger == TriggerImmediate && len(result.Failed) > 0 {
		s.notify(ctx, post, models.NotificationPostPartiallyFailed, titlePartial, "Failed on: "+joinFailures(result.Failed), map[string]any{
			"platforms": result.Successful,
			"errors":    result.Failed,
		})
		return result
	}

	s.notify(ctx, post, models.NotificationPostPublished, titlePublished,
		"Your post was published to: "+strings.Join(models.PlatformNames(result.Successful), ", "),
		map[string]any{"platforms": result.Successful},
	)
	return result
}

// Abort forces the post to failed and still tells the user. Both writes are best effort.
func (s *deliveryService) Abort(ctx context.Context, post *models.Post, cause error) {
	slog.ErrorContext(ctx, "post delivery aborted", "post_id", post.ID.Hex(), "err", cause)

	post.Status = models.PostStatusFailed
	post.PublishedAt = nil
	if err := s.pr.Save(ctx, post); err != nil {
		slog.ErrorContext(ctx, "saving failed post", "post_id", post.ID.Hex(), "err", err)
	}
	s.notify(ctx, post, models.NotificationPostFailed, titleFailed, cause.Error(), nil)
}

func (s *deliveryService) notify(ctx context.Context, post *models.Post, kind, title, message string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["post_id"] = post.ID.Hex()

	if _, err := s.ns.Emit(ctx, post.UserID, kind, title, message, metadata); err != nil {
		slog.ErrorContext(ctx, "emitting notification", "post_id", post.ID.Hex(), "type", kind, "err", err)
	}
}

func (s *deliveryService) record(ctx context.Context, post *models.Post, result *models.PublishResult, trigger string) {
	if s.phr == nil {
		return
	}
	outcomes := append(append([]models.PublishOutcome{}, result.Successful...), result.Failed...)
	for _, o := range outcomes {
		_, err := s.phr.Create(ctx, &models.PostingHistory{
			UserID:         post.UserID.Hex(),
			PostID:         post.ID.Hex(),
			Platform:       o.Platform,
			ExternalPostID: o.PostID,
			URL:            o.URL,
			ErrorMessage:   o.Error,
			Trigger:        trigger,
		})
		if err != nil {
			slog.WarnContext(ctx, "recording posting history", "post_id", post.ID.Hex(), "platform", o.Platform, "err", err)
		}
	}
}

func joinFailures(outcomes []models.PublishOutcome) string {
	parts := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		parts = append(parts, o.Platform+": "+o.Error)
	}
	return strings.Join(parts, ", ")
}

func platformResults(outcomes []models.PublishOutcome) []models.PlatformResult {
	results := make([]models.PlatformResult, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, models.PlatformResult{
			Platform: o.Platform,
			PostID:   o.PostID,
			URL:      o.URL,
		})
	}
	return results
}
