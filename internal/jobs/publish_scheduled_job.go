package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/service"
)

type traceKey struct{}

// PublishScheduledJob publishes every post whose scheduled time has come.
type PublishScheduledJob struct {
	pr          repository.PostRepository
	ds          service.DeliveryService
	lock        TickLock
	concurrency int
	now         func() time.Time
}

// NewPublishScheduledJob accepts a nil lock for single-replica deployments.
func NewPublishScheduledJob(
	pr repository.PostRepository,
	ds service.DeliveryService,
	lock TickLock,
	concurrency int) *PublishScheduledJob {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PublishScheduledJob{
		pr:          pr,
		ds:          ds,
		lock:        lock,
		concurrency: concurrency,
		now:         time.Now,
	}
}

func (j *PublishScheduledJob) Run() {
	ctx := context.WithValue(context.Background(), traceKey{}, "tick-"+uuid.NewString())
	j.Tick(ctx, j.now())
}

// Tick processes the posts due at now and returns how many it picked up.
// Failures never escape a tick.
func (j *PublishScheduledJob) Tick(ctx context.Context, now time.Time) int {
	trace, _ := ctx.Value(traceKey{}).(string)
	log := slog.With("trace_id", trace)

	if j.lock != nil {
		release, ok, err := j.lock.Acquire(ctx)
		switch {
		case err != nil:
			log.WarnContext(ctx, "tick lock unavailable, running unlocked", "err", err)
		case !ok:
			log.DebugContext(ctx, "tick already running elsewhere")
			return 0
		default:
			defer release()
		}
	}

	posts, err := j.pr.FindDue(ctx, now)
	if err != nil {
		log.ErrorContext(ctx, "finding due posts", "err", err)
		return 0
	}
	if len(posts) == 0 {
		return 0
	}
	log.InfoContext(ctx, "publishing due posts", "count", len(posts))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, j.concurrency)

	for _, post := range posts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(post *models.Post) {
			defer wg.Done()
			defer func() { <-semaphore }()
			defer func() {
				if r := recover(); r != nil {
					log.ErrorContext(ctx, "due post panicked", "post_id", post.ID.Hex(), "panic", r)
					j.fail(ctx, post, fmt.Errorf("unexpected error: %v", r))
				}
			}()

			j.ds.DeliverScheduled(ctx, post)
			log.InfoContext(ctx, "due post processed", "post_id", post.ID.Hex(), "status", post.Status)
		}(post)
	}

	wg.Wait()
	return len(posts)
}

// fail keeps a post that blew up out of the next tick's due query.
func (j *PublishScheduledJob) fail(ctx context.Context, post *models.Post, cause error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "failing due post panicked", "post_id", post.ID.Hex(), "panic", r)
		}
	}()
	j.ds.Abort(ctx, post, cause)
}
