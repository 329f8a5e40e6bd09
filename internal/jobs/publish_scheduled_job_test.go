package job

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository/repotest"
	"github.com/maheshrc27/postflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

var tickAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakePublisher struct {
	platform models.Platform
	calls    atomic.Int32
}

func (p *fakePublisher) Platform() models.Platform {
	return p.platform
}

func (p *fakePublisher) Publish(ctx context.Context, text string, images []string, acc *models.SocialAccount) models.PublishOutcome {
	p.calls.Add(1)
	return models.PublishOutcome{Success: true, Platform: string(p.platform), PostID: "t1", URL: "https://example.com/t1"}
}

type fakeLock struct {
	ok       bool
	err      error
	released atomic.Int32
}

func (l *fakeLock) Acquire(ctx context.Context) (func(), bool, error) {
	if l.err != nil || !l.ok {
		return nil, false, l.err
	}
	return func() { l.released.Add(1) }, true, nil
}

type panickyDelivery struct {
	service.DeliveryService
	explode primitive.ObjectID
}

func (d *panickyDelivery) DeliverScheduled(ctx context.Context, post *models.Post) *models.PublishResult {
	if post.ID == d.explode {
		panic("delivery blew up")
	}
	return d.DeliveryService.DeliverScheduled(ctx, post)
}

func scheduledPost(user primitive.ObjectID, at time.Time) *models.Post {
	return &models.Post{
		ID:           primitive.NewObjectID(),
		UserID:       user,
		Content:      "scheduled",
		Platforms:    map[string]bool{"twitter": true},
		Status:       models.PostStatusScheduled,
		ScheduledFor: &at,
	}
}

func connected(user primitive.ObjectID) *models.SocialAccount {
	return &models.SocialAccount{
		UserID:            user,
		Platform:          models.PlatformTwitter,
		AccessToken:       "token",
		AccessTokenSecret: "secret",
		IsConnected:       true,
	}
}

type world struct {
	posts         *repotest.PostStore
	accounts      *repotest.AccountStore
	notifications *repotest.NotificationStore
	publisher     *fakePublisher
	delivery      service.DeliveryService
}

func newWorld(accounts []*models.SocialAccount, posts ...*models.Post) *world {
	w := &world{
		posts:         repotest.NewPostStore(posts...),
		accounts:      repotest.NewAccountStore(accounts...),
		notifications: repotest.NewNotificationStore(),
		publisher:     &fakePublisher{platform: models.PlatformTwitter},
	}
	w.delivery = service.NewDeliveryService(w.posts, w.accounts, nil,
		service.NewPublishService(2, w.publisher),
		service.NewNotificationService(w.notifications),
	)
	return w
}

func TestTickPublishesOnlyDuePosts(t *testing.T) {
	user := primitive.NewObjectID()
	due := scheduledPost(user, tickAt.Add(-time.Minute))
	onTime := scheduledPost(user, tickAt)
	future := scheduledPost(user, tickAt.Add(time.Hour))
	w := newWorld([]*models.SocialAccount{connected(user)}, due, onTime, future)

	j := NewPublishScheduledJob(w.posts, w.delivery, nil, 4)

	assert.Equal(t, 2, j.Tick(context.Background(), tickAt))
	assert.Equal(t, models.PostStatusPublished, w.posts.Get(due.ID).Status)
	assert.Equal(t, models.PostStatusPublished, w.posts.Get(onTime.ID).Status)
	assert.Equal(t, models.PostStatusScheduled, w.posts.Get(future.ID).Status)

	assert.Len(t, w.notifications.ForPost(due.ID.Hex()), 1)
	assert.Len(t, w.notifications.ForPost(onTime.ID.Hex()), 1)
	assert.Empty(t, w.notifications.ForPost(future.ID.Hex()))

	assert.Zero(t, j.Tick(context.Background(), tickAt), "published posts are not picked up again")
	assert.EqualValues(t, 2, w.publisher.calls.Load())
}

func TestTickIsolatesFailingPosts(t *testing.T) {
	healthyUser := primitive.NewObjectID()
	brokenUser := primitive.NewObjectID()
	panicUser := primitive.NewObjectID()

	healthy := scheduledPost(healthyUser, tickAt.Add(-time.Minute))
	broken := scheduledPost(brokenUser, tickAt.Add(-time.Minute))
	exploding := scheduledPost(panicUser, tickAt.Add(-time.Minute))

	w := newWorld([]*models.SocialAccount{connected(healthyUser), connected(brokenUser), connected(panicUser)},
		healthy, broken, exploding)
	w.accounts.ListErr[brokenUser] = errors.New("socket closed")

	j := NewPublishScheduledJob(w.posts, &panickyDelivery{DeliveryService: w.delivery, explode: exploding.ID}, nil, 1)

	assert.Equal(t, 3, j.Tick(context.Background(), tickAt))
	assert.Equal(t, models.PostStatusPublished, w.posts.Get(healthy.ID).Status)
	assert.Equal(t, models.PostStatusFailed, w.posts.Get(broken.ID).Status)
	assert.Equal(t, models.PostStatusFailed, w.posts.Get(exploding.ID).Status)

	for _, p := range []*models.Post{broken, exploding} {
		notes := w.notifications.ForPost(p.ID.Hex())
		require.Len(t, notes, 1)
		assert.Equal(t, models.NotificationPostFailed, notes[0].Type)
	}
	assert.Contains(t, w.notifications.ForPost(exploding.ID.Hex())[0].Message, "delivery blew up")

	assert.Zero(t, j.Tick(context.Background(), tickAt.Add(time.Minute)), "failed posts are not due again")
}

func TestTickSurvivesDueQueryFailure(t *testing.T) {
	w := newWorld(nil)
	w.posts.DueErr = errors.New("server selection timeout")

	j := NewPublishScheduledJob(w.posts, w.delivery, nil, 2)

	assert.Zero(t, j.Tick(context.Background(), tickAt))
	assert.Empty(t, w.notifications.All())
}

func TestTickSkipsWhenLockHeldElsewhere(t *testing.T) {
	user := primitive.NewObjectID()
	post := scheduledPost(user, tickAt.Add(-time.Minute))
	w := newWorld([]*models.SocialAccount{connected(user)}, post)

	j := NewPublishScheduledJob(w.posts, w.delivery, &fakeLock{ok: false}, 2)

	assert.Zero(t, j.Tick(context.Background(), tickAt))
	assert.Equal(t, models.PostStatusScheduled, w.posts.Get(post.ID).Status)
}

func TestTickReleasesLock(t *testing.T) {
	user := primitive.NewObjectID()
	w := newWorld([]*models.SocialAccount{connected(user)}, scheduledPost(user, tickAt.Add(-time.Minute)))
	lock := &fakeLock{ok: true}

	j := NewPublishScheduledJob(w.posts, w.delivery, lock, 2)

	assert.Equal(t, 1, j.Tick(context.Background(), tickAt))
	assert.EqualValues(t, 1, lock.released.Load())
}

func TestTickRunsUnlockedWhenLockErrors(t *testing.T) {
	user := primitive.NewObjectID()
	post := scheduledPost(user, tickAt.Add(-time.Minute))
	w := newWorld([]*models.SocialAccount{connected(user)}, post)

	j := NewPublishScheduledJob(w.posts, w.delivery, &fakeLock{err: errors.New("redis down")}, 2)

	assert.Equal(t, 1, j.Tick(context.Background(), tickAt))
	assert.Equal(t, models.PostStatusPublished, w.posts.Get(post.ID).Status)
}

type countingJob struct {
	mu   sync.Mutex
	runs int
}

func (c *countingJob) Run() {
	c.mu.Lock()
	c.runs++
	c.mu.Unlock()
}

func (c *countingJob) Runs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs
}

func TestSchedulerLifecycle(t *testing.T) {
	counter := &countingJob{}
	s := NewPostScheduler(time.Second, counter)

	require.NoError(t, s.Stop(context.Background()), "stop before start is a no-op")
	assert.False(t, s.Running())

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.Running())

	assert.Eventually(t, func() bool { return counter.Runs() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.Running())

	runs := counter.Runs()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, runs, counter.Runs(), "no ticks after stop")
}

func TestSchedulerRejectsBadInterval(t *testing.T) {
	s := NewPostScheduler(0, &countingJob{})

	assert.Error(t, s.Start())
	assert.False(t, s.Running())
}

func TestTickPublishesToConnectedPlatformsOnly(t *testing.T) {
	user := primitive.NewObjectID()
	post := scheduledPost(user, tickAt.Add(-time.Minute))
	post.Platforms = map[string]bool{"twitter": true, "facebook": true}
	w := newWorld([]*models.SocialAccount{connected(user)}, post)
	facebook := &fakePublisher{platform: models.PlatformFacebook}
	w.delivery = service.NewDeliveryService(w.posts, w.accounts, nil,
		service.NewPublishService(2, w.publisher, facebook),
		service.NewNotificationService(w.notifications),
	)

	j := NewPublishScheduledJob(w.posts, w.delivery, nil, 2)
	require.Equal(t, 1, j.Tick(context.Background(), tickAt))

	stored := w.posts.Get(post.ID)
	assert.Equal(t, models.PostStatusPublished, stored.Status)
	assert.NotNil(t, stored.PublishedAt)
	assert.Equal(t, []models.PlatformResult{{Platform: "twitter", PostID: "t1", URL: "https://example.com/t1"}}, stored.PlatformResults)
	assert.EqualValues(t, 1, w.publisher.calls.Load())
	assert.Zero(t, facebook.calls.Load())

	notes := w.notifications.ForPost(post.ID.Hex())
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPostPublished, notes[0].Type)
	assert.Equal(t, "Your post was published to: twitter", notes[0].Message)
}

// gatedPublisher blocks each publish until release is closed.
type gatedPublisher struct {
	fakePublisher
	started chan struct{}
	release chan struct{}
}

func (p *gatedPublisher) Publish(ctx context.Context, text string, images []string, acc *models.SocialAccount) models.PublishOutcome {
	p.started <- struct{}{}
	<-p.release
	return p.fakePublisher.Publish(ctx, text, images, acc)
}

func TestPublishNowDoesNotRaceTheTick(t *testing.T) {
	user := primitive.NewObjectID()
	post := scheduledPost(user, tickAt.Add(-time.Minute))
	w := newWorld([]*models.SocialAccount{connected(user)}, post)
	gate := &gatedPublisher{
		fakePublisher: fakePublisher{platform: models.PlatformTwitter},
		started:       make(chan struct{}, 2),
		release:       make(chan struct{}),
	}
	ns := service.NewNotificationService(w.notifications)
	ds := service.NewDeliveryService(w.posts, w.accounts, nil, service.NewPublishService(1, gate), ns)
	posts := service.NewPostService(w.posts, nil, ds, ns, nil)
	j := NewPublishScheduledJob(w.posts, ds, nil, 1)

	done := make(chan int)
	go func() { done <- j.Tick(context.Background(), tickAt) }()
	<-gate.started

	_, err := posts.PublishNow(context.Background(), user, post.ID)
	assert.ErrorIs(t, err, service.ErrPostScheduled)

	close(gate.release)
	assert.Equal(t, 1, <-done)

	assert.EqualValues(t, 1, gate.calls.Load())
	assert.Len(t, w.notifications.ForPost(post.ID.Hex()), 1)
	assert.Equal(t, models.PostStatusPublished, w.posts.Get(post.ID).Status)
}
