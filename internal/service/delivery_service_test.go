package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type deliveryFixture struct {
	posts         *repotest.PostStore
	accounts      *repotest.AccountStore
	history       *repotest.HistoryStore
	notifications *repotest.NotificationStore
	svc           DeliveryService
}

func newDeliveryFixture(post *models.Post, accounts []*models.SocialAccount, publishers ...PlatformPublisher) *deliveryFixture {
	f := &deliveryFixture{
		posts:         repotest.NewPostStore(post),
		accounts:      repotest.NewAccountStore(accounts...),
		history:       repotest.NewHistoryStore(),
		notifications: repotest.NewNotificationStore(),
	}
	ds := NewDeliveryService(f.posts, f.accounts, f.history, NewPublishService(4, publishers...), NewNotificationService(f.notifications))
	ds.(*deliveryService).now = func() time.Time {
		return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	}
	f.svc = ds
	return f
}

func TestDeliverScheduledSuccess(t *testing.T) {
	user := primitive.NewObjectID()
	post := newPost(user, "twitter", "linkedin")
	f := newDeliveryFixture(post, []*models.SocialAccount{
		account(user, models.PlatformTwitter),
		account(user, models.PlatformLinkedIn),
	}, okStub(models.PlatformTwitter, "t1"), okStub(models.PlatformLinkedIn, "l1"))

	result := f.svc.DeliverScheduled(context.Background(), post)

	require.NotNil(t, result)
	stored := f.posts.Get(post.ID)
	assert.Equal(t, models.PostStatusPublished, stored.Status)
	require.NotNil(t, stored.PublishedAt)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), *stored.PublishedAt)
	assert.Equal(t, []models.PlatformResult{
		{Platform: "twitter", PostID: "t1", URL: "https://example.com/t1"},
		{Platform: "linkedin", PostID: "l1", URL: "https://example.com/l1"},
	}, stored.PlatformResults)

	notes := f.notifications.ForPost(post.ID.Hex())
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPostPublished, notes[0].Type)
	assert.Equal(t, "Post published successfully", notes[0].Title)
	assert.Equal(t, "Your post was published to: twitter, linkedin", notes[0].Message)
	assert.Equal(t, user, notes[0].UserID)
}

func TestDeliverScheduledPartialStillPublished(t *testing.T) {
	user := primitive.NewObjectID()
	post := newPost(user, "twitter", "facebook")
	f := newDeliveryFixture(post, []*models.SocialAccount{
		account(user, models.PlatformTwitter),
		account(user, models.PlatformFacebook),
	}, okStub(models.PlatformTwitter, "t1"), failStub(models.PlatformFacebook, "boom"))

	f.svc.DeliverScheduled(context.Background(), post)

	assert.Equal(t, models.PostStatusPublished, f.posts.Get(post.ID).Status)
	notes := f.notifications.ForPost(post.ID.Hex())
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPostPublished, notes[0].Type)
	assert.Equal(t, "Your post was published to: twitter", notes[0].Message)
}

func TestDeliverScheduledAllFailed(t *testing.T) {
	user := primitive.NewObjectID()
	post := newPost(user, "twitter", "facebook")
	f := newDeliveryFixture(post, []*models.SocialAccount{
		account(user, models.PlatformTwitter),
		account(user, models.PlatformFacebook),
	}, failStub(models.PlatformTwitter, "rate limited"), failStub(models.PlatformFacebook, "bad token"))

	result := f.svc.DeliverScheduled(context.Background(), post)

	require.NotNil(t, result)
	stored := f.posts.Get(post.ID)
	assert.Equal(t, models.PostStatusFailed, stored.Status)
	assert.Nil(t, stored.PublishedAt)

	notes := f.notifications.ForPost(post.ID.Hex())
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPostFailed, notes[0].Type)
	assert.Equal(t, "twitter: rate limited, facebook: bad token", notes[0].Message)
	assert.Contains(t, notes[0].Metadata, "errors")
}

func TestDeliverWithoutAccounts(t *testing.T) {
	user := primitive.NewObjectID()
	post := newPost(user, "twitter")
	tw := okStub(models.PlatformTwitter, "t1")
	f := newDeliveryFixture(post, nil, tw)

	result := f.svc.DeliverScheduled(context.Background(), post)

	require.NotNil(t, result)
	assert.Empty(t, result.Successful)
	assert.Zero(t, tw.Calls())
	assert.Equal(t, models.PostStatusFailed, f.posts.Get(post.ID).Status)

	notes := f.notifications.ForPost(post.ID.Hex())
	require.Len(t, notes, 1)
	assert.Equal(t, "No connected social media accounts found.", notes[0].Message)
}

func TestDeliverAccountLookupErrorFailsPost(t *testing.T) {
	user := primitive.NewObjectID()
	post := newPost(user, "twitter")
	tw := okStub(models.PlatformTwitter, "t1")
	f := newDeliveryFixture(post, []*models.SocialAccount{account(user, models.PlatformTwitter)}, tw)
	f.accounts.ListErr[user] = errors.New("connection reset")

	f.svc.DeliverScheduled(context.Background(), post)

	assert.Zero(t, tw.Calls())
	assert.Equal(t, models.PostStatusFailed, f.posts.Get(post.ID).Status)
	notes := f.notifications.ForPost(post.ID.Hex())
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPostFailed, notes[0].Type)
	assert.Contains(t, notes[0].Message, "connection reset")
}

func TestDeliverSaveErrorForcesFailedWithOneNotification(t *testing.T) {
	user := primitive.NewObjectID()
	post := newPost(user, "twitter")
	f := newDeliveryFixture(post, []*models.SocialAccount{account(user, models.PlatformTwitter)}, okStub(models.PlatformTwitter, "t1"))
	f.posts.SaveErr = func(p *models.Post) error {
		if p.Status == models.PostStatusPublished {
			return errors.New("write conflict")
		}
		return nil
	}

	f.svc.DeliverScheduled(context.Background(), post)

	assert.Equal(t, models.PostStatusFailed, f.posts.Get(post.ID).Status)
	notes := f.notifications.ForPost(post.ID.Hex())
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPostFailed, notes[0].Type)
	assert.Contains(t, notes[0].Message, "write conflict")
}

func TestDeliverNowPartialFailure(t *testing.T) {
	user := primitive.NewObjectID()
	post := newPost(user, "twitter", "instagram")
	post.Status = models.PostStatusDraft
	f := newDeliveryFixture(post, []*models.SocialAccount{
		account(user, models.PlatformTwitter),
		account(user, models.PlatformInstagram),
	}, okStub(models.PlatformTwitter, "t1"), failStub(models.PlatformInstagram, "Instagram requires at least one image"))

	result := f.svc.DeliverNow(context.Background(), post)

	require.NotNil(t, result)
	assert.Equal(t, models.PostStatusPublished, f.posts.Get(post.ID).Status)
	notes := f.notifications.ForPost(post.ID.Hex())
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPostPartiallyFailed, notes[0].Type)
	assert.Equal(t, "Failed on: instagram: Instagram requires at least one image", notes[0].Message)
}

func TestDeliverRecordsHistoryPerAttempt(t *testing.T) {
	user := primitive.NewObjectID()
	post := newPost(user, "twitter", "facebook")
	f := newDeliveryFixture(post, []*models.SocialAccount{
		account(user, models.PlatformTwitter),
		account(user, models.PlatformFacebook),
	}, okStub(models.PlatformTwitter, "t1"), failStub(models.PlatformFacebook, "bad token"))

	f.svc.DeliverNow(context.Background(), post)

	rows, err := f.history.GetByPostID(context.Background(), post.ID.Hex())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "twitter", rows[0].Platform)
	assert.Equal(t, "t1", rows[0].ExternalPostID)
	assert.Equal(t, TriggerImmediate, rows[0].Trigger)
	assert.Equal(t, "facebook", rows[1].Platform)
	assert.Equal(t, "bad token", rows[1].ErrorMessage)
}

// orderedNotifications checks the post row already carries its final status
// when the notification lands.
type orderedNotifications struct {
	*repotest.NotificationStore
	posts  *repotest.PostStore
	seenAs []string
}

func (o *orderedNotifications) Create(ctx context.Context, n *models.Notification) error {
	id, _ := primitive.ObjectIDFromHex(n.Metadata["post_id"].(string))
	if p := o.posts.Get(id); p != nil {
		o.seenAs = append(o.seenAs, p.Status)
	}
	return o.NotificationStore.Create(ctx, n)
}

func TestDeliverSavesStatusBeforeNotifying(t *testing.T) {
	user := primitive.NewObjectID()
	post := newPost(user, "twitter")
	posts := repotest.NewPostStore(post)
	notes := &orderedNotifications{NotificationStore: repotest.NewNotificationStore(), posts: posts}
	ds := NewDeliveryService(posts,
		repotest.NewAccountStore(account(user, models.PlatformTwitter)),
		nil,
		NewPublishService(1, okStub(models.PlatformTwitter, "t1")),
		NewNotificationService(notes),
	)

	ds.DeliverScheduled(context.Background(), post)

	assert.Equal(t, []string{models.PostStatusPublished}, notes.seenAs)
}
