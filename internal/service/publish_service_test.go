package service

import (
	"context"
	"testing"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPost(userID primitive.ObjectID, platforms ...string) *models.Post {
	flags := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		flags[p] = true
	}
	return &models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Content:   "Launch day!",
		Platforms: flags,
		Images:    []models.PostImage{{URL: "https://img/1.png"}},
		Status:    models.PostStatusScheduled,
	}
}

func TestPublishPostCoversEveryTarget(t *testing.T) {
	user := primitive.NewObjectID()
	tw := okStub(models.PlatformTwitter, "t1")
	fb := failStub(models.PlatformFacebook, "Invalid OAuth access token.")
	li := okStub(models.PlatformLinkedIn, "l1")
	svc := NewPublishService(4, tw, fb, li)

	post := newPost(user, "twitter", "facebook", "linkedin")
	post.Platforms["instagram"] = false
	accounts := []*models.SocialAccount{
		account(user, models.PlatformTwitter),
		account(user, models.PlatformFacebook),
		account(user, models.PlatformLinkedIn),
	}

	result := svc.PublishPost(context.Background(), post, accounts)

	assert.Equal(t, []string{"twitter", "linkedin"}, models.PlatformNames(result.Successful))
	assert.Equal(t, []string{"facebook"}, models.PlatformNames(result.Failed))
	assert.Equal(t, "Invalid OAuth access token.", result.Failed[0].Error)
	assert.Equal(t, 1, tw.Calls())
	assert.Equal(t, []string{"https://img/1.png"}, tw.images[0])
}

func TestPublishPostWithoutAccountSkipsAdapter(t *testing.T) {
	user := primitive.NewObjectID()
	tw := okStub(models.PlatformTwitter, "t1")
	li := okStub(models.PlatformLinkedIn, "l1")
	svc := NewPublishService(2, tw, li)

	result := svc.PublishPost(context.Background(), newPost(user, "twitter", "linkedin"), []*models.SocialAccount{
		account(user, models.PlatformLinkedIn),
	})

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "twitter", result.Failed[0].Platform)
	assert.Equal(t, "No connected account", result.Failed[0].Error)
	assert.Zero(t, tw.Calls())
	assert.Equal(t, []string{"linkedin"}, models.PlatformNames(result.Successful))
}

func TestPublishPostDisconnectedAccountCountsAsMissing(t *testing.T) {
	user := primitive.NewObjectID()
	tw := okStub(models.PlatformTwitter, "t1")
	acc := account(user, models.PlatformTwitter)
	acc.IsConnected = false

	result := NewPublishService(1, tw).PublishPost(context.Background(), newPost(user, "twitter"), []*models.SocialAccount{acc})

	assert.Empty(t, result.Successful)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "No connected account", result.Failed[0].Error)
	assert.Zero(t, tw.Calls())
}

func TestPublishPostUnknownPlatform(t *testing.T) {
	user := primitive.NewObjectID()
	svc := NewPublishService(2, okStub(models.PlatformTwitter, "t1"))

	result := svc.PublishPost(context.Background(), newPost(user, "myspace", "bluesky"), nil)

	assert.Empty(t, result.Successful)
	require.Len(t, result.Failed, 2)
	for _, f := range result.Failed {
		assert.Equal(t, "Unknown platform", f.Error)
	}
}

func TestPublishPostNoTargets(t *testing.T) {
	result := NewPublishService(2).PublishPost(context.Background(), newPost(primitive.NewObjectID()), nil)

	assert.NotNil(t, result.Successful)
	assert.NotNil(t, result.Failed)
	assert.Empty(t, result.Successful)
	assert.Empty(t, result.Failed)
}

func TestPublishPostOrderIsStable(t *testing.T) {
	user := primitive.NewObjectID()
	accounts := []*models.SocialAccount{
		account(user, models.PlatformLinkedIn),
		account(user, models.PlatformInstagram),
		account(user, models.PlatformFacebook),
		account(user, models.PlatformTwitter),
	}
	svc := NewPublishService(4,
		okStub(models.PlatformLinkedIn, "l"),
		okStub(models.PlatformInstagram, "i"),
		okStub(models.PlatformFacebook, "f"),
		okStub(models.PlatformTwitter, "t"),
	)
	post := newPost(user, "linkedin", "instagram", "facebook", "twitter")

	first := models.PlatformNames(svc.PublishPost(context.Background(), post, accounts).Successful)
	for i := 0; i < 20; i++ {
		again := svc.PublishPost(context.Background(), post, accounts)
		assert.Equal(t, first, models.PlatformNames(again.Successful))
	}
	assert.Equal(t, models.TargetOrder(post.Platforms), first)
}

func TestPublishPostRecoversAdapterPanic(t *testing.T) {
	user := primitive.NewObjectID()
	boom := &publisherStub{platform: models.PlatformFacebook, panics: true}
	svc := NewPublishService(2, boom, okStub(models.PlatformTwitter, "t1"))

	result := svc.PublishPost(context.Background(), newPost(user, "twitter", "facebook"), []*models.SocialAccount{
		account(user, models.PlatformTwitter),
		account(user, models.PlatformFacebook),
	})

	assert.Equal(t, []string{"twitter"}, models.PlatformNames(result.Successful))
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "facebook", result.Failed[0].Platform)
	assert.Contains(t, result.Failed[0].Error, "adapter exploded")
}
