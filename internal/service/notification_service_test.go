package service

import (
	"context"
	"testing"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository/repotest"
	"github.com/maheshrc27/postflow/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationLifecycle(t *testing.T) {
	store := repotest.NewNotificationStore()
	svc := NewNotificationService(store)
	ctx := context.Background()
	user := primitive.NewObjectID()
	other := primitive.NewObjectID()

	first, err := svc.Emit(ctx, user, models.NotificationPostPublished, "Post published successfully", "Your post was published to: twitter", nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, user, &transfer.NotificationCreation{Title: "Hello", Message: "Welcome"})
	require.NoError(t, err)
	_, err = svc.Emit(ctx, other, models.NotificationGeneral, "Other", "Not yours", nil)
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	read, err := svc.MarkRead(ctx, user, first.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = svc.MarkRead(ctx, other, first.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	unread, page, err := svc.List(ctx, user, true, 1, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, models.NotificationGeneral, unread[0].Type)
	assert.Equal(t, transfer.Pagination{Page: 1, Limit: 20, Total: 1, Pages: 1}, page)

	require.NoError(t, svc.MarkAllRead(ctx, user))
	count, err = svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, svc.Remove(ctx, user, first.ID))
	assert.ErrorIs(t, svc.Remove(ctx, user, first.ID), ErrNotificationNotFound)
}

func TestCreateNotificationRequiresTitleAndMessage(t *testing.T) {
	svc := NewNotificationService(repotest.NewNotificationStore())

	_, err := svc.Create(context.Background(), primitive.NewObjectID(), &transfer.NotificationCreation{Title: "only title"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNotificationPageSizeIsCapped(t *testing.T) {
	svc := NewNotificationService(repotest.NewNotificationStore())

	list, page, err := svc.List(context.Background(), primitive.NewObjectID(), false, -3, 500)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.EqualValues(t, 1, page.Page)
	assert.EqualValues(t, 100, page.Limit)
}
