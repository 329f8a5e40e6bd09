package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository/repotest"
	"github.com/maheshrc27/postflow/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestConnectAccount(t *testing.T) {
	store := repotest.NewAccountStore()
	svc := NewPlatformService(store)
	user := primitive.NewObjectID()

	acc, err := svc.Connect(context.Background(), user, &transfer.AccountCreation{
		Platform:    " LinkedIn ",
		AccountName: "Ada",
		AccessToken: "tok",
		PersonURN:   "abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PlatformLinkedIn, acc.Platform)
	assert.True(t, acc.IsConnected)

	_, err = svc.Connect(context.Background(), user, &transfer.AccountCreation{
		Platform:    "linkedin",
		AccountName: "Ada again",
		AccessToken: "tok",
		PersonURN:   "abc123",
	})
	assert.ErrorIs(t, err, ErrAccountExists)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
}

func TestConnectAccountNeedsPlatformCredential(t *testing.T) {
	svc := NewPlatformService(repotest.NewAccountStore())
	user := primitive.NewObjectID()

	for _, platform := range []string{"twitter", "facebook", "instagram", "linkedin"} {
		_, err := svc.Connect(context.Background(), user, &transfer.AccountCreation{
			Platform:    platform,
			AccountName: "name",
			AccessToken: "tok",
		})
		assert.ErrorIs(t, err, ErrInvalidInput, platform)
	}

	_, err := svc.Connect(context.Background(), user, &transfer.AccountCreation{Platform: "myspace", AccountName: "n", AccessToken: "t"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteAccountChecksOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	acc := account(owner, models.PlatformTwitter)
	store := repotest.NewAccountStore(acc)
	svc := NewPlatformService(store)

	assert.ErrorIs(t, svc.Delete(context.Background(), primitive.NewObjectID(), acc.ID), ErrAccountNotFound)
	require.NoError(t, svc.Delete(context.Background(), owner, acc.ID))

	list, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusCode(invalid("nope")))
	assert.Equal(t, http.StatusNotFound, StatusCode(ErrPostNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(assert.AnError))
}
