package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/transfer"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlatformService interface {
	Connect(ctx context.Context, userID primitive.ObjectID, ac *transfer.AccountCreation) (*models.SocialAccount, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]*models.SocialAccount, error)
	Delete(ctx context.Context, userID, accountID primitive.ObjectID) error
}

type platformService struct {
	sa repository.SocialAccountRepository
}

func NewPlatformService(sa repository.SocialAccountRepository) PlatformService {
	return &platformService{sa: sa}
}

// Connect stores a manually entered credential set. One account per platform per user.
func (s *platformService) Connect(ctx context.Context, userID primitive.ObjectID, ac *transfer.AccountCreation) (*models.SocialAccount, error) {
	if ac == nil {
		return nil, invalid("account data is required")
	}

	platform, ok := models.ParsePlatform(strings.ToLower(strings.TrimSpace(ac.Platform)))
	if !ok {
		return nil, invalid("unsupported platform " + ac.Platform)
	}
	if ac.AccessToken == "" {
		return nil, invalid("access_token is required")
	}
	if ac.AccountName == "" {
		return nil, invalid("account_name is required")
	}

	switch platform {
	case models.PlatformTwitter:
		if ac.AccessTokenSecret == "" {
			return nil, invalid("access_token_secret is required for twitter")
		}
	case models.PlatformFacebook:
		if ac.PageID == "" {
			return nil, invalid("page_id is required for facebook")
		}
	case models.PlatformInstagram:
		if ac.BusinessAccountID == "" {
			return nil, invalid("business_account_id is required for instagram")
		}
	case models.PlatformLinkedIn:
		if ac.PersonURN == "" {
			return nil, invalid("person_urn is required for linkedin")
		}
	}

	account := &models.SocialAccount{
		UserID:            userID,
		Platform:          platform,
		AccountName:       ac.AccountName,
		AccountHandle:     ac.AccountHandle,
		AccessToken:       ac.AccessToken,
		AccessTokenSecret: ac.AccessTokenSecret,
		RefreshToken:      ac.RefreshToken,
		PageID:            ac.PageID,
		BusinessAccountID: ac.BusinessAccountID,
		PersonURN:         ac.PersonURN,
		ProfileImage:      ac.ProfileImage,
		IsConnected:       true,
	}

	if _, err := s.sa.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("error connecting account: %w", err)
	}
	return account, nil
}

func (s *platformService) List(ctx context.Context, userID primitive.ObjectID) ([]*models.SocialAccount, error) {
	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	if accounts == nil {
		accounts = []*models.SocialAccount{}
	}
	return accounts, nil
}

func (s *platformService) Delete(ctx context.Context, userID, accountID primitive.ObjectID) error {
	account, err := s.sa.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("error getting account: %w", err)
	}
	if account == nil || account.UserID != userID {
		return ErrAccountNotFound
	}
	if err := s.sa.Remove(ctx, accountID); err != nil {
		return fmt.Errorf("error removing account: %w", err)
	}
	return nil
}
