package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	config "github.com/maheshrc27/postflow/configs"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/transfer"
)

var errInstagramNeedsImage = errors.New("Instagram requires at least one image")

type instagramCredentials struct {
	businessAccountID string
	accessToken       string
}

func instagramCredentialsFrom(acc *models.SocialAccount) (instagramCredentials, error) {
	if acc.BusinessAccountID == "" || acc.AccessToken == "" {
		return instagramCredentials{}, errors.New("Instagram account is missing its business account id or token")
	}
	return instagramCredentials{businessAccountID: acc.BusinessAccountID, accessToken: acc.AccessToken}, nil
}

type instagramService struct {
	cfg      config.Graph
	client   *resty.Client
	throttle throttle
}

func NewInstagramService(cfg config.Graph, opts PublisherOptions) PlatformPublisher {
	return &instagramService{
		cfg:      cfg,
		client:   resty.New(),
		throttle: newThrottle(opts),
	}
}

func (s *instagramService) Platform() models.Platform {
	return models.PlatformInstagram
}

// Publish creates a media container from the first image and then publishes it.
func (s *instagramService) Publish(ctx context.Context, text string, images []string, acc *models.SocialAccount) models.PublishOutcome {
	if len(images) == 0 {
		return failed(models.PlatformInstagram, errInstagramNeedsImage)
	}

	creds, err := instagramCredentialsFrom(acc)
	if err != nil {
		return failed(models.PlatformInstagram, err)
	}

	ctx, cancel, err := s.throttle.begin(ctx)
	if err != nil {
		return failed(models.PlatformInstagram, err)
	}
	defer cancel()

	containerID, err := s.createContainer(ctx, creds, images[0], text)
	if err != nil {
		return failed(models.PlatformInstagram, fmt.Errorf("creating media container: %w", err))
	}

	mediaID, err := s.publishContainer(ctx, creds, containerID)
	if err != nil {
		return failed(models.PlatformInstagram, fmt.Errorf("publishing media: %w", err))
	}

	return succeeded(models.PlatformInstagram, mediaID, "https://instagram.com/p/"+mediaID)
}

func (s *instagramService) createContainer(ctx context.Context, creds instagramCredentials, imageURL, caption string) (string, error) {
	return s.post(ctx, creds, "media", transfer.InstagramContainerRequest{ImageURL: imageURL, Caption: caption})
}

func (s *instagramService) publishContainer(ctx context.Context, creds instagramCredentials, containerID string) (string, error) {
	return s.post(ctx, creds, "media_publish", transfer.InstagramPublishRequest{CreationID: containerID})
}

func (s *instagramService) post(ctx context.Context, creds instagramCredentials, edge string, body any) (string, error) {
	var result transfer.GraphIDResponse
	var apiErr transfer.GraphErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.accessToken).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post(fmt.Sprintf("%s/%s/%s/%s", s.cfg.InstagramURL, s.cfg.Version, creds.businessAccountID, edge))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", graphFailure(resp, &apiErr)
	}
	if result.ID == "" {
		return "", errors.New("no id returned")
	}
	return result.ID, nil
}
