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

type facebookCredentials struct {
	pageID    string
	pageToken string
}

func facebookCredentialsFrom(acc *models.SocialAccount) (facebookCredentials, error) {
	if acc.PageID == "" || acc.AccessToken == "" {
		return facebookCredentials{}, errors.New("Facebook account is missing its page id or page token")
	}
	return facebookCredentials{pageID: acc.PageID, pageToken: acc.AccessToken}, nil
}

type facebookService struct {
	cfg      config.Graph
	client   *resty.Client
	throttle throttle
}

func NewFacebookService(cfg config.Graph, opts PublisherOptions) PlatformPublisher {
	return &facebookService{
		cfg:      cfg,
		client:   resty.New(),
		throttle: newThrottle(opts),
	}
}

func (s *facebookService) Platform() models.Platform {
	return models.PlatformFacebook
}

// Publish posts to the page feed. Only the first image is attached.
func (s *facebookService) Publish(ctx context.Context, text string, images []string, acc *models.SocialAccount) models.PublishOutcome {
	creds, err := facebookCredentialsFrom(acc)
	if err != nil {
		return failed(models.PlatformFacebook, err)
	}

	ctx, cancel, err := s.throttle.begin(ctx)
	if err != nil {
		return failed(models.PlatformFacebook, err)
	}
	defer cancel()

	body := transfer.FacebookFeedRequest{Message: text}
	if len(images) > 0 {
		body.Picture = images[0]
	}

	var result transfer.GraphIDResponse
	var apiErr transfer.GraphErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", creds.pageToken).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post(fmt.Sprintf("%s/%s/%s/feed", s.cfg.FacebookURL, s.cfg.Version, creds.pageID))
	if err != nil {
		return failed(models.PlatformFacebook, err)
	}
	if resp.IsError() {
		return failed(models.PlatformFacebook, graphFailure(resp, &apiErr))
	}
	if result.ID == "" {
		return failed(models.PlatformFacebook, errors.New("Facebook returned no post id"))
	}

	return succeeded(models.PlatformFacebook, result.ID, "https://facebook.com/"+result.ID)
}
