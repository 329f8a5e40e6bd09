package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/go-resty/resty/v2"
	config "github.com/maheshrc27/postflow/configs"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/transfer"
)

type twitterCredentials struct {
	token  string
	secret string
}

func twitterCredentialsFrom(acc *models.SocialAccount) (twitterCredentials, error) {
	if acc.AccessToken == "" || acc.AccessTokenSecret == "" {
		return twitterCredentials{}, errors.New("Twitter account is missing its access token or secret")
	}
	return twitterCredentials{token: acc.AccessToken, secret: acc.AccessTokenSecret}, nil
}

type twitterService struct {
	cfg      config.Twitter
	oauth    *oauth1.Config
	fetch    *resty.Client
	throttle throttle
}

func NewTwitterService(cfg config.Twitter, opts PublisherOptions) PlatformPublisher {
	return &twitterService{
		cfg:      cfg,
		oauth:    oauth1.NewConfig(cfg.APIKey, cfg.APISecret),
		fetch:    resty.New(),
		throttle: newThrottle(opts),
	}
}

func (s *twitterService) Platform() models.Platform {
	return models.PlatformTwitter
}

func (s *twitterService) Publish(ctx context.Context, text string, images []string, acc *models.SocialAccount) models.PublishOutcome {
	creds, err := twitterCredentialsFrom(acc)
	if err != nil {
		return failed(models.PlatformTwitter, err)
	}

	ctx, cancel, err := s.throttle.begin(ctx)
	if err != nil {
		return failed(models.PlatformTwitter, err)
	}
	defer cancel()

	client := resty.NewWithClient(s.oauth.Client(ctx, oauth1.NewToken(creds.token, creds.secret)))

	mediaIDs := s.uploadAll(ctx, client, images)

	body := transfer.TweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		body.Media = &transfer.TweetMedia{MediaIDs: mediaIDs}
	}

	var result transfer.TweetResponse
	var apiErr transfer.TwitterErrorResponse
	resp, err := client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post(s.cfg.APIURL + "/2/tweets")
	if err != nil {
		return failed(models.PlatformTwitter, err)
	}
	if resp.IsError() {
		return failed(models.PlatformTwitter, twitterFailure(resp, &apiErr))
	}
	if result.Data.ID == "" {
		return failed(models.PlatformTwitter, errors.New("Twitter returned no tweet id"))
	}

	return succeeded(models.PlatformTwitter, result.Data.ID, "https://twitter.com/i/web/status/"+result.Data.ID)
}

// uploadAll uploads images one by one and keeps the ids of those that made it.
func (s *twitterService) uploadAll(ctx context.Context, client *resty.Client, images []string) []string {
	var ids []string
	for i, ref := range images {
		id, err := s.upload(ctx, client, ref)
		if err != nil {
			slog.WarnContext(ctx, "twitter media upload failed", "index", i, "err", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (s *twitterService) upload(ctx context.Context, client *resty.Client, ref string) (string, error) {
	img, err := loadImage(ctx, s.fetch, ref)
	if err != nil {
		return "", err
	}

	var result transfer.TwitterMediaResponse
	resp, err := client.R().
		SetContext(ctx).
		SetMultipartField("media", "image."+img.ext, img.mime, bytes.NewReader(img.data)).
		SetResult(&result).
		Post(s.cfg.UploadURL + "/1.1/media/upload.json")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}
	if result.MediaIDString == "" {
		return "", errors.New("no media id returned")
	}
	return result.MediaIDString, nil
}

func twitterFailure(resp *resty.Response, e *transfer.TwitterErrorResponse) error {
	if e.Detail != "" {
		return errors.New(e.Detail)
	}
	if len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, m := range e.Errors {
			msgs = append(msgs, m.Message)
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	if e.Title != "" {
		return errors.New(e.Title)
	}
	return fmt.Errorf("unexpected status code %d", resp.StatusCode())
}
