package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/transfer"
	"golang.org/x/oauth2"
)

const linkedInPersonPrefix = "urn:li:person:"

type linkedInCredentials struct {
	personURN   string
	accessToken string
}

func linkedInCredentialsFrom(acc *models.SocialAccount) (linkedInCredentials, error) {
	if acc.PersonURN == "" || acc.AccessToken == "" {
		return linkedInCredentials{}, errors.New("LinkedIn account is missing its person URN or token")
	}
	urn := acc.PersonURN
	if !strings.HasPrefix(urn, "urn:li:") {
		urn = linkedInPersonPrefix + urn
	}
	return linkedInCredentials{personURN: urn, accessToken: acc.AccessToken}, nil
}

type linkedInService struct {
	baseURL  string
	throttle throttle
}

func NewLinkedInService(baseURL string, opts PublisherOptions) PlatformPublisher {
	return &linkedInService{
		baseURL:  baseURL,
		throttle: newThrottle(opts),
	}
}

func (s *linkedInService) Platform() models.Platform {
	return models.PlatformLinkedIn
}

// Publish creates a public UGC post with at most one image.
func (s *linkedInService) Publish(ctx context.Context, text string, images []string, acc *models.SocialAccount) models.PublishOutcome {
	creds, err := linkedInCredentialsFrom(acc)
	if err != nil {
		return failed(models.PlatformLinkedIn, err)
	}

	ctx, cancel, err := s.throttle.begin(ctx)
	if err != nil {
		return failed(models.PlatformLinkedIn, err)
	}
	defer cancel()

	client := resty.NewWithClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: creds.accessToken,
		TokenType:   "Bearer",
	})))

	var result transfer.LinkedInPostResponse
	var apiErr transfer.LinkedInErrorResponse
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetBody(buildUGCPost(creds.personURN, text, images)).
		SetResult(&result).
		SetError(&apiErr).
		Post(s.baseURL + "/v2/ugcPosts")
	if err != nil {
		return failed(models.PlatformLinkedIn, err)
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return failed(models.PlatformLinkedIn, errors.New(apiErr.Message))
		}
		return failed(models.PlatformLinkedIn, fmt.Errorf("unexpected status code %d", resp.StatusCode()))
	}

	id := result.ID
	if id == "" {
		id = resp.Header().Get("X-Restli-Id")
	}
	if id == "" {
		return failed(models.PlatformLinkedIn, errors.New("LinkedIn returned no post id"))
	}

	return succeeded(models.PlatformLinkedIn, id, "https://www.linkedin.com/feed/update/"+id)
}

func buildUGCPost(author, text string, images []string) transfer.LinkedInUGCPost {
	var post transfer.LinkedInUGCPost
	post.Author = author
	post.LifecycleState = "PUBLISHED"
	post.Visibility.MemberNetworkVisibility = "PUBLIC"

	content := transfer.LinkedInShareContent{
		ShareCommentary:    transfer.LinkedInShareCommentary{Text: text},
		ShareMediaCategory: "NONE",
	}
	if len(images) > 0 {
		content.ShareMediaCategory = "IMAGE"
		content.Media = []transfer.LinkedInShareMedia{{Status: "READY", OriginalURL: images[0]}}
	}
	post.SpecificContent.ShareContent = content
	return post
}
