package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	Content         string             `bson:"content" json:"content"`
	Platforms       map[string]bool    `bson:"platforms" json:"platforms"`
	Images          []PostImage        `bson:"images" json:"images"`
	Status          string             `bson:"status" json:"status"` // draft, scheduled, published, failed
	ScheduledFor    *time.Time         `bson:"scheduled_for,omitempty" json:"scheduled_for,omitempty"`
	PublishedAt     *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`
	Metrics         PostMetrics        `bson:"metrics" json:"metrics"`
	PlatformResults []PlatformResult   `bson:"platform_results" json:"platform_results"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

type PostImage struct {
	URL string `bson:"url" json:"url"`
	Alt string `bson:"alt" json:"alt"`
}

// PostMetrics is owned by analytics. The publication pipeline never writes it.
type PostMetrics struct {
	Likes       int64   `bson:"likes" json:"likes"`
	Comments    int64   `bson:"comments" json:"comments"`
	Shares      int64   `bson:"shares" json:"shares"`
	Impressions int64   `bson:"impressions" json:"impressions"`
	Engagement  float64 `bson:"engagement" json:"engagement"`
}

type PlatformResult struct {
	Platform string `bson:"platform" json:"platform"`
	PostID   string `bson:"post_id" json:"post_id"`
	URL      string `bson:"url" json:"url"`
}

// ImageURLs returns the image references in display order.
func (p *Post) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// Editable reports whether the compose flow may still change the post.
func (p *Post) Editable() bool {
	return p.Status != PostStatusPublished
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

const MaxContentLength = 2800
