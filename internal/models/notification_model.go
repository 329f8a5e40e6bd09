package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Metadata  map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

const (
	NotificationPostPublished       = "post_published"
	NotificationPostPartiallyFailed = "post_partially_failed"
	NotificationPostFailed          = "post_failed"
	NotificationPostScheduled       = "post_scheduled"
	NotificationGeneral             = "general"
)
