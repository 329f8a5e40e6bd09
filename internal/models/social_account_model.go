package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SocialAccount binds a user to one external platform. Secondary credentials
// are platform specific: Twitter uses AccessTokenSecret, Facebook PageID,
// Instagram BusinessAccountID and LinkedIn PersonURN.
type SocialAccount struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"user_id" json:"user_id"`
	Platform          Platform           `bson:"platform" json:"platform"`
	AccountName       string             `bson:"account_name" json:"account_name"`
	AccountHandle     string             `bson:"account_handle" json:"account_handle"`
	AccessToken       string             `bson:"access_token" json:"-"`
	AccessTokenSecret string             `bson:"access_token_secret,omitempty" json:"-"`
	RefreshToken      string             `bson:"refresh_token,omitempty" json:"-"`
	PageID            string             `bson:"page_id,omitempty" json:"page_id,omitempty"`
	BusinessAccountID string             `bson:"business_account_id,omitempty" json:"business_account_id,omitempty"`
	PersonURN         string             `bson:"person_urn,omitempty" json:"person_urn,omitempty"`
	ProfileImage      string             `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	FollowerCount     int64              `bson:"follower_count" json:"follower_count"`
	IsConnected       bool               `bson:"is_connected" json:"is_connected"`
	ConnectedAt       time.Time          `bson:"connected_at" json:"connected_at"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}
