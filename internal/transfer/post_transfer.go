package transfer

import "github.com/maheshrc27/postflow/internal/models"

// PostCreation is the multipart form of the compose request. Platforms is a
// JSON object such as {"twitter":true}.
type PostCreation struct {
	Content      string `form:"content"`
	Platforms    string `form:"platforms"`
	ScheduledFor string `form:"scheduled_for"`
	PostReminder bool   `form:"post_reminder"`
}

type PostUpdate struct {
	Content      *string            `json:"content"`
	Platforms    map[string]bool    `json:"platforms"`
	ScheduledFor *string            `json:"scheduled_for"`
	Images       []models.PostImage `json:"images"`
}

type PostCreated struct {
	Post    *models.Post          `json:"post"`
	Publish *models.PublishResult `json:"publish,omitempty"`
}

type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(page, limit, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

type AccountCreation struct {
	Platform          string `json:"platform"`
	AccountName       string `json:"account_name"`
	AccountHandle     string `json:"account_handle"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
	RefreshToken      string `json:"refresh_token"`
	PageID            string `json:"page_id"`
	BusinessAccountID string `json:"business_account_id"`
	PersonURN         string `json:"person_urn"`
	ProfileImage      string `json:"profile_image"`
}

type NotificationCreation struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata"`
}
