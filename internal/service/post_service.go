package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxImages    = 4
	MaxImageSize = 10 << 20
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {}, "image/png": {}, "image/gif": {}, "image/webp": {},
}

type PostService interface {
	CreatePost(ctx context.Context, userID primitive.ObjectID, pc *transfer.PostCreation, files []*multipart.FileHeader) (*transfer.PostCreated, error)
	List(ctx context.Context, userID primitive.ObjectID, status string, page, limit int64) ([]*models.Post, transfer.Pagination, error)
	PostInfo(ctx context.Context, userID, postID primitive.ObjectID) (*models.Post, error)
	Update(ctx context.Context, userID, postID primitive.ObjectID, pu *transfer.PostUpdate) (*models.Post, error)
	PublishNow(ctx context.Context, userID, postID primitive.ObjectID) (*transfer.PostCreated, error)
	History(ctx context.Context, userID, postID primitive.ObjectID) ([]*models.PostingHistory, error)
	Remove(ctx context.Context, userID, postID primitive.ObjectID) error
}

type postService struct {
	pr     repository.PostRepository
	phr    repository.PostingHistoryRepository
	ds     DeliveryService
	ns     NotificationService
	images ImageStore
	now    func() time.Time
}

// NewPostService keeps images inline as data URIs when images is nil.
func NewPostService(
	pr repository.PostRepository,
	phr repository.PostingHistoryRepository,
	ds DeliveryService,
	ns NotificationService,
	images ImageStore) PostService {
	return &postService{
		pr:     pr,
		phr:    phr,
		ds:     ds,
		ns:     ns,
		images: images,
		now:    time.Now,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID primitive.ObjectID, pc *transfer.PostCreation, files []*multipart.FileHeader) (*transfer.PostCreated, error) {
	if pc == nil {
		return nil, invalid("post data is required")
	}

	content, err := validateContent(pc.Content)
	if err != nil {
		return nil, err
	}

	platforms, err := parsePlatforms(pc.Platforms)
	if err != nil {
		return nil, err
	}

	var scheduledFor *time.Time
	if strings.TrimSpace(pc.ScheduledFor) != "" {
		t, err := s.parseSchedule(pc.ScheduledFor)
		if err != nil {
			return nil, err
		}
		scheduledFor = &t
	}

	if len(files) > MaxImages {
		return nil, invalid(fmt.Sprintf("at most %d images are allowed", MaxImages))
	}

	images := make([]models.PostImage, 0, len(files))
	for _, file := range files {
		img, err := s.storeImage(ctx, userID, file)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
	}

	post := &models.Post{
		UserID:          userID,
		Content:         content,
		Platforms:       platforms,
		Images:          images,
		Status:          models.PostStatusDraft,
		PlatformResults: []models.PlatformResult{},
	}
	if scheduledFor != nil {
		post.Status = models.PostStatusScheduled
		post.ScheduledFor = scheduledFor
	}

	if _, err := s.pr.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	if scheduledFor == nil {
		result := s.ds.DeliverNow(ctx, post)
		return &transfer.PostCreated{Post: post, Publish: result}, nil
	}

	if pc.PostReminder {
		_, err := s.ns.Emit(ctx, userID, models.NotificationPostScheduled, "Post scheduled",
			"Your post is scheduled for "+scheduledFor.Format(time.RFC1123),
			map[string]any{"post_id": post.ID.Hex()},
		)
		if err != nil {
			slog.WarnContext(ctx, "post reminder not created", "post_id", post.ID.Hex(), "err", err)
		}
	}

	return &transfer.PostCreated{Post: post}, nil
}

func (s *postService) List(ctx context.Context, userID primitive.ObjectID, status string, page, limit int64) ([]*models.Post, transfer.Pagination, error) {
	if status != "" && !validStatus(status) {
		return nil, transfer.Pagination{}, invalid("unknown status " + status)
	}
	page, limit = normalizePage(page, limit, 10, 100)

	posts, total, err := s.pr.ListByUserID(ctx, userID, status, limit, (page-1)*limit)
	if err != nil {
		return nil, transfer.Pagination{}, fmt.Errorf("error listing posts: %w", err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, transfer.NewPagination(page, limit, total), nil
}

func (s *postService) PostInfo(ctx context.Context, userID, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if post == nil || post.UserID != userID {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) Update(ctx context.Context, userID, postID primitive.ObjectID, pu *transfer.PostUpdate) (*models.Post, error) {
	if pu == nil {
		return nil, invalid("update data is required")
	}

	post, err := s.PostInfo(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !post.Editable() {
		return nil, ErrPostNotEditable
	}

	if pu.Content != nil {
		content, err := validateContent(*pu.Content)
		if err != nil {
			return nil, err
		}
		post.Content = content
	}

	if pu.Platforms != nil {
		if err := validatePlatforms(pu.Platforms); err != nil {
			return nil, err
		}
		post.Platforms = pu.Platforms
	}

	if pu.Images != nil {
		if len(pu.Images) > MaxImages {
			return nil, invalid(fmt.Sprintf("at most %d images are allowed", MaxImages))
		}
		post.Images = pu.Images
	}

	if pu.ScheduledFor != nil {
		if strings.TrimSpace(*pu.ScheduledFor) == "" {
			post.ScheduledFor = nil
			post.Status = models.PostStatusDraft
		} else {
			t, err := s.parseSchedule(*pu.ScheduledFor)
			if err != nil {
				return nil, err
			}
			post.ScheduledFor = &t
			post.Status = models.PostStatusScheduled
		}
	}

	if err := s.pr.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}
	return post, nil
}

// PublishNow runs a draft or failed post through delivery right away.
// Scheduled posts belong to the scheduler tick until they are unscheduled.
func (s *postService) PublishNow(ctx context.Context, userID, postID primitive.ObjectID) (*transfer.PostCreated, error) {
	post, err := s.PostInfo(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !post.Editable() {
		return nil, ErrPostNotEditable
	}
	if post.Status == models.PostStatusScheduled {
		return nil, ErrPostScheduled
	}

	result := s.ds.DeliverNow(ctx, post)
	return &transfer.PostCreated{Post: post, Publish: result}, nil
}

func (s *postService) History(ctx context.Context, userID, postID primitive.ObjectID) ([]*models.PostingHistory, error) {
	if _, err := s.PostInfo(ctx, userID, postID); err != nil {
		return nil, err
	}
	if s.phr == nil {
		return []*models.PostingHistory{}, nil
	}

	history, err := s.phr.GetByPostID(ctx, postID.Hex())
	if err != nil {
		return nil, fmt.Errorf("error getting posting history: %w", err)
	}
	if history == nil {
		history = []*models.PostingHistory{}
	}
	return history, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID primitive.ObjectID) error {
	if _, err := s.PostInfo(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}
	return nil
}

func (s *postService) parseSchedule(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalid("scheduled_for must be an RFC3339 timestamp")
	}
	if !t.After(s.now()) {
		return time.Time{}, invalid("scheduled_for must be in the future")
	}
	return t.UTC(), nil
}

func (s *postService) storeImage(ctx context.Context, userID primitive.ObjectID, file *multipart.FileHeader) (*models.PostImage, error) {
	if file.Size > MaxImageSize {
		return nil, invalid(fmt.Sprintf("%s is larger than 10MB", file.Filename))
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, invalid(fmt.Sprintf("%s is larger than 10MB", file.Filename))
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return nil, ErrUnsupportedFile
	}
	if _, ok := allowedImageTypes[kind.MIME.Value]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, kind.MIME.Value)
	}

	alt := strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))

	if s.images == nil {
		return &models.PostImage{URL: encodeDataURI(kind.MIME.Value, data), Alt: alt}, nil
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	url, err := s.images.Upload(ctx, fmt.Sprintf("%s/%s.%s", userID.Hex(), id, kind.Extension), data, kind.MIME.Value)
	if err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}
	return &models.PostImage{URL: url, Alt: alt}, nil
}

func validateContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", invalid("content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		return "", invalid(fmt.Sprintf("content cannot exceed %d characters", models.MaxContentLength))
	}
	return content, nil
}

func parsePlatforms(raw string) (map[string]bool, error) {
	var platforms map[string]bool
	if err := json.Unmarshal([]byte(raw), &platforms); err != nil {
		return nil, invalid("invalid platforms format")
	}
	if err := validatePlatforms(platforms); err != nil {
		return nil, err
	}
	return platforms, nil
}

func validatePlatforms(platforms map[string]bool) error {
	selected := 0
	for name, on := range platforms {
		if !on {
			continue
		}
		if _, ok := models.ParsePlatform(name); !ok {
			return invalid("unsupported platform " + name)
		}
		selected++
	}
	if selected == 0 {
		return invalid("select at least one platform")
	}
	return nil
}

func validStatus(status string) bool {
	switch status {
	case models.PostStatusDraft, models.PostStatusScheduled, models.PostStatusPublished, models.PostStatusFailed:
		return true
	}
	return false
}
