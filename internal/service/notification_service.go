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
	"go.mongodb.org/mongo-driver/mongo"
)

const maxNotificationPageSize = 100

type NotificationService interface {
	Emit(ctx context.Context, userID primitive.ObjectID, kind, title, message string, metadata map[string]any) (*models.Notification, error)
	Create(ctx context.Context, userID primitive.ObjectID, nc *transfer.NotificationCreation) (*models.Notification, error)
	List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]*models.Notification, transfer.Pagination, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, userID, id primitive.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
	Remove(ctx context.Context, userID, id primitive.ObjectID) error
}

type notificationService struct {
	nr repository.NotificationRepository
}

func NewNotificationService(nr repository.NotificationRepository) NotificationService {
	return &notificationService{nr: nr}
}

// Emit appends exactly one notification record.
func (s *notificationService) Emit(ctx context.Context, userID primitive.ObjectID, kind, title, message string, metadata map[string]any) (*models.Notification, error) {
	n := &models.Notification{
		UserID:   userID,
		Type:     kind,
		Title:    title,
		Message:  message,
		Metadata: metadata,
	}
	if err := s.nr.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	return n, nil
}

func (s *notificationService) Create(ctx context.Context, userID primitive.ObjectID, nc *transfer.NotificationCreation) (*models.Notification, error) {
	if nc == nil || strings.TrimSpace(nc.Title) == "" || strings.TrimSpace(nc.Message) == "" {
		return nil, invalid("title and message are required")
	}
	kind := nc.Type
	if kind == "" {
		kind = models.NotificationGeneral
	}
	return s.Emit(ctx, userID, kind, nc.Title, nc.Message, nc.Metadata)
}

func (s *notificationService) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]*models.Notification, transfer.Pagination, error) {
	page, limit = normalizePage(page, limit, 20, maxNotificationPageSize)

	list, err := s.nr.List(ctx, userID, unreadOnly, limit, (page-1)*limit)
	if err != nil {
		return nil, transfer.Pagination{}, fmt.Errorf("listing notifications: %w", err)
	}
	total, err := s.nr.Count(ctx, userID, unreadOnly)
	if err != nil {
		return nil, transfer.Pagination{}, fmt.Errorf("counting notifications: %w", err)
	}
	if list == nil {
		list = []*models.Notification{}
	}
	return list, transfer.NewPagination(page, limit, total), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.nr.Count(ctx, userID, true)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id primitive.ObjectID) (*models.Notification, error) {
	n, err := s.nr.MarkAsRead(ctx, userID, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("marking notification read: %w", err)
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.nr.MarkAllAsRead(ctx, userID); err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}

func (s *notificationService) Remove(ctx context.Context, userID, id primitive.ObjectID) error {
	if err := s.nr.Remove(ctx, userID, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("removing notification: %w", err)
	}
	return nil
}

func normalizePage(page, limit, fallback, ceiling int64) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = fallback
	}
	if limit > ceiling {
		limit = ceiling
	}
	return page, limit
}
