package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit, offset int64) ([]*models.Notification, error)
	Count(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) (int64, error)
	MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error
	Remove(ctx context.Context, userID, id primitive.ObjectID) error
}

type notificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{col: db.Collection(notificationsCollection)}
}

// Create always inserts a new document.
func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if _, err := r.col.InsertOne(ctx, n); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit, offset int64) ([]*models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, userFilter(userID, unreadOnly), opts)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*models.Notification
	if err = cursor.All(ctx, &list); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) Count(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) (int64, error) {
	return r.col.CountDocuments(ctx, userFilter(userID, unreadOnly))
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) (*models.Notification, error) {
	filter := bson.M{"_id": id, "user_id": userID}
	update := bson.M{"$set": bson.M{"is_read": true}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"is_read": true}}
	_, err := r.col.UpdateMany(ctx, userFilter(userID, true), update)
	return err
}

func (r *notificationRepository) Remove(ctx context.Context, userID, id primitive.ObjectID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func userFilter(userID primitive.ObjectID, unreadOnly bool) bson.M {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}
	return filter
}
