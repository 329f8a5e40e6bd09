package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID, status string, limit, offset int64) ([]*models.Post, int64, error)
	FindDue(ctx context.Context, now time.Time) ([]*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Remove(ctx context.Context, id primitive.ObjectID) error
}

type postRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{col: db.Collection(postsCollection)}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (primitive.ObjectID, error) {
	now := time.Now()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, post); err != nil {
		slog.Info(err.Error())
		return primitive.NilObjectID, err
	}
	return post.ID, nil
}

func (r *postRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID, status string, limit, offset int64) ([]*models.Post, int64, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var posts []*models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) FindDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	filter := bson.M{
		"status":        models.PostStatusScheduled,
		"scheduled_for": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_for", Value: 1}})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var posts []*models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

// Save replaces the whole document. Last write wins.
func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
