package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrAccountExists = errors.New("account already connected for this platform")

type SocialAccountRepository interface {
	Create(ctx context.Context, sa *models.SocialAccount) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.SocialAccount, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.SocialAccount, error)
	GetByUserAndPlatform(ctx context.Context, userID primitive.ObjectID, platform models.Platform) (*models.SocialAccount, error)
	Remove(ctx context.Context, id primitive.ObjectID) error
}

// socialAccountRepository keeps tokens encrypted at rest and hands out
// decrypted copies.
type socialAccountRepository struct {
	col *mongo.Collection
	key []byte
}

func NewSocialAccountRepository(db *mongo.Database, secretKey string) SocialAccountRepository {
	return &socialAccountRepository{
		col: db.Collection(socialAccountsCollection),
		key: utils.DeriveKey(secretKey),
	}
}

func (r *socialAccountRepository) Create(ctx context.Context, sa *models.SocialAccount) (primitive.ObjectID, error) {
	now := time.Now()
	doc := *sa
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	doc.ConnectedAt = now
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if err := r.seal(&doc); err != nil {
		return primitive.NilObjectID, err
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrAccountExists
		}
		slog.Info(err.Error())
		return primitive.NilObjectID, err
	}
	sa.ID = doc.ID
	return doc.ID, nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SocialAccount, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *socialAccountRepository) GetByUserAndPlatform(ctx context.Context, userID primitive.ObjectID, platform models.Platform) (*models.SocialAccount, error) {
	return r.findOne(ctx, bson.M{"user_id": userID, "platform": platform})
}

func (r *socialAccountRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.SocialAccount, error) {
	opts := options.Find().SetSort(bson.D{{Key: "platform", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var accounts []*models.SocialAccount
	if err := cursor.All(ctx, &accounts); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	for _, sa := range accounts {
		if err := r.open(sa); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (r *socialAccountRepository) Remove(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialAccountRepository) findOne(ctx context.Context, filter bson.M) (*models.SocialAccount, error) {
	var sa models.SocialAccount
	err := r.col.FindOne(ctx, filter).Decode(&sa)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	if err := r.open(&sa); err != nil {
		return nil, err
	}
	return &sa, nil
}

func (r *socialAccountRepository) seal(sa *models.SocialAccount) error {
	for _, field := range []*string{&sa.AccessToken, &sa.AccessTokenSecret, &sa.RefreshToken} {
		if *field == "" {
			continue
		}
		encrypted, err := utils.Encrypt([]byte(*field), r.key)
		if err != nil {
			return err
		}
		*field = encrypted
	}
	return nil
}

func (r *socialAccountRepository) open(sa *models.SocialAccount) error {
	for _, field := range []*string{&sa.AccessToken, &sa.AccessTokenSecret, &sa.RefreshToken} {
		if *field == "" {
			continue
		}
		plain, err := utils.Decrypt(*field, r.key)
		if err != nil {
			return err
		}
		*field = plain
	}
	return nil
}
