// Package repotest holds in-memory repositories for service and job tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PostStore struct {
	mu      sync.Mutex
	posts   map[primitive.ObjectID]*models.Post
	Saves   []models.Post
	DueErr  error
	SaveErr func(post *models.Post) error
}

var _ repository.PostRepository = (*PostStore)(nil)

func NewPostStore(posts ...*models.Post) *PostStore {
	s := &PostStore{posts: make(map[primitive.ObjectID]*models.Post)}
	for _, p := range posts {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		s.posts[p.ID] = clonePost(p)
	}
	return s
}

func (s *PostStore) Create(ctx context.Context, post *models.Post) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	s.posts[post.ID] = clonePost(post)
	return post.ID, nil
}

func (s *PostStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(p), nil
}

func (s *PostStore) ListByUserID(ctx context.Context, userID primitive.ObjectID, status string, limit, offset int64) ([]*models.Post, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.Post
	for _, p := range s.posts {
		if p.UserID != userID || (status != "" && p.Status != status) {
			continue
		}
		matched = append(matched, clonePost(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *PostStore) FindDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DueErr != nil {
		return nil, s.DueErr
	}
	var due []*models.Post
	for _, p := range s.posts {
		if p.Status == models.PostStatusScheduled && p.ScheduledFor != nil && !p.ScheduledFor.After(now) {
			due = append(due, clonePost(p))
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledFor.Before(*due[j].ScheduledFor) })
	return due, nil
}

func (s *PostStore) Save(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		if err := s.SaveErr(post); err != nil {
			return err
		}
	}
	if _, ok := s.posts[post.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	post.UpdatedAt = time.Now()
	s.posts[post.ID] = clonePost(post)
	s.Saves = append(s.Saves, *clonePost(post))
	return nil
}

func (s *PostStore) Remove(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

// Get is a test helper that skips the context.
func (s *PostStore) Get(id primitive.ObjectID) *models.Post {
	p, _ := s.GetByID(context.Background(), id)
	return p
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	if p.Platforms != nil {
		c.Platforms = make(map[string]bool, len(p.Platforms))
		for k, v := range p.Platforms {
			c.Platforms[k] = v
		}
	}
	c.Images = append([]models.PostImage(nil), p.Images...)
	c.PlatformResults = append([]models.PlatformResult(nil), p.PlatformResults...)
	return &c
}

type AccountStore struct {
	mu       sync.Mutex
	accounts []*models.SocialAccount
	ListErr  map[primitive.ObjectID]error
}

var _ repository.SocialAccountRepository = (*AccountStore)(nil)

func NewAccountStore(accounts ...*models.SocialAccount) *AccountStore {
	s := &AccountStore{ListErr: make(map[primitive.ObjectID]error)}
	for _, a := range accounts {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		s.accounts = append(s.accounts, a)
	}
	return s
}

func (s *AccountStore) Create(ctx context.Context, sa *models.SocialAccount) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.UserID == sa.UserID && a.Platform == sa.Platform {
			return primitive.NilObjectID, repository.ErrAccountExists
		}
	}
	if sa.ID.IsZero() {
		sa.ID = primitive.NewObjectID()
	}
	c := *sa
	s.accounts = append(s.accounts, &c)
	return sa.ID, nil
}

func (s *AccountStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (s *AccountStore) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ListErr[userID]; err != nil {
		return nil, err
	}
	var out []*models.SocialAccount
	for _, a := range s.accounts {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *AccountStore) GetByUserAndPlatform(ctx context.Context, userID primitive.ObjectID, platform models.Platform) (*models.SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.UserID == userID && a.Platform == platform {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (s *AccountStore) Remove(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.accounts {
		if a.ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			break
		}
	}
	return nil
}

type NotificationStore struct {
	mu        sync.Mutex
	items     []*models.Notification
	CreateErr error
}

var _ repository.NotificationRepository = (*NotificationStore)(nil)

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	c := *n
	s.items = append(s.items, &c)
	return nil
}

func (s *NotificationStore) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit, offset int64) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for i := len(s.items) - 1; i >= 0; i-- {
		n := s.items[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	if offset >= int64(len(out)) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > int64(len(out)) {
		end = int64(len(out))
	}
	return out[offset:end], nil
}

func (s *NotificationStore) Count(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, item := range s.items {
		if item.UserID == userID && (!unreadOnly || !item.IsRead) {
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			c := *n
			return &c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *NotificationStore) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *NotificationStore) Remove(ctx context.Context, userID, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.items {
		if n.ID == id && n.UserID == userID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// All returns every stored notification in insertion order.
func (s *NotificationStore) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, 0, len(s.items))
	for _, n := range s.items {
		out = append(out, *n)
	}
	return out
}

// ForPost returns the notifications whose metadata carries postID.
func (s *NotificationStore) ForPost(postID string) []models.Notification {
	var out []models.Notification
	for _, n := range s.All() {
		if n.Metadata["post_id"] == postID {
			out = append(out, n)
		}
	}
	return out
}

type HistoryStore struct {
	mu   sync.Mutex
	rows []*models.PostingHistory
}

var _ repository.PostingHistoryRepository = (*HistoryStore)(nil)

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *ph
	c.ID = int64(len(s.rows) + 1)
	c.CreatedAt = time.Now()
	s.rows = append(s.rows, &c)
	return c.ID, nil
}

func (s *HistoryStore) GetByPostID(ctx context.Context, postID string) ([]*models.PostingHistory, error) {
	return s.filter(func(ph *models.PostingHistory) bool { return ph.PostID == postID }), nil
}

func (s *HistoryStore) GetByUserID(ctx context.Context, userID string) ([]*models.PostingHistory, error) {
	return s.filter(func(ph *models.PostingHistory) bool { return ph.UserID == userID }), nil
}

func (s *HistoryStore) filter(keep func(*models.PostingHistory) bool) []*models.PostingHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.PostingHistory
	for _, ph := range s.rows {
		if keep(ph) {
			c := *ph
			out = append(out, &c)
		}
	}
	return out
}
