package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
)

type PostMemoryStorage struct {
	store *Store
}

func NewPostMemoryStorage(store *Store) *PostMemoryStorage {
	return &PostMemoryStorage{store: store}
}

func (s *PostMemoryStorage) Find(ctx context.Context, c listing.Criteria) ([]*models.Post, int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows := make([]*models.Post, 0, len(s.store.posts))
	for _, id := range sortedKeys(s.store.posts) {
		rows = append(rows, s.store.postCopy(id))
	}
	return listing.Apply(rows, c)
}

func (s *PostMemoryStorage) CreatePost(ctx context.Context, post *models.Post) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.users[post.UserID]; !ok {
		return fmt.Errorf("user %d does not exist", post.UserID)
	}

	post.ID = s.store.id("posts")
	s.store.stamp(&post.CreatedAt, &post.UpdatedAt)

	stored := *post
	stored.User = nil
	s.store.posts[post.ID] = &stored
	return nil
}

func (s *PostMemoryStorage) GetPostById(ctx context.Context, id uint) (*models.Post, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	post := s.store.postCopy(id)
	if post == nil {
		return nil, apperr.NotFound("post", id)
	}
	return post, nil
}

func (s *PostMemoryStorage) GetPostsByIds(ctx context.Context, ids []uint) ([]*models.Post, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	posts := []*models.Post{}
	for _, id := range sortedKeys(s.store.posts) {
		if slices.Contains(ids, id) {
			posts = append(posts, s.store.postCopy(id))
		}
	}
	return posts, nil
}

func (s *PostMemoryStorage) UpdatePost(ctx context.Context, post *models.Post) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stored, ok := s.store.posts[post.ID]
	if !ok {
		return apperr.NotFound("post", post.ID)
	}
	if _, ok := s.store.users[post.UserID]; !ok {
		return fmt.Errorf("user %d does not exist", post.UserID)
	}

	stored.UserID = post.UserID
	stored.Content = post.Content
	stored.Image = post.Image
	stored.Location = post.Location
	stored.IsApproved = post.IsApproved
	stored.UpdatedAt = s.store.now()
	post.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *PostMemoryStorage) SetApproval(ctx context.Context, id uint, approved bool) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stored, ok := s.store.posts[id]
	if !ok {
		return apperr.NotFound("post", id)
	}
	stored.IsApproved = approved
	stored.UpdatedAt = s.store.now()
	return nil
}

func (s *PostMemoryStorage) DeletePosts(ctx context.Context, ids []uint) (int, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.store.deletePosts(ids), nil
}

func (s *PostMemoryStorage) CountPosts(ctx context.Context) (int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return int64(len(s.store.posts)), nil
}
