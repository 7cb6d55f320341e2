package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
)

type CommentMemoryStorage struct {
	store *Store
}

func NewCommentMemoryStorage(store *Store) *CommentMemoryStorage {
	return &CommentMemoryStorage{store: store}
}

func (s *CommentMemoryStorage) Find(ctx context.Context, c listing.Criteria) ([]*models.Comment, int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows := make([]*models.Comment, 0, len(s.store.comments))
	for _, id := range sortedKeys(s.store.comments) {
		rows = append(rows, s.store.commentCopy(id))
	}
	return listing.Apply(rows, c)
}

func (s *CommentMemoryStorage) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if err := s.checkRefs(comment); err != nil {
		return err
	}

	comment.ID = s.store.id("comments")
	s.store.stamp(&comment.CreatedAt, &comment.UpdatedAt)

	stored := *comment
	stored.Post = nil
	stored.User = nil
	s.store.comments[comment.ID] = &stored
	return nil
}

func (s *CommentMemoryStorage) GetCommentById(ctx context.Context, id uint) (*models.Comment, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	comment := s.store.commentCopy(id)
	if comment == nil {
		return nil, apperr.NotFound("comment", id)
	}
	return comment, nil
}

func (s *CommentMemoryStorage) UpdateComment(ctx context.Context, comment *models.Comment) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stored, ok := s.store.comments[comment.ID]
	if !ok {
		return apperr.NotFound("comment", comment.ID)
	}
	if err := s.checkRefs(comment); err != nil {
		return err
	}

	stored.PostID = comment.PostID
	stored.UserID = comment.UserID
	stored.Body = comment.Body
	stored.UpdatedAt = s.store.now()
	comment.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *CommentMemoryStorage) DeleteComments(ctx context.Context, ids []uint) (int, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	return s.store.deleteComments(func(c *models.Comment) bool {
		return slices.Contains(ids, c.ID)
	}), nil
}

func (s *CommentMemoryStorage) CountComments(ctx context.Context) (int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return int64(len(s.store.comments)), nil
}

func (s *CommentMemoryStorage) checkRefs(comment *models.Comment) error {
	if _, ok := s.store.posts[comment.PostID]; !ok {
		return fmt.Errorf("post %d does not exist", comment.PostID)
	}
	if _, ok := s.store.users[comment.UserID]; !ok {
		return fmt.Errorf("user %d does not exist", comment.UserID)
	}
	return nil
}
