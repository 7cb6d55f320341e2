package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
	"github.com/jinzhu/gorm"
)

type CommentPostgresStorage struct {
	db *gorm.DB
}

func NewCommentPostgresStorage(db *gorm.DB) *CommentPostgresStorage {
	return &CommentPostgresStorage{db: db}
}

func (s *CommentPostgresStorage) Find(ctx context.Context, c listing.Criteria) ([]*models.Comment, int64, error) {
	var comments []*models.Comment
	total, err := commentsTable.find(s.db, c, &comments, "Post", "User")
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *CommentPostgresStorage) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := s.db.Create(comment).Error
	if err != nil {
		return fmt.Errorf("could not create comment: %w", err)
	}
	return nil
}

func (s *CommentPostgresStorage) GetCommentById(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Preload("Post").Preload("User").First(&comment, id).Error
	if err != nil {
		return nil, getError(err, "comment", id)
	}
	return &comment, nil
}

func (s *CommentPostgresStorage) UpdateComment(ctx context.Context, comment *models.Comment) error {
	err := s.db.Model(comment).Updates(map[string]interface{}{
		"post_id": comment.PostID,
		"user_id": comment.UserID,
		"body":    comment.Body,
	}).Error
	if err != nil {
		return fmt.Errorf("could not update comment: %w", err)
	}
	return nil
}

func (s *CommentPostgresStorage) DeleteComments(ctx context.Context, ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := s.db.Where("id IN (?)", ids).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, fmt.Errorf("could not delete comments: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *CommentPostgresStorage) CountComments(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.Model(&models.Comment{}).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("could not count comments: %w", err)
	}
	return n, nil
}
