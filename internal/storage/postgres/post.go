package postgres

import (
	"context"
	"fmt"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
	"github.com/jinzhu/gorm"
)

type PostPostgresStorage struct {
	db *gorm.DB
}

func NewPostPostgresStorage(db *gorm.DB) *PostPostgresStorage {
	return &PostPostgresStorage{db: db}
}

func (s *PostPostgresStorage) Find(ctx context.Context, c listing.Criteria) ([]*models.Post, int64, error) {
	var posts []*models.Post
	total, err := postsTable.find(s.db, c, &posts, "User")
	if err != nil {
		return nil, 0, err
	}
	if err := s.fillCounts(posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostPostgresStorage) CreatePost(ctx context.Context, post *models.Post) error {
	err := s.db.Create(post).Error
	if err != nil {
		return fmt.Errorf("could not create post: %w", err)
	}
	return nil
}

func (s *PostPostgresStorage) GetPostById(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.Preload("User").First(&post, id).Error
	if err != nil {
		return nil, getError(err, "post", id)
	}
	if err := s.fillCounts([]*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostPostgresStorage) GetPostsByIds(ctx context.Context, ids []uint) ([]*models.Post, error) {
	posts := []*models.Post{}
	if len(ids) == 0 {
		return posts, nil
	}

	err := s.db.Where("id IN (?)", ids).Order("id").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("could not get posts by ids: %w", err)
	}
	return posts, nil
}

func (s *PostPostgresStorage) UpdatePost(ctx context.Context, post *models.Post) error {
	err := s.db.Model(post).Updates(map[string]interface{}{
		"user_id":     post.UserID,
		"content":     post.Content,
		"image":       post.Image,
		"location":    post.Location,
		"is_approved": post.IsApproved,
	}).Error
	if err != nil {
		return fmt.Errorf("could not update post: %w", err)
	}
	return nil
}

func (s *PostPostgresStorage) SetApproval(ctx context.Context, id uint, approved bool) error {
	res := s.db.Model(&models.Post{}).Where("id = ?", id).Update("is_approved", approved)
	if res.Error != nil {
		return fmt.Errorf("could not set approval: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// mysql не считает строку затронутой, если значение не изменилось
		var n int64
		if err := s.db.Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("could not set approval: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("post", id)
		}
	}
	return nil
}

// DeletePosts удаляет посты и комментарии к ним одной транзакцией
func (s *PostPostgresStorage) DeletePosts(ctx context.Context, ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("post_id IN (?)", ids).Delete(&models.Comment{}).Error
		if err != nil {
			return fmt.Errorf("could not delete comments: %w", err)
		}

		res := tx.Where("id IN (?)", ids).Delete(&models.Post{})
		if res.Error != nil {
			return fmt.Errorf("could not delete posts: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (s *PostPostgresStorage) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.Model(&models.Post{}).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("could not count posts: %w", err)
	}
	return n, nil
}

func (s *PostPostgresStorage) fillCounts(posts []*models.Post) error {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	counts, err := countBy(s.db, "comments", "post_id", ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.CommentsCount = counts[p.ID]
	}
	return nil
}
