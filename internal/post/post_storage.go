package post

import (
	"context"

	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
)

type PostStorage interface {
	listing.Source[*models.Post]
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostById(ctx context.Context, id uint) (*models.Post, error)
	GetPostsByIds(ctx context.Context, ids []uint) ([]*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	SetApproval(ctx context.Context, id uint, approved bool) error
	// DeletePosts удаляет посты вместе с комментариями
	DeletePosts(ctx context.Context, ids []uint) (int, error)
	CountPosts(ctx context.Context) (int64, error)
}

// Users is what the post forms need to know about users.
type Users interface {
	Exists(ctx context.Context, id uint) (bool, error)
}
