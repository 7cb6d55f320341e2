package comment

import (
	"context"

	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
)

type CommentStorage interface {
	listing.Source[*models.Comment]
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentById(ctx context.Context, id uint) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComments(ctx context.Context, ids []uint) (int, error)
	CountComments(ctx context.Context) (int64, error)
}

// Lookup checks that a referenced record exists.
type Lookup interface {
	Exists(ctx context.Context, id uint) (bool, error)
}
