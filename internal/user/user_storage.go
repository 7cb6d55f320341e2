package user

import (
	"context"

	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
)

type UserStorage interface {
	listing.Source[*models.User]
	CreateUser(ctx context.Context, user *models.User) error
	GetUserById(ctx context.Context, id uint) (*models.User, error)
	GetUsersByIds(ctx context.Context, ids []uint) ([]*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// GetPostImages возвращает картинки постов этих пользователей
	GetPostImages(ctx context.Context, ids []uint) ([]string, error)
	// DeleteUsers удаляет пользователей вместе с их постами и комментариями
	DeleteUsers(ctx context.Context, ids []uint) (int, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	CountUsers(ctx context.Context) (int64, error)
}
