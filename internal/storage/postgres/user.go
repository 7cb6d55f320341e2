package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
	"github.com/jinzhu/gorm"
)

type UserPostgresStorage struct {
	db *gorm.DB
}

func NewUserPostgresStorage(db *gorm.DB) *UserPostgresStorage {
	return &UserPostgresStorage{db: db}
}

func (s *UserPostgresStorage) Find(ctx context.Context, c listing.Criteria) ([]*models.User, int64, error) {
	var users []*models.User
	total, err := usersTable.find(s.db, c, &users)
	if err != nil {
		return nil, 0, err
	}
	if err := s.fillCounts(users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserPostgresStorage) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.Create(user).Error
	if err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (s *UserPostgresStorage) GetUserById(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if err != nil {
		return nil, getError(err, "user", id)
	}
	if err := s.fillCounts([]*models.User{&user}); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserPostgresStorage) GetUsersByIds(ctx context.Context, ids []uint) ([]*models.User, error) {
	users := []*models.User{}
	if len(ids) == 0 {
		return users, nil
	}

	err := s.db.Where("id IN (?)", ids).Order("id").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("could not get users by ids: %w", err)
	}
	if err := s.fillCounts(users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserPostgresStorage) GetPostImages(ctx context.Context, ids []uint) ([]string, error) {
	images := []string{}
	if len(ids) == 0 {
		return images, nil
	}

	err := s.db.Model(&models.Post{}).
		Where("user_id IN (?) AND image IS NOT NULL", ids).
		Order("id").
		Pluck("image", &images).Error
	if err != nil {
		return nil, fmt.Errorf("could not get post images: %w", err)
	}
	return images, nil
}

// GetUserByEmail нужен для выдачи токена сотруднику
func (s *UserPostgresStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, getError(err, "user", 0)
	}
	return &user, nil
}

func (s *UserPostgresStorage) UpdateUser(ctx context.Context, user *models.User) error {
	err := s.db.Model(user).Updates(map[string]interface{}{
		"name":     user.Name,
		"email":    user.Email,
		"avatar":   user.Avatar,
		"location": user.Location,
	}).Error
	if err != nil {
		return fmt.Errorf("could not update user: %w", err)
	}
	return nil
}

// DeleteUsers удаляет пользователей, их посты и все комментарии к этим постам одной транзакцией
func (s *UserPostgresStorage) DeleteUsers(ctx context.Context, ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id IN (?) OR post_id IN (SELECT id FROM posts WHERE user_id IN (?))", ids, ids).
			Delete(&models.Comment{}).Error
		if err != nil {
			return fmt.Errorf("could not delete comments: %w", err)
		}

		err = tx.Where("user_id IN (?)", ids).Delete(&models.Post{}).Error
		if err != nil {
			return fmt.Errorf("could not delete posts: %w", err)
		}

		res := tx.Where("id IN (?)", ids).Delete(&models.User{})
		if res.Error != nil {
			return fmt.Errorf("could not delete users: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (s *UserPostgresStorage) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var n int64
	err := s.db.Model(&models.User{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), exceptID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("could not check email: %w", err)
	}
	return n > 0, nil
}

func (s *UserPostgresStorage) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.Model(&models.User{}).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("could not count users: %w", err)
	}
	return n, nil
}

func (s *UserPostgresStorage) fillCounts(users []*models.User) error {
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	counts, err := countBy(s.db, "posts", "user_id", ids)
	if err != nil {
		return err
	}
	for _, u := range users {
		u.PostsCount = counts[u.ID]
	}
	return nil
}
