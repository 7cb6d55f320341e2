package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
)

type UserMemoryStorage struct {
	store *Store
}

func NewUserMemoryStorage(store *Store) *UserMemoryStorage {
	return &UserMemoryStorage{store: store}
}

func (s *UserMemoryStorage) Find(ctx context.Context, c listing.Criteria) ([]*models.User, int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows := make([]*models.User, 0, len(s.store.users))
	for _, id := range sortedKeys(s.store.users) {
		rows = append(rows, s.store.userCopy(id))
	}
	return listing.Apply(rows, c)
}

func (s *UserMemoryStorage) CreateUser(ctx context.Context, user *models.User) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if s.emailTaken(user.Email, 0) {
		return fmt.Errorf("user with email %s already exists", user.Email)
	}

	user.ID = s.store.id("users")
	s.store.stamp(&user.CreatedAt, &user.UpdatedAt)

	stored := *user
	s.store.users[user.ID] = &stored
	return nil
}

func (s *UserMemoryStorage) GetUserById(ctx context.Context, id uint) (*models.User, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	user := s.store.userCopy(id)
	if user == nil {
		return nil, apperr.NotFound("user", id)
	}
	return user, nil
}

func (s *UserMemoryStorage) GetUsersByIds(ctx context.Context, ids []uint) ([]*models.User, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	users := []*models.User{}
	for _, id := range sortedKeys(s.store.users) {
		if slices.Contains(ids, id) {
			users = append(users, s.store.userCopy(id))
		}
	}
	return users, nil
}

func (s *UserMemoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	for _, id := range sortedKeys(s.store.users) {
		if strings.EqualFold(s.store.users[id].Email, email) {
			return s.store.userCopy(id), nil
		}
	}
	return nil, apperr.NotFound("user", 0)
}

func (s *UserMemoryStorage) UpdateUser(ctx context.Context, user *models.User) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stored, ok := s.store.users[user.ID]
	if !ok {
		return apperr.NotFound("user", user.ID)
	}
	if s.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("user with email %s already exists", user.Email)
	}

	stored.Name = user.Name
	stored.Email = user.Email
	stored.Avatar = user.Avatar
	stored.Location = user.Location
	stored.UpdatedAt = s.store.now()
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *UserMemoryStorage) GetPostImages(ctx context.Context, ids []uint) ([]string, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var postIDs []uint
	for id, p := range s.store.posts {
		if p.Image != nil && slices.Contains(ids, p.UserID) {
			postIDs = append(postIDs, id)
		}
	}
	slices.Sort(postIDs)

	images := make([]string, 0, len(postIDs))
	for _, id := range postIDs {
		images = append(images, *s.store.posts[id].Image)
	}
	return images, nil
}

// DeleteUsers удаляет пользователей, их посты, комментарии к этим постам и их собственные комментарии
func (s *UserMemoryStorage) DeleteUsers(ctx context.Context, ids []uint) (int, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var postIDs []uint
	for id, p := range s.store.posts {
		if slices.Contains(ids, p.UserID) {
			postIDs = append(postIDs, id)
		}
	}
	s.store.deletePosts(postIDs)
	s.store.deleteComments(func(c *models.Comment) bool {
		return slices.Contains(ids, c.UserID)
	})

	n := 0
	for _, id := range ids {
		if _, ok := s.store.users[id]; ok {
			delete(s.store.users, id)
			n++
		}
	}
	return n, nil
}

func (s *UserMemoryStorage) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return s.emailTaken(email, exceptID), nil
}

func (s *UserMemoryStorage) CountUsers(ctx context.Context) (int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return int64(len(s.store.users)), nil
}

func (s *UserMemoryStorage) emailTaken(email string, exceptID uint) bool {
	for id, u := range s.store.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
