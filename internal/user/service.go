package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/media"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/models"
)

const optionsLimit = 50

var ErrInvalidCredentials = errors.New("invalid email or password")

// Service backs the users screens: list, create, edit, delete and the
// user picker other forms select authors from.
type Service struct {
	store      UserStorage
	media      media.Store
	descriptor *resource.Descriptor[*models.User]
	engine     *listing.Engine[*models.User]
}

func NewService(store UserStorage, mediaStore media.Store, deps resource.Deps) *Service {
	d := resource.NewUserDescriptor(deps)
	return &Service{
		store:      store,
		media:      mediaStore,
		descriptor: d,
		engine:     listing.NewEngine[*models.User](d, store),
	}
}

func (s *Service) Descriptor() *resource.Descriptor[*models.User] {
	return s.descriptor
}

func (s *Service) List(ctx context.Context, req listing.Request) (listing.Page[*models.User], error) {
	return s.engine.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.store.GetUserById(ctx, id)
}

func (s *Service) Create(ctx context.Context, in resource.Input) (*models.User, error) {
	values, err := s.descriptor.Validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, values.String("email"), 0); err != nil {
		return nil, err
	}

	avatar, err := media.PutField(ctx, s.media, "avatar", values.File("avatar"), media.DirAvatars)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     values.String("name"),
		Email:    values.String("email"),
		Location: values.String("location"),
	}
	if avatar != "" {
		user.Avatar = &avatar
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		media.Discard(ctx, s.media, avatar)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	log.Printf("user %d created by %s", user.ID, auth.Actor(ctx))
	return user, nil
}

// Update применяет форму редактирования. Без нового файла аватар сохраняется.
func (s *Service) Update(ctx context.Context, id uint, in resource.Input) (*models.User, error) {
	user, err := s.store.GetUserById(ctx, id)
	if err != nil {
		return nil, err
	}

	values, err := s.descriptor.Validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, values.String("email"), id); err != nil {
		return nil, err
	}

	avatar, err := media.PutField(ctx, s.media, "avatar", values.File("avatar"), media.DirAvatars)
	if err != nil {
		return nil, err
	}

	var replaced string
	if avatar != "" {
		if user.Avatar != nil {
			replaced = *user.Avatar
		}
		user.Avatar = &avatar
	}
	user.Name = values.String("name")
	user.Email = values.String("email")
	user.Location = values.String("location")

	if err := s.store.UpdateUser(ctx, user); err != nil {
		media.Discard(ctx, s.media, avatar)
		return nil, fmt.Errorf("could not update user: %w", err)
	}
	media.Discard(ctx, s.media, replaced)

	log.Printf("user %d updated by %s", user.ID, auth.Actor(ctx))
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.store.GetUserById(ctx, id); err != nil {
		return err
	}
	_, err := s.DeleteMany(ctx, []uint{id})
	return err
}

// DeleteMany removes the selected users with their posts and comments and
// returns how many users were removed.
func (s *Service) DeleteMany(ctx context.Context, ids []uint) (int, error) {
	users, err := s.store.GetUsersByIds(ctx, ids)
	if err != nil {
		return 0, err
	}
	// посты уйдут каскадом, их картинки собираем заранее
	files, err := s.store.GetPostImages(ctx, ids)
	if err != nil {
		return 0, err
	}

	n, err := s.store.DeleteUsers(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("could not delete users: %w", err)
	}
	for _, u := range users {
		if u.Avatar != nil {
			files = append(files, *u.Avatar)
		}
	}
	media.Discard(ctx, s.media, files...)

	log.Printf("%d users deleted by %s", n, auth.Actor(ctx))
	return n, nil
}

// Options lists existing users for pickers, matching search against the name.
func (s *Service) Options(ctx context.Context, search string) ([]resource.Option, error) {
	c := listing.Criteria{Order: []listing.Order{{Field: "name"}, {Field: "id"}}, Limit: optionsLimit}
	if search = strings.TrimSpace(search); search != "" {
		c.Search = []listing.Condition{{Field: "name", Op: listing.OpContains, Value: search}}
	}

	users, _, err := s.store.Find(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("could not list user options: %w", err)
	}

	options := make([]resource.Option, 0, len(users))
	for _, u := range users {
		options = append(options, resource.Option{Value: strconv.FormatUint(uint64(u.ID), 10), Label: u.Name})
	}
	return options, nil
}

// Exists is used by other resources to check user references.
func (s *Service) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := s.store.GetUserById(ctx, id)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate находит сотрудника по email и сверяет пароль
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if apperr.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.CountUsers(ctx)
}

func (s *Service) checkEmail(ctx context.Context, email string, exceptID uint) error {
	taken, err := s.store.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return fmt.Errorf("could not check email: %w", err)
	}
	if taken {
		return &apperr.ValidationError{Fields: map[string]string{"email": "The Email has already been taken."}}
	}
	return nil
}
