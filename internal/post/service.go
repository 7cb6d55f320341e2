package post

import (
	"context"
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

type Service struct {
	store      PostStorage
	users      Users
	media      media.Store
	descriptor *resource.Descriptor[*models.Post]
	engine     *listing.Engine[*models.Post]
}

func NewService(store PostStorage, users Users, mediaStore media.Store, deps resource.Deps) *Service {
	d := resource.NewPostDescriptor(deps)
	return &Service{
		store:      store,
		users:      users,
		media:      mediaStore,
		descriptor: d,
		engine:     listing.NewEngine[*models.Post](d, store),
	}
}

func (s *Service) Descriptor() *resource.Descriptor[*models.Post] {
	return s.descriptor
}

func (s *Service) List(ctx context.Context, req listing.Request) (listing.Page[*models.Post], error) {
	return s.engine.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Post, error) {
	return s.store.GetPostById(ctx, id)
}

func (s *Service) Create(ctx context.Context, in resource.Input) (*models.Post, error) {
	values, err := s.descriptor.Validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkAuthor(ctx, values.Uint("user_id")); err != nil {
		return nil, err
	}

	image, err := media.PutField(ctx, s.media, "image", values.File("image"), media.DirPosts)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:     values.Uint("user_id"),
		Content:    values.String("content"),
		Location:   values.String("location"),
		IsApproved: values.Bool("is_approved"),
	}
	if image != "" {
		post.Image = &image
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		media.Discard(ctx, s.media, image)
		return nil, fmt.Errorf("could not create post: %w", err)
	}

	log.Printf("post %d created by %s", post.ID, auth.Actor(ctx))
	return post, nil
}

func (s *Service) Update(ctx context.Context, id uint, in resource.Input) (*models.Post, error) {
	post, err := s.store.GetPostById(ctx, id)
	if err != nil {
		return nil, err
	}

	values, err := s.descriptor.Validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkAuthor(ctx, values.Uint("user_id")); err != nil {
		return nil, err
	}

	image, err := media.PutField(ctx, s.media, "image", values.File("image"), media.DirPosts)
	if err != nil {
		return nil, err
	}

	var replaced string
	if image != "" {
		if post.Image != nil {
			replaced = *post.Image
		}
		post.Image = &image
	}
	post.UserID = values.Uint("user_id")
	post.User = nil
	post.Content = values.String("content")
	post.Location = values.String("location")
	post.IsApproved = values.Bool("is_approved")

	if err := s.store.UpdatePost(ctx, post); err != nil {
		media.Discard(ctx, s.media, image)
		return nil, fmt.Errorf("could not update post: %w", err)
	}
	media.Discard(ctx, s.media, replaced)

	log.Printf("post %d updated by %s", post.ID, auth.Actor(ctx))
	return post, nil
}

// SetApproval - переключатель is_approved прямо из таблицы
func (s *Service) SetApproval(ctx context.Context, id uint, approved bool) error {
	if err := s.store.SetApproval(ctx, id, approved); err != nil {
		return err
	}
	log.Printf("post %d approval set to %t by %s", id, approved, auth.Actor(ctx))
	return nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.store.GetPostById(ctx, id); err != nil {
		return err
	}
	_, err := s.DeleteMany(ctx, []uint{id})
	return err
}

func (s *Service) DeleteMany(ctx context.Context, ids []uint) (int, error) {
	posts, err := s.store.GetPostsByIds(ctx, ids)
	if err != nil {
		return 0, err
	}

	n, err := s.store.DeletePosts(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("could not delete posts: %w", err)
	}
	for _, p := range posts {
		if p.Image != nil {
			media.Discard(ctx, s.media, *p.Image)
		}
	}

	log.Printf("%d posts deleted by %s", n, auth.Actor(ctx))
	return n, nil
}

// Options lists existing posts for pickers, labelled by content.
func (s *Service) Options(ctx context.Context, search string) ([]resource.Option, error) {
	c := listing.Criteria{Order: []listing.Order{{Field: "id"}}, Limit: optionsLimit}
	if search = strings.TrimSpace(search); search != "" {
		c.Search = []listing.Condition{{Field: "content", Op: listing.OpContains, Value: search}}
	}

	posts, _, err := s.store.Find(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("could not list post options: %w", err)
	}

	options := make([]resource.Option, 0, len(posts))
	for _, p := range posts {
		options = append(options, resource.Option{Value: strconv.FormatUint(uint64(p.ID), 10), Label: p.Content})
	}
	return options, nil
}

func (s *Service) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := s.store.GetPostById(ctx, id)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.CountPosts(ctx)
}

func (s *Service) checkAuthor(ctx context.Context, userID uint) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not check author: %w", err)
	}
	if !ok {
		return &apperr.ReferentialError{Field: "user_id", ID: userID}
	}
	return nil
}
