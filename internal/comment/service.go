package comment

import (
	"context"
	"fmt"
	"log"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/models"
)

type Service struct {
	store      CommentStorage
	posts      Lookup
	users      Lookup
	descriptor *resource.Descriptor[*models.Comment]
	engine     *listing.Engine[*models.Comment]
}

func NewService(store CommentStorage, posts, users Lookup, deps resource.Deps) *Service {
	d := resource.NewCommentDescriptor(deps)
	return &Service{
		store:      store,
		posts:      posts,
		users:      users,
		descriptor: d,
		engine:     listing.NewEngine[*models.Comment](d, store),
	}
}

func (s *Service) Descriptor() *resource.Descriptor[*models.Comment] {
	return s.descriptor
}

func (s *Service) List(ctx context.Context, req listing.Request) (listing.Page[*models.Comment], error) {
	return s.engine.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Comment, error) {
	return s.store.GetCommentById(ctx, id)
}

func (s *Service) Create(ctx context.Context, in resource.Input) (*models.Comment, error) {
	values, err := s.descriptor.Validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, values); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: values.Uint("post_id"),
		UserID: values.Uint("user_id"),
		Body:   values.String("body"),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("could not create comment: %w", err)
	}

	log.Printf("comment %d created by %s", comment.ID, auth.Actor(ctx))
	return comment, nil
}

func (s *Service) Update(ctx context.Context, id uint, in resource.Input) (*models.Comment, error) {
	comment, err := s.store.GetCommentById(ctx, id)
	if err != nil {
		return nil, err
	}

	values, err := s.descriptor.Validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, values); err != nil {
		return nil, err
	}

	comment.PostID = values.Uint("post_id")
	comment.UserID = values.Uint("user_id")
	comment.Body = values.String("body")
	comment.Post = nil
	comment.User = nil

	if err := s.store.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("could not update comment: %w", err)
	}

	log.Printf("comment %d updated by %s", comment.ID, auth.Actor(ctx))
	return comment, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.store.GetCommentById(ctx, id); err != nil {
		return err
	}
	_, err := s.DeleteMany(ctx, []uint{id})
	return err
}

func (s *Service) DeleteMany(ctx context.Context, ids []uint) (int, error) {
	n, err := s.store.DeleteComments(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("could not delete comments: %w", err)
	}
	log.Printf("%d comments deleted by %s", n, auth.Actor(ctx))
	return n, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.CountComments(ctx)
}

// checkReferences reports a dangling post or user reference. When both
// dangle the errors are merged into one ValidationError.
func (s *Service) checkReferences(ctx context.Context, values resource.Values) error {
	var dangling []*apperr.ReferentialError

	for _, ref := range []struct {
		field  string
		lookup Lookup
	}{
		{"post_id", s.posts},
		{"user_id", s.users},
	} {
		id := values.Uint(ref.field)
		ok, err := ref.lookup.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("could not check %s: %w", ref.field, err)
		}
		if !ok {
			dangling = append(dangling, &apperr.ReferentialError{Field: ref.field, ID: id})
		}
	}

	switch len(dangling) {
	case 0:
		return nil
	case 1:
		return dangling[0]
	}
	fields := map[string]string{}
	for _, re := range dangling {
		for k, v := range apperr.FieldErrors(re) {
			fields[k] = v
		}
	}
	return &apperr.ValidationError{Fields: fields}
}
