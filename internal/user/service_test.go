package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/config"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/media"
	"github.com/VitaminP8/postery-admin/internal/mocks"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/internal/storage/memory"
	"github.com/VitaminP8/postery-admin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps() resource.Deps {
	return resource.Deps{
		Locations: config.NewLocations(
			config.Location{Code: "US", Label: "United States"},
			config.Location{Code: "DE", Label: "Germany"},
		),
		Now: func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) },
	}
}

func png(size int) *media.Upload {
	data := make([]byte, size)
	copy(data, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	return &media.Upload{Filename: "avatar.png", Data: data}
}

func form(name, email, location string) resource.Input {
	return resource.Input{Values: map[string]string{"name": name, "email": email, "location": location}}
}

func newService() (*Service, *memory.UserMemoryStorage, *mocks.MockMediaStore) {
	store := memory.NewUserMemoryStorage(memory.NewStore())
	files := mocks.NewMockMediaStore()
	return NewService(store, files, testDeps()), store, files
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Create user with avatar", func(t *testing.T) {
		svc, _, files := newService()

		in := form("Alice", "alice@example.com", "US")
		in.Files = map[string]*media.Upload{"avatar": png(1024)}
		u, err := svc.Create(ctx, in)
		require.NoError(t, err)
		require.NotNil(t, u.Avatar)
		assert.True(t, files.Has(*u.Avatar))

		got, err := svc.Get(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
	})

	t.Run("Invalid form stores nothing", func(t *testing.T) {
		svc, _, files := newService()

		in := form("", "not-an-email", "XX")
		in.Files = map[string]*media.Upload{"avatar": png(1024)}
		_, err := svc.Create(ctx, in)
		fields := apperr.FieldErrors(err)
		assert.Equal(t, "The Name field is required.", fields["name"])
		assert.Equal(t, "The Email field must be a valid email address.", fields["email"])
		assert.Equal(t, "The selected Location is invalid.", fields["location"])
		assert.Zero(t, files.Len())

		n, _ := svc.Count(ctx)
		assert.Zero(t, n)
	})

	t.Run("Email must be unique", func(t *testing.T) {
		svc, _, _ := newService()

		_, err := svc.Create(ctx, form("Alice", "alice@example.com", "US"))
		require.NoError(t, err)

		_, err = svc.Create(ctx, form("Other", "alice@example.com", "DE"))
		assert.Equal(t, "The Email has already been taken.", apperr.FieldErrors(err)["email"])
	})

	t.Run("Media store failure is a field error", func(t *testing.T) {
		svc, _, files := newService()
		files.StoreErr = errors.New("disk is read-only")

		in := form("Alice", "alice@example.com", "US")
		in.Files = map[string]*media.Upload{"avatar": png(10)}
		_, err := svc.Create(ctx, in)

		var se *apperr.StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "avatar", se.Field)
		n, _ := svc.Count(ctx)
		assert.Zero(t, n)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Avatar is kept without a new upload", func(t *testing.T) {
		svc, _, files := newService()
		in := form("Alice", "alice@example.com", "US")
		in.Files = map[string]*media.Upload{"avatar": png(10)}
		u, err := svc.Create(ctx, in)
		require.NoError(t, err)
		avatar := *u.Avatar

		updated, err := svc.Update(ctx, u.ID, form("Alice B", "alice@example.com", "DE"))
		require.NoError(t, err)
		assert.Equal(t, "Alice B", updated.Name)
		require.NotNil(t, updated.Avatar)
		assert.Equal(t, avatar, *updated.Avatar)
		assert.True(t, files.Has(avatar))
	})

	t.Run("Replaced avatar is discarded", func(t *testing.T) {
		svc, _, files := newService()
		in := form("Alice", "alice@example.com", "US")
		in.Files = map[string]*media.Upload{"avatar": png(10)}
		u, err := svc.Create(ctx, in)
		require.NoError(t, err)
		old := *u.Avatar

		in.Files = map[string]*media.Upload{"avatar": png(20)}
		updated, err := svc.Update(ctx, u.ID, in)
		require.NoError(t, err)
		assert.NotEqual(t, old, *updated.Avatar)
		assert.False(t, files.Has(old))
		assert.True(t, files.Has(*updated.Avatar))
	})

	t.Run("Own email is not taken", func(t *testing.T) {
		svc, _, _ := newService()
		u, err := svc.Create(ctx, form("Alice", "alice@example.com", "US"))
		require.NoError(t, err)

		_, err = svc.Update(ctx, u.ID, form("Alice", "alice@example.com", "US"))
		assert.NoError(t, err)
	})

	t.Run("Missing user", func(t *testing.T) {
		svc, _, _ := newService()
		_, err := svc.Update(ctx, 42, form("Alice", "alice@example.com", "US"))
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _, files := newService()

	var ids []uint
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		in := form("User", email, "US")
		in.Files = map[string]*media.Upload{"avatar": png(10)}
		u, err := svc.Create(ctx, in)
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	n, err := svc.DeleteMany(ctx, ids[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, files.Len())

	require.NoError(t, svc.Delete(ctx, ids[2]))
	assert.True(t, apperr.IsNotFound(svc.Delete(ctx, ids[2])))

	page, err := svc.List(ctx, listing.Request{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestService_DeleteDiscardsPostImages(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	files := mocks.NewMockMediaStore()
	svc := NewService(memory.NewUserMemoryStorage(store), files, testDeps())
	posts := memory.NewPostMemoryStorage(store)

	in := form("Alice", "alice@example.com", "US")
	in.Files = map[string]*media.Upload{"avatar": png(10)}
	alice, err := svc.Create(ctx, in)
	require.NoError(t, err)

	image, err := files.Store(ctx, png(10), "posts")
	require.NoError(t, err)
	require.NoError(t, posts.CreatePost(ctx, &models.Post{UserID: alice.ID, Content: "cat", Location: "US", Image: &image}))
	require.NoError(t, posts.CreatePost(ctx, &models.Post{UserID: alice.ID, Content: "plain", Location: "US"}))

	require.NoError(t, svc.Delete(ctx, alice.ID))
	assert.ElementsMatch(t, []string{image, *alice.Avatar}, files.Deleted())
	assert.Zero(t, files.Len())
}

func TestService_Options(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()

	for _, u := range []*models.User{
		{Name: "Zed", Email: "z@example.com", Location: "US"},
		{Name: "Amy", Email: "a@example.com", Location: "US"},
		{Name: "Bob", Email: "b@example.com", Location: "DE"},
	} {
		require.NoError(t, store.CreateUser(ctx, u))
	}

	options, err := svc.Options(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []resource.Option{
		{Value: "2", Label: "Amy"},
		{Value: "3", Label: "Bob"},
		{Value: "1", Label: "Zed"},
	}, options)

	options, err = svc.Options(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []resource.Option{{Value: "3", Label: "Bob"}}, options)

	ok, err := svc.Exists(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Exists(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()

	hashed, err := auth.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(ctx, &models.User{Name: "Admin User", Email: "admin@example.com", Password: hashed, Location: "US"}))
	require.NoError(t, store.CreateUser(ctx, &models.User{Name: "No Password", Email: "plain@example.com", Location: "US"}))

	t.Run("Valid credentials", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, " ADMIN@example.com ", "password")
		require.NoError(t, err)
		assert.Equal(t, "Admin User", u.Name)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "admin@example.com", "secret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ghost@example.com", "password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("User without a password cannot sign in", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "plain@example.com", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
