package memory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/config"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *Store
	users    *UserMemoryStorage
	posts    *PostMemoryStorage
	comments *CommentMemoryStorage
}

func newFixture() *fixture {
	store := NewStore()
	store.SetClock(func() time.Time { return fixedNow })
	return &fixture{
		store:    store,
		users:    NewUserMemoryStorage(store),
		posts:    NewPostMemoryStorage(store),
		comments: NewCommentMemoryStorage(store),
	}
}

func testDeps() resource.Deps {
	return resource.Deps{
		Locations: config.NewLocations(config.Location{Code: "US", Label: "United States"}),
		Now:       func() time.Time { return fixedNow },
	}
}

func (f *fixture) user(t *testing.T, name, location string) *models.User {
	u := &models.User{Name: name, Email: name + "@example.com", Location: location}
	require.NoError(t, f.users.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) post(t *testing.T, userID uint, content string, createdAt time.Time) *models.Post {
	p := &models.Post{UserID: userID, Content: content, Location: "US", CreatedAt: createdAt}
	require.NoError(t, f.posts.CreatePost(context.Background(), p))
	return p
}

func (f *fixture) comment(t *testing.T, postID, userID uint, createdAt time.Time) *models.Comment {
	c := &models.Comment{PostID: postID, UserID: userID, Body: "comment", CreatedAt: createdAt}
	require.NoError(t, f.comments.CreateComment(context.Background(), c))
	return c
}

func TestUserMemoryStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Create assigns id and timestamps", func(t *testing.T) {
		f := newFixture()
		u := f.user(t, "alice", "US")
		assert.Equal(t, uint(1), u.ID)
		assert.Equal(t, fixedNow, u.CreatedAt)

		got, err := f.users.GetUserById(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		f := newFixture()
		f.user(t, "alice", "US")

		err := f.users.CreateUser(ctx, &models.User{Name: "other", Email: "ALICE@example.com", Location: "US"})
		assert.Error(t, err)

		taken, err := f.users.EmailTaken(ctx, "alice@example.com", 0)
		require.NoError(t, err)
		assert.True(t, taken)
	})

	t.Run("Returned users are copies", func(t *testing.T) {
		f := newFixture()
		u := f.user(t, "alice", "US")

		got, err := f.users.GetUserById(ctx, u.ID)
		require.NoError(t, err)
		got.Name = "changed"

		again, err := f.users.GetUserById(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", again.Name)
	})

	t.Run("Not found", func(t *testing.T) {
		f := newFixture()
		_, err := f.users.GetUserById(ctx, 42)
		assert.True(t, apperr.IsNotFound(err))

		err = f.users.UpdateUser(ctx, &models.User{ID: 42})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("Bulk delete cascades", func(t *testing.T) {
		f := newFixture()
		var ids []uint
		for i := 0; i < 5; i++ {
			ids = append(ids, f.user(t, "u"+strconv.Itoa(i), "US").ID)
		}
		doomed := f.post(t, ids[0], "doomed", time.Time{})
		kept := f.post(t, ids[4], "kept", time.Time{})
		f.comment(t, doomed.ID, ids[4], time.Time{})
		f.comment(t, kept.ID, ids[1], time.Time{})
		survivor := f.comment(t, kept.ID, ids[4], time.Time{})

		n, err := f.users.DeleteUsers(ctx, ids[:2])
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		total, _ := f.users.CountUsers(ctx)
		assert.Equal(t, int64(3), total)
		posts, _ := f.posts.CountPosts(ctx)
		assert.Equal(t, int64(1), posts)

		rows, _, err := f.comments.Find(ctx, listing.Criteria{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, survivor.ID, rows[0].ID)
	})
}

func TestPostMemoryStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Author must exist", func(t *testing.T) {
		f := newFixture()
		err := f.posts.CreatePost(ctx, &models.Post{UserID: 9, Content: "x", Location: "US"})
		assert.Error(t, err)
	})

	t.Run("Relations and live counts", func(t *testing.T) {
		f := newFixture()
		alice := f.user(t, "alice", "US")
		p := f.post(t, alice.ID, "post", time.Time{})
		c1 := f.comment(t, p.ID, alice.ID, time.Time{})
		f.comment(t, p.ID, alice.ID, time.Time{})

		got, err := f.posts.GetPostById(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.CommentsCount)
		require.NotNil(t, got.User)
		assert.Equal(t, "alice", got.User.Name)
		assert.Equal(t, 1, got.User.PostsCount)

		_, err = f.comments.DeleteComments(ctx, []uint{c1.ID})
		require.NoError(t, err)
		got, err = f.posts.GetPostById(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CommentsCount)
	})

	t.Run("Set approval", func(t *testing.T) {
		f := newFixture()
		alice := f.user(t, "alice", "US")
		p := f.post(t, alice.ID, "post", time.Time{})

		require.NoError(t, f.posts.SetApproval(ctx, p.ID, true))
		got, _ := f.posts.GetPostById(ctx, p.ID)
		assert.True(t, got.IsApproved)

		assert.True(t, apperr.IsNotFound(f.posts.SetApproval(ctx, 99, true)))
	})

	t.Run("Descending sort is the reverse of ascending", func(t *testing.T) {
		f := newFixture()
		engine := listing.NewEngine[*models.Post](resource.NewPostDescriptor(testDeps()), f.posts)
		alice := f.user(t, "alice", "US")
		for _, offset := range []time.Duration{0, time.Minute, 0, 2 * time.Minute, time.Minute} {
			f.post(t, alice.ID, "post", fixedNow.Add(-offset))
		}

		asc, err := engine.List(ctx, listing.Request{Sort: "created_at"})
		require.NoError(t, err)
		desc, err := engine.List(ctx, listing.Request{Sort: "created_at", Direction: listing.Desc})
		require.NoError(t, err)

		var ascIDs, descIDs []uint
		for _, p := range asc.Items {
			ascIDs = append(ascIDs, p.ID)
		}
		for _, p := range desc.Items {
			descIDs = append(descIDs, p.ID)
		}
		slices.Reverse(ascIDs)
		assert.Equal(t, ascIDs, descIDs)
	})

	t.Run("With images", func(t *testing.T) {
		f := newFixture()
		engine := listing.NewEngine[*models.Post](resource.NewPostDescriptor(testDeps()), f.posts)
		alice := f.user(t, "alice", "US")
		for i := 0; i < 5; i++ {
			f.post(t, alice.ID, "plain", time.Time{})
		}
		image := "posts/a.png"
		withImage := &models.Post{UserID: alice.ID, Content: "cat", Location: "US", Image: &image}
		require.NoError(t, f.posts.CreatePost(ctx, withImage))

		page, err := engine.List(ctx, listing.Request{Filters: map[string]listing.Input{"with_images": {}}})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, withImage.ID, page.Items[0].ID)
	})
}

func TestCommentMemoryStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Recent filter", func(t *testing.T) {
		f := newFixture()
		engine := listing.NewEngine[*models.Comment](resource.NewCommentDescriptor(testDeps()), f.comments)
		alice := f.user(t, "alice", "US")
		p := f.post(t, alice.ID, "post", time.Time{})
		for i := 0; i < 5; i++ {
			f.comment(t, p.ID, alice.ID, time.Time{})
		}
		f.comment(t, p.ID, alice.ID, fixedNow.Add(-8*24*time.Hour))
		f.comment(t, p.ID, alice.ID, fixedNow.Add(-24*time.Hour))

		page, err := engine.List(ctx, listing.Request{Filters: map[string]listing.Input{"recent": {}}})
		require.NoError(t, err)
		assert.Equal(t, int64(6), page.Total)
	})

	t.Run("References must exist", func(t *testing.T) {
		f := newFixture()
		alice := f.user(t, "alice", "US")
		err := f.comments.CreateComment(ctx, &models.Comment{PostID: 7, UserID: alice.ID, Body: "x"})
		assert.Error(t, err)
	})

	t.Run("Post location filter", func(t *testing.T) {
		f := newFixture()
		engine := listing.NewEngine[*models.Comment](resource.NewCommentDescriptor(testDeps()), f.comments)
		alice := f.user(t, "alice", "US")
		us := f.post(t, alice.ID, "us", time.Time{})
		de := &models.Post{UserID: alice.ID, Content: "de", Location: "DE"}
		require.NoError(t, f.posts.CreatePost(ctx, de))
		f.comment(t, us.ID, alice.ID, time.Time{})
		onDE := f.comment(t, de.ID, alice.ID, time.Time{})

		page, err := engine.List(ctx, listing.Request{
			Filters: map[string]listing.Input{"post_location": {"location": "DE"}},
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, onDE.ID, page.Items[0].ID)
		assert.Equal(t, "de", page.Items[0].Post.Content)
	})
}

func TestStoreConcurrentAccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.user(t, "alice", "US")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := &models.Post{UserID: alice.ID, Content: fmt.Sprintf("post %d", i), Location: "US"}
			assert.NoError(t, f.posts.CreatePost(ctx, p))
			_, _, err := f.posts.Find(ctx, listing.Criteria{Limit: 5})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := f.posts.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)
}

func TestExportMemoryStorage(t *testing.T) {
	f := newFixture()
	storage := NewExportMemoryStorage(f.store)
	ctx := context.Background()

	export := &models.Export{Exporter: "users"}
	require.NoError(t, storage.CreateExport(ctx, export))
	assert.Equal(t, fixedNow, export.CreatedAt)

	export.SuccessfulRows = 2
	require.NoError(t, storage.UpdateExport(ctx, export))

	got, err := storage.GetExportById(ctx, export.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SuccessfulRows)
	assert.Nil(t, got.CompletedAt)

	_, err = storage.GetExportById(ctx, 99)
	assert.True(t, apperr.IsNotFound(err))
}
