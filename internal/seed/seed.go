// Package seed fills a fresh store with the admin account and random
// users, posts and comments.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/comment"
	"github.com/VitaminP8/postery-admin/internal/config"
	"github.com/VitaminP8/postery-admin/internal/post"
	"github.com/VitaminP8/postery-admin/internal/user"
	"github.com/VitaminP8/postery-admin/models"
)

const (
	AdminName     = "Admin User"
	AdminEmail    = "admin@example.com"
	AdminPassword = "password"

	DefaultUsers = 10
	maxPosts     = 3
	maxComments  = 3
)

var (
	firstNames = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi", "Ivan", "Judy", "Mallory", "Niaj", "Olivia", "Peggy", "Rupert", "Sybil", "Trent", "Victor", "Walter"}
	lastNames  = []string{"Smith", "Jones", "Brown", "Taylor", "Wilson", "Davies", "Evans", "Thomas", "Roberts", "Walker", "Wright", "Hall"}
	words      = strings.Fields("lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam quis nostrud exercitation ullamco laboris nisi aliquip ex ea commodo consequat")
)

type Config struct {
	Users int
	// Seed для генератора; 0 - текущее время
	Seed int64
}

type Result struct {
	Admin    *models.User
	Users    int
	Posts    int
	Comments int
}

type Seeder struct {
	users     user.UserStorage
	posts     post.PostStorage
	comments  comment.CommentStorage
	locations *config.Locations
}

func New(users user.UserStorage, posts post.PostStorage, comments comment.CommentStorage, locations *config.Locations) *Seeder {
	return &Seeder{users: users, posts: posts, comments: comments, locations: locations}
}

// NewRNG creates a seeded generator. A zero seed takes the current time and
// prints it so the run can be repeated.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
		fmt.Fprintf(os.Stderr, "Using seed: %d\n", seed)
	}
	return rand.New(rand.NewSource(seed))
}

// Run creates the admin account when it is missing, then cfg.Users random
// users with posts and comments.
func (s *Seeder) Run(ctx context.Context, cfg Config) (*Result, error) {
	locations := s.locations.Options()
	if len(locations) == 0 {
		return nil, errors.New("no locations configured")
	}
	if cfg.Users <= 0 {
		cfg.Users = DefaultUsers
	}
	rng := NewRNG(cfg.Seed)

	admin, err := s.admin(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{Admin: admin}

	authors := make([]*models.User, 0, cfg.Users+1)
	authors = append(authors, admin)
	for i := 0; i < cfg.Users; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		u := &models.User{
			Name:     first + " " + last,
			Email:    fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), rng.Int31()),
			Location: locations[rng.Intn(len(locations))].Code,
		}
		if err := s.users.CreateUser(ctx, u); err != nil {
			return res, fmt.Errorf("could not seed user: %w", err)
		}
		authors = append(authors, u)
		res.Users++
	}

	for _, author := range authors[1:] {
		for n := rng.Intn(maxPosts) + 1; n > 0; n-- {
			p := &models.Post{
				UserID:     author.ID,
				Content:    sentence(rng, 8+rng.Intn(24)),
				Location:   locations[rng.Intn(len(locations))].Code,
				IsApproved: rng.Intn(2) == 1,
			}
			if err := s.posts.CreatePost(ctx, p); err != nil {
				return res, fmt.Errorf("could not seed post: %w", err)
			}
			res.Posts++

			for c := rng.Intn(maxComments + 1); c > 0; c-- {
				commenter := authors[rng.Intn(len(authors))]
				cm := &models.Comment{PostID: p.ID, UserID: commenter.ID, Body: sentence(rng, 4+rng.Intn(12))}
				if err := s.comments.CreateComment(ctx, cm); err != nil {
					return res, fmt.Errorf("could not seed comment: %w", err)
				}
				res.Comments++
			}
		}
	}

	log.Printf("seeded %d users, %d posts, %d comments", res.Users, res.Posts, res.Comments)
	return res, nil
}

func (s *Seeder) admin(ctx context.Context) (*models.User, error) {
	existing, err := s.users.GetUserByEmail(ctx, AdminEmail)
	if err == nil {
		return existing, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	hashed, err := auth.HashPassword(AdminPassword)
	if err != nil {
		return nil, err
	}
	admin := &models.User{
		Name:     AdminName,
		Email:    AdminEmail,
		Password: hashed,
		Location: s.locations.First(),
	}
	if err := s.users.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("could not seed admin: %w", err)
	}
	log.Printf("admin %s created", AdminEmail)
	return admin, nil
}

func sentence(rng *rand.Rand, n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = words[rng.Intn(len(words))]
	}
	s := strings.Join(out, " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
