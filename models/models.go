package models

import (
	"strings"
	"time"
)

type User struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `json:"-"`
	Avatar    *string   `json:"avatar"`
	Location  string    `gorm:"not null" json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Считается при чтении, в БД не хранится
	PostsCount int `gorm:"-" json:"posts_count"`
}

type Post struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       *User     `gorm:"association_autoupdate:false;association_autocreate:false;association_save_reference:false" json:"user,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Image      *string   `json:"image"`
	Location   string    `gorm:"not null" json:"location"`
	IsApproved bool      `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Считается при чтении по живым строкам comments
	CommentsCount int `gorm:"-" json:"comments_count"`
}

type Comment struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      *Post     `gorm:"association_autoupdate:false;association_autocreate:false;association_save_reference:false" json:"post,omitempty"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"association_autoupdate:false;association_autocreate:false;association_save_reference:false" json:"user,omitempty"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Export - запись о выгрузке пользователей в CSV
type Export struct {
	ID             uint       `gorm:"primary_key" json:"id"`
	StaffID        *uint      `json:"staff_id"`
	Exporter       string     `gorm:"not null" json:"exporter"`
	FileName       string     `json:"file_name"`
	TotalRows      int        `json:"total_rows"`
	SuccessfulRows int        `json:"successful_rows"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// All перечисляет модели для AutoMigrate
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &Comment{}, &Export{}}
}

// Field resolves a column path (plain field or dotted relation path) on a user.
// The second return value is false when the path is unknown.
func (u *User) Field(path string) (any, bool) {
	switch path {
	case "id":
		return u.ID, true
	case "name":
		return u.Name, true
	case "email":
		return u.Email, true
	case "avatar":
		return optional(u.Avatar), true
	case "location":
		return u.Location, true
	case "created_at":
		return u.CreatedAt, true
	case "updated_at":
		return u.UpdatedAt, true
	case "posts", "posts_count":
		return u.PostsCount, true
	}
	return nil, false
}

func (p *Post) Field(path string) (any, bool) {
	if rel, rest, ok := strings.Cut(path, "."); ok {
		if rel != "user" {
			return nil, false
		}
		if p.User == nil {
			return nil, knownUserPath(rest)
		}
		return p.User.Field(rest)
	}

	switch path {
	case "id":
		return p.ID, true
	case "user_id":
		return p.UserID, true
	case "content":
		return p.Content, true
	case "image":
		return optional(p.Image), true
	case "location":
		return p.Location, true
	case "is_approved":
		return p.IsApproved, true
	case "created_at":
		return p.CreatedAt, true
	case "updated_at":
		return p.UpdatedAt, true
	case "comments", "comments_count":
		return p.CommentsCount, true
	}
	return nil, false
}

func (c *Comment) Field(path string) (any, bool) {
	if rel, rest, ok := strings.Cut(path, "."); ok {
		switch rel {
		case "post":
			if c.Post == nil {
				var probe Post
				_, known := probe.Field(rest)
				return nil, known
			}
			return c.Post.Field(rest)
		case "user":
			if c.User == nil {
				return nil, knownUserPath(rest)
			}
			return c.User.Field(rest)
		}
		return nil, false
	}

	switch path {
	case "id":
		return c.ID, true
	case "post_id":
		return c.PostID, true
	case "user_id":
		return c.UserID, true
	case "body":
		return c.Body, true
	case "created_at":
		return c.CreatedAt, true
	case "updated_at":
		return c.UpdatedAt, true
	}
	return nil, false
}

func knownUserPath(path string) bool {
	var probe User
	_, ok := probe.Field(path)
	return ok
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
