package memory

import (
	"slices"
	"sync"
	"time"

	"github.com/VitaminP8/postery-admin/models"
)

// Store - общее хранилище всех сущностей в памяти. Отдельные *MemoryStorage
// работают поверх одного Store, чтобы каскадное удаление и счётчики видели
// одни и те же данные.
type Store struct {
	mu       sync.RWMutex
	users    map[uint]*models.User
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	exports  map[uint]*models.Export
	nextId   map[string]uint // Для хранения актуального ID по таблицам

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uint]*models.User),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
		exports:  make(map[uint]*models.Export),
		nextId:   make(map[string]uint),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// SetClock подменяет часы для created_at/updated_at
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) id(table string) uint {
	s.nextId[table]++
	return s.nextId[table]
}

// stamp проставляет даты как это делает gorm: непустой created_at сохраняется
func (s *Store) stamp(created, updated *time.Time) {
	now := s.now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func (s *Store) userCopy(id uint) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	cp.PostsCount = 0
	for _, p := range s.posts {
		if p.UserID == id {
			cp.PostsCount++
		}
	}
	return &cp
}

func (s *Store) postCopy(id uint) *models.Post {
	p, ok := s.posts[id]
	if !ok {
		return nil
	}
	cp := *p
	cp.User = s.userCopy(p.UserID)
	cp.CommentsCount = 0
	for _, c := range s.comments {
		if c.PostID == id {
			cp.CommentsCount++
		}
	}
	return &cp
}

func (s *Store) commentCopy(id uint) *models.Comment {
	c, ok := s.comments[id]
	if !ok {
		return nil
	}
	cp := *c
	cp.Post = s.postCopy(c.PostID)
	if cp.Post != nil {
		cp.Post.User = nil
	}
	cp.User = s.userCopy(c.UserID)
	return &cp
}

func (s *Store) deleteComments(match func(c *models.Comment) bool) int {
	n := 0
	for id, c := range s.comments {
		if match(c) {
			delete(s.comments, id)
			n++
		}
	}
	return n
}

func (s *Store) deletePosts(ids []uint) int {
	n := 0
	for _, id := range ids {
		if _, ok := s.posts[id]; !ok {
			continue
		}
		delete(s.posts, id)
		n++
	}
	s.deleteComments(func(c *models.Comment) bool {
		return slices.Contains(ids, c.PostID)
	})
	return n
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
