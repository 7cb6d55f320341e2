package postgres

import (
	"fmt"
	"strings"

	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/jinzhu/gorm"
)

// table maps the column paths of one entity to SQL expressions.
type table struct {
	name    string
	columns map[string]string
	// has: relation name -> EXISTS (...)
	has map[string]string
}

var usersTable = table{
	name: "users",
	columns: map[string]string{
		"id":          "users.id",
		"name":        "users.name",
		"email":       "users.email",
		"avatar":      "users.avatar",
		"location":    "users.location",
		"created_at":  "users.created_at",
		"updated_at":  "users.updated_at",
		"posts_count": "(SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id)",
	},
	has: map[string]string{
		"posts": "EXISTS (SELECT 1 FROM posts WHERE posts.user_id = users.id)",
	},
}

var postsTable = table{
	name: "posts",
	columns: map[string]string{
		"id":             "posts.id",
		"user_id":        "posts.user_id",
		"content":        "posts.content",
		"image":          "posts.image",
		"location":       "posts.location",
		"is_approved":    "posts.is_approved",
		"created_at":     "posts.created_at",
		"updated_at":     "posts.updated_at",
		"comments_count": "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id)",
		"user.name":      "(SELECT users.name FROM users WHERE users.id = posts.user_id)",
		"user.email":     "(SELECT users.email FROM users WHERE users.id = posts.user_id)",
		"user.location":  "(SELECT users.location FROM users WHERE users.id = posts.user_id)",
	},
	has: map[string]string{
		"comments": "EXISTS (SELECT 1 FROM comments WHERE comments.post_id = posts.id)",
	},
}

var commentsTable = table{
	name: "comments",
	columns: map[string]string{
		"id":            "comments.id",
		"post_id":       "comments.post_id",
		"user_id":       "comments.user_id",
		"body":          "comments.body",
		"created_at":    "comments.created_at",
		"updated_at":    "comments.updated_at",
		"post.content":  "(SELECT posts.content FROM posts WHERE posts.id = comments.post_id)",
		"post.location": "(SELECT posts.location FROM posts WHERE posts.id = comments.post_id)",
		"user.name":     "(SELECT users.name FROM users WHERE users.id = comments.user_id)",
		"user.email":    "(SELECT users.email FROM users WHERE users.id = comments.user_id)",
	},
}

func (t table) column(path string) (string, error) {
	if path == "posts" || path == "comments" {
		path += "_count"
	}
	expr, ok := t.columns[path]
	if !ok {
		return "", fmt.Errorf("%s has no column %q", t.name, path)
	}
	return expr, nil
}

// text приводит колонку к строке для LIKE. Время форматируется так же, как
// его показывает таблица; sqlite хранит время текстом и так.
func text(dialect, expr string) string {
	if !strings.HasSuffix(expr, "_at") {
		return expr
	}
	switch dialect {
	case "postgres":
		return "TO_CHAR(" + expr + ", 'YYYY-MM-DD HH24:MI:SS')"
	case "mysql":
		return "DATE_FORMAT(" + expr + ", '%Y-%m-%d %H:%i:%s')"
	}
	return expr
}

func (t table) condition(dialect string, c listing.Condition) (string, []interface{}, error) {
	if c.Op == listing.OpHas {
		expr, ok := t.has[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("%s has no relation %q", t.name, c.Field)
		}
		return expr, nil, nil
	}

	expr, err := t.column(c.Field)
	if err != nil {
		return "", nil, err
	}

	switch c.Op {
	case listing.OpEq:
		return expr + " = ?", []interface{}{c.Value}, nil
	case listing.OpNotNull:
		return expr + " IS NOT NULL", nil, nil
	case listing.OpGte:
		return expr + " >= ?", []interface{}{c.Value}, nil
	case listing.OpContains:
		return "LOWER(" + text(dialect, expr) + ") LIKE ? ESCAPE '!'", []interface{}{likePattern(fmt.Sprint(c.Value))}, nil
	}
	return "", nil, fmt.Errorf("unsupported operator %q", c.Op)
}

// scope применяет Where и Search. Сортировка и срез отдельно, чтобы COUNT шёл без ORDER BY.
func (t table) scope(db *gorm.DB, c listing.Criteria) (*gorm.DB, error) {
	q := db.Table(t.name)
	dialect := db.Dialect().GetName()

	for _, cond := range c.Where {
		sql, args, err := t.condition(dialect, cond)
		if err != nil {
			return nil, err
		}
		q = q.Where(sql, args...)
	}

	if len(c.Search) > 0 {
		parts := make([]string, 0, len(c.Search))
		var args []interface{}
		for _, cond := range c.Search {
			sql, condArgs, err := t.condition(dialect, cond)
			if err != nil {
				return nil, err
			}
			parts = append(parts, sql)
			args = append(args, condArgs...)
		}
		q = q.Where("("+strings.Join(parts, " OR ")+")", args...)
	}

	return q, nil
}

// find runs c against the table, scanning the page into out, and returns the
// number of matching rows. preload names the relations to load with the page.
func (t table) find(db *gorm.DB, c listing.Criteria, out interface{}, preload ...string) (int64, error) {
	q, err := t.scope(db, c)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("could not count %s: %w", t.name, err)
	}

	for _, o := range c.Order {
		expr, err := t.column(o.Field)
		if err != nil {
			return 0, err
		}
		if o.Desc {
			expr += " DESC"
		}
		q = q.Order(expr)
	}
	if c.Limit > 0 {
		q = q.Limit(c.Limit).Offset(c.Offset)
	}

	for _, rel := range preload {
		q = q.Preload(rel)
	}

	if err := q.Select(t.name + ".*").Find(out).Error; err != nil {
		return 0, fmt.Errorf("could not get %s: %w", t.name, err)
	}
	return total, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

type countRow struct {
	ID uint
	N  int
}

// countBy считает строки table, сгруппированные по колонке key, для ids
func countBy(db *gorm.DB, table, key string, ids []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := db.Table(table).
		Select(key+" AS id, COUNT(*) AS n").
		Where(key+" IN (?)", ids).
		Group(key).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not count %s: %w", table, err)
	}

	for _, r := range rows {
		counts[r.ID] = r.N
	}
	return counts, nil
}
