// Package resource declares the admin resources (users, posts, comments and
// the recent activity feed): the fields of their create/edit forms, the
// columns of their tables and the filters those tables offer.
//
// A Descriptor is plain data. Validate applies its field rules to submitted
// form input, Format renders one table cell, and the descriptor satisfies
// listing.Schema so the listing engine can build queries from it.
package resource

import (
	"fmt"
	"time"

	"github.com/VitaminP8/postery-admin/internal/config"
	"github.com/VitaminP8/postery-admin/internal/listing"
)

type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindEmail    Kind = "email"
	KindSelect   Kind = "select"
	KindRelation Kind = "relation"
	KindFile     Kind = "file"
	KindToggle   Kind = "toggle"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Default  any
	Helper   string

	// select
	Options func() []Option
	// relation: имя связанной сущности для выбора из существующих записей
	Relation string
	// file
	MaxSizeKB     int64
	AcceptedTypes []string
	Directory     string
}

type Column[T any] struct {
	Name  string
	Label string
	// Path is the field path to read, defaults to Name.
	Path       string
	Searchable bool
	Sortable   bool
	Limit      int
	DateTime   bool
	Image      bool
	Toggle     bool
	Hidden     bool
	// State computes the cell instead of reading Path.
	State func(record T) string
}

func (c Column[T]) path() string {
	if c.Path != "" {
		return c.Path
	}
	return c.Name
}

// Deps are injected into every descriptor at construction time.
type Deps struct {
	Locations *config.Locations
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now()
}

type Descriptor[T listing.Resolver] struct {
	name    string
	Fields  []Field
	Columns []Column[T]
	Filters []listing.Filter
}

func (d *Descriptor[T]) Name() string {
	return d.name
}

func (d *Descriptor[T]) SearchColumns() []string {
	var cols []string
	for _, c := range d.Columns {
		if c.Searchable && c.State == nil {
			cols = append(cols, c.path())
		}
	}
	return cols
}

func (d *Descriptor[T]) SortField(column string) (string, bool) {
	if column == "" {
		return "", false
	}
	for _, c := range d.Columns {
		if c.Name == column && c.Sortable && c.State == nil {
			return c.path(), true
		}
	}
	return "", false
}

func (d *Descriptor[T]) Filter(name string) (listing.Filter, bool) {
	for _, f := range d.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return listing.Filter{}, false
}

func (d *Descriptor[T]) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (d *Descriptor[T]) Column(name string) (Column[T], bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Row formats every visible column of record.
func (d *Descriptor[T]) Row(record T) (map[string]string, error) {
	row := make(map[string]string, len(d.Columns))
	for _, c := range d.Columns {
		if c.Hidden {
			continue
		}
		v, err := d.Format(record, c.Name)
		if err != nil {
			return nil, err
		}
		row[c.Name] = v
	}
	return row, nil
}

var _ listing.Schema = (*Descriptor[listing.Resolver])(nil)

func locationOptions(l *config.Locations) func() []Option {
	return func() []Option {
		var opts []Option
		for _, o := range l.Options() {
			opts = append(opts, Option{Value: o.Code, Label: o.Label})
		}
		return opts
	}
}

func unknownColumn(resource, column string) error {
	return fmt.Errorf("%s has no column %q", resource, column)
}
