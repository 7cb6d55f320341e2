package listing

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/VitaminP8/postery-admin/internal/listing"

// Source runs a Criteria against one entity and returns the requested slice
// plus the number of rows matching before Offset/Limit were applied.
type Source[T any] interface {
	Find(ctx context.Context, c Criteria) ([]T, int64, error)
}

type Page[T any] struct {
	Items    []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

type Engine[T any] struct {
	schema Schema
	source Source[T]
}

func NewEngine[T any](schema Schema, source Source[T]) *Engine[T] {
	return &Engine[T]{schema: schema, source: source}
}

func (e *Engine[T]) Schema() Schema {
	return e.schema
}

// Criteria composes the request against an optional base criteria (used by
// views that pre-restrict the row set). Unknown filter names and unknown or
// unsortable columns are ignored.
func (e *Engine[T]) Criteria(req Request, base *Criteria) Criteria {
	var c Criteria
	if base != nil {
		c.Where = append(c.Where, base.Where...)
	}

	if req.Search != "" {
		for _, column := range e.schema.SearchColumns() {
			c.Search = append(c.Search, Condition{Field: column, Op: OpContains, Value: req.Search})
		}
	}

	// порядок фильтров фиксированный, чтобы одинаковые запросы давали одинаковый SQL
	names := make([]string, 0, len(req.Filters))
	for name := range req.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f, ok := e.schema.Filter(name)
		if !ok {
			continue
		}
		cond, ok := f.Build(req.Filters[name])
		if !ok {
			continue
		}
		c.Where = append(c.Where, cond)
	}

	if field, ok := e.schema.SortField(req.Sort); ok {
		desc := req.Direction == Desc
		c.Order = []Order{{Field: field, Desc: desc}}
		if field != "id" {
			c.Order = append(c.Order, Order{Field: "id", Desc: desc})
		}
	} else if base != nil && len(base.Order) > 0 {
		c.Order = append(c.Order, base.Order...)
	} else {
		c.Order = []Order{{Field: "id"}}
	}

	page, perPage := req.pagination()
	c.Offset = (page - 1) * perPage
	c.Limit = perPage

	return c
}

func (e *Engine[T]) List(ctx context.Context, req Request) (Page[T], error) {
	return e.ListFrom(ctx, nil, req)
}

// ListFrom lists rows starting from base instead of the full set.
func (e *Engine[T]) ListFrom(ctx context.Context, base *Criteria, req Request) (Page[T], error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "listing."+e.schema.Name())
	defer span.End()

	c := e.Criteria(req, base)
	span.SetAttributes(
		attribute.Bool("listing.search", len(c.Search) > 0),
		attribute.Int("listing.conditions", len(c.Where)),
		attribute.Int("listing.offset", c.Offset),
	)

	items, total, err := e.source.Find(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Page[T]{}, fmt.Errorf("could not list %s: %w", e.schema.Name(), err)
	}
	if items == nil {
		items = []T{}
	}

	page, perPage := req.pagination()
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		LastPage: lastPage,
	}, nil
}
