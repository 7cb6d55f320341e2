// Package dashboard computes the stat tiles and the recent activity feed of
// the admin home screen.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/models"
)

// ActivityWindow is how far back the recent activity feed reaches.
const ActivityWindow = 24 * time.Hour

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Stat struct {
	Label   string `json:"label"`
	Value   int64  `json:"value"`
	Display string `json:"display"`
}

type Activity struct {
	ID    uint              `json:"id"`
	Cells map[string]string `json:"cells"`
}

type Dashboard struct {
	counters   []namedCounter
	descriptor *resource.Descriptor[*models.Post]
	engine     *listing.Engine[*models.Post]
	now        func() time.Time
}

type namedCounter struct {
	label string
	Counter
}

func New(users, posts, comments Counter, source listing.Source[*models.Post], deps resource.Deps) *Dashboard {
	d := resource.NewActivityDescriptor(deps)
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Dashboard{
		counters: []namedCounter{
			{"Total Users", users},
			{"Total Posts", posts},
			{"Total Comments", comments},
		},
		descriptor: d,
		engine:     listing.NewEngine[*models.Post](d, source),
		now:        now,
	}
}

func (d *Dashboard) Descriptor() *resource.Descriptor[*models.Post] {
	return d.descriptor
}

// Stats runs the tile counts concurrently; tiles keep their declared order.
func (d *Dashboard) Stats(ctx context.Context) ([]Stat, error) {
	stats := make([]Stat, len(d.counters))

	p := pool.New().WithErrors().WithContext(ctx)
	for i, c := range d.counters {
		p.Go(func(ctx context.Context) error {
			n, err := c.Count(ctx)
			if err != nil {
				return fmt.Errorf("could not count %s: %w", c.label, err)
			}
			stats[i] = Stat{Label: c.label, Value: n, Display: FormatNumber(n)}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentActivity lists posts created within ActivityWindow, newest first,
// as formatted activity rows. Search and the location filter narrow it.
func (d *Dashboard) RecentActivity(ctx context.Context, req listing.Request) (listing.Page[Activity], error) {
	base := &listing.Criteria{
		Where: []listing.Condition{{
			Field: "created_at",
			Op:    listing.OpGte,
			Value: d.now().Add(-ActivityWindow),
		}},
		Order: []listing.Order{{Field: "created_at", Desc: true}, {Field: "id", Desc: true}},
	}

	page, err := d.engine.ListFrom(ctx, base, req)
	if err != nil {
		return listing.Page[Activity]{}, err
	}

	rows := make([]Activity, 0, len(page.Items))
	for _, p := range page.Items {
		cells, err := d.descriptor.Row(p)
		if err != nil {
			return listing.Page[Activity]{}, err
		}
		rows = append(rows, Activity{ID: p.ID, Cells: cells})
	}

	return listing.Page[Activity]{
		Items:    rows,
		Total:    page.Total,
		Page:     page.Page,
		PerPage:  page.PerPage,
		LastPage: page.LastPage,
	}, nil
}
