// Package app wires storage backends into the admin services.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/spf13/afero"

	"github.com/VitaminP8/postery-admin/internal/comment"
	"github.com/VitaminP8/postery-admin/internal/config"
	"github.com/VitaminP8/postery-admin/internal/dashboard"
	"github.com/VitaminP8/postery-admin/internal/export"
	"github.com/VitaminP8/postery-admin/internal/media"
	"github.com/VitaminP8/postery-admin/internal/post"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/internal/server"
	"github.com/VitaminP8/postery-admin/internal/storage/memory"
	"github.com/VitaminP8/postery-admin/internal/storage/postgres"
	"github.com/VitaminP8/postery-admin/internal/user"
)

// Stores - реализации хранилищ одного бэкенда
type Stores struct {
	Users    user.UserStorage
	Posts    post.PostStorage
	Comments comment.CommentStorage
	Exports  export.ExportStorage

	// Close освобождает соединение, для memory ничего не делает
	Close func() error
}

func MemoryStores(store *memory.Store) Stores {
	return Stores{
		Users:    memory.NewUserMemoryStorage(store),
		Posts:    memory.NewPostMemoryStorage(store),
		Comments: memory.NewCommentMemoryStorage(store),
		Exports:  memory.NewExportMemoryStorage(store),
		Close:    func() error { return nil },
	}
}

func GormStores(db *gorm.DB) Stores {
	return Stores{
		Users:    postgres.NewUserPostgresStorage(db),
		Posts:    postgres.NewPostPostgresStorage(db),
		Comments: postgres.NewCommentPostgresStorage(db),
		Exports:  postgres.NewExportPostgresStorage(db),
		Close:    func() error { return postgres.Close(db) },
	}
}

// OpenStores выбирает хранилище по cfg.Storage. Для SQL баз схема
// мигрируется, если migrate = true.
func OpenStores(ctx context.Context, cfg *config.Config, migrate bool) (Stores, error) {
	if cfg.Storage == "memory" {
		log.Println("Используется in-memory хранилище")
		return MemoryStores(memory.NewStore()), nil
	}

	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return Stores{}, err
	}
	if migrate {
		if err := postgres.Migrate(db); err != nil {
			postgres.Close(db)
			return Stores{}, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	log.Printf("Используется %s хранилище", cfg.Storage)
	return GormStores(db), nil
}

type Options struct {
	Locations *config.Locations
	Media     media.Store
	Exports   afero.Fs
	Now       func() time.Time
}

// App - собранные сервисы админки поверх одного набора хранилищ
type App struct {
	Stores    Stores
	Locations *config.Locations
	Users     *user.Service
	Posts     *post.Service
	Comments  *comment.Service
	Dashboard *dashboard.Dashboard
	Exporter  *export.Exporter
}

func New(stores Stores, opts Options) *App {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	exportsFs := opts.Exports
	if exportsFs == nil {
		exportsFs = afero.NewMemMapFs()
	}
	deps := resource.Deps{Locations: opts.Locations, Now: now}

	users := user.NewService(stores.Users, opts.Media, deps)
	posts := post.NewService(stores.Posts, users, opts.Media, deps)
	comments := comment.NewService(stores.Comments, posts, users, deps)
	return &App{
		Stores:    stores,
		Locations: opts.Locations,
		Users:     users,
		Posts:     posts,
		Comments:  comments,
		Dashboard: dashboard.New(users, posts, comments, stores.Posts, deps),
		Exporter:  export.NewExporter(stores.Exports, stores.Users, exportsFs, now),
	}
}

// Resolver отдает HTTP слою все сервисы приложения
func (a *App) Resolver(mediaFs afero.Fs, secret string) *server.Resolver {
	return &server.Resolver{
		Users:     a.Users,
		Posts:     a.Posts,
		Comments:  a.Comments,
		Dashboard: a.Dashboard,
		Exporter:  a.Exporter,
		Locations: a.Locations,
		Media:     mediaFs,
		Secret:    secret,
	}
}
