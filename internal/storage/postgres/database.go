package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/config"
	"github.com/VitaminP8/postery-admin/models"
	"github.com/cenkalti/backoff/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	_ "modernc.org/sqlite"
)

func init() {
	// sqlite сравнивает даты как строки, поэтому всё храним в UTC
	gorm.NowFunc = func() time.Time {
		return time.Now().UTC()
	}
}

// ConnectTimeout - сколько Open ждёт поднятия базы (например, в docker compose)
const ConnectTimeout = 30 * time.Second

// Open подключается к базе, выбранной в cfg.Storage (postgres, mysql или sqlite)
func Open(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	switch cfg.Storage {
	case "postgres":
		db, err = openSQL(ctx, "pgx", "postgres", dsn)
	case "mysql":
		db, err = openSQL(ctx, "mysql", "mysql", dsn)
	case "sqlite":
		db, err = openSQL(ctx, "sqlite", "sqlite3", "file:"+dsn+"?_pragma=foreign_keys(1)&_time_format=sqlite")
		if err == nil {
			// одна запись за раз, иначе SQLITE_BUSY
			db.DB().SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("storage %q is not a database", cfg.Storage)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	db.LogMode(false)
	log.Printf("Successfully connected to the %s database.", cfg.Storage)
	return db, nil
}

// openSQL открывает соединение через database/sql драйвер и отдаёт его gorm с нужным диалектом
func openSQL(ctx context.Context, driver, dialect, dsn string) (*gorm.DB, error) {
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		err := sqlDB.PingContext(ctx)
		if err != nil {
			log.Printf("database is not ready: %v", err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(ConnectTimeout),
	)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return gorm.Open(dialect, sqlDB)
}

// Migrate создаёт таблицы и внешние ключи
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...).Error; err != nil {
		return fmt.Errorf("could not migrate schema: %w", err)
	}

	// sqlite не умеет ALTER TABLE ... ADD CONSTRAINT
	if db.Dialect().GetName() == "sqlite3" {
		return nil
	}

	foreignKeys := []struct {
		model interface{}
		table string
		field string
		ref   string
	}{
		{&models.Post{}, "posts", "user_id", "users(id)"},
		{&models.Comment{}, "comments", "post_id", "posts(id)"},
		{&models.Comment{}, "comments", "user_id", "users(id)"},
	}
	for _, fk := range foreignKeys {
		name := db.Dialect().BuildKeyName(fk.table, fk.field, fk.ref, "foreign")
		if db.Dialect().HasForeignKey(fk.table, name) {
			continue
		}
		if err := db.Model(fk.model).AddForeignKey(fk.field, fk.ref, "CASCADE", "RESTRICT").Error; err != nil {
			return fmt.Errorf("could not add foreign key %s: %w", name, err)
		}
	}

	log.Println("Database schema is up to date.")
	return nil
}

// Close закрывает соединение с базой данных
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close the database connection: %v", err)
	}

	log.Println("Database connection closed.")
	return nil
}

// getError переводит gorm.ErrRecordNotFound в apperr.NotFoundError
func getError(err error, resource string, id uint) error {
	if gorm.IsRecordNotFoundError(err) {
		return apperr.NotFound(resource, id)
	}
	return fmt.Errorf("could not get %s by id: %w", resource, err)
}
