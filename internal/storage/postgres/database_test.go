package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/VitaminP8/postery-admin/internal/config"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/models"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite" // Импортируем драйвер SQLite
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB создает тестовую БД в памяти и выполняет миграции
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err, "Failed to connect to in-memory SQLite")
	// каждое соединение :memory: - отдельная база
	db.DB().SetMaxOpenConns(1)

	// Включаем foreign keys в SQLite
	db.Exec("PRAGMA foreign_keys = ON")
	// Отключаем логирование запросов для тестов
	db.LogMode(false)
	require.NoError(t, Migrate(db), "Failed to migrate database schema")

	t.Cleanup(func() { db.Close() })
	return db
}

func testDeps() resource.Deps {
	return resource.Deps{
		Locations: config.NewLocations(
			config.Location{Code: "US", Label: "United States"},
			config.Location{Code: "DE", Label: "Germany"},
		),
	}
}

// createTestUser создает тестового пользователя
func createTestUser(t *testing.T, db *gorm.DB, name, location string) *models.User {
	user := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "password123",
		Location: location,
	}
	require.NoError(t, db.Create(user).Error, "Failed to create test user")
	return user
}

// createTestPost создает тестовый пост, createdAt может быть нулевым
func createTestPost(t *testing.T, db *gorm.DB, userID uint, content, location string, createdAt time.Time) *models.Post {
	post := &models.Post{
		UserID:    userID,
		Content:   content,
		Location:  location,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(post).Error, "Failed to create test post")
	return post
}

func createTestComment(t *testing.T, db *gorm.DB, postID, userID uint, body string, createdAt time.Time) *models.Comment {
	comment := &models.Comment{
		PostID:    postID,
		UserID:    userID,
		Body:      body,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(comment).Error, "Failed to create test comment")
	return comment
}

func TestMigrate(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "posts", "comments", "exports"} {
		assert.True(t, db.HasTable(table), table)
	}

	// повторная миграция ничего не ломает
	assert.NoError(t, Migrate(db))
}

func TestCloseWithNilDB(t *testing.T) {
	assert.NoError(t, Close(nil))
}

func TestOpenUnknownStorage(t *testing.T) {
	_, err := Open(t.Context(), &config.Config{Storage: "memory"})
	assert.Error(t, err)

	_, err = Open(t.Context(), &config.Config{Storage: "oracle"})
	assert.EqualError(t, err, "unknown storage type: oracle")
}

func TestOpenSQLite(t *testing.T) {
	path := t.TempDir() + "/postery.db"

	db, err := Open(t.Context(), &config.Config{Storage: "sqlite", SQLitePath: path})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	user := createTestUser(t, db, "alice", "US")

	storage := NewUserPostgresStorage(db)
	got, err := storage.GetUserById(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestExportPostgresStorage(t *testing.T) {
	db := setupTestDB(t)
	storage := NewExportPostgresStorage(db)
	ctx := t.Context()

	export := &models.Export{Exporter: "users"}
	require.NoError(t, storage.CreateExport(ctx, export))
	require.NotZero(t, export.ID)

	now := time.Now().UTC()
	export.FileName = fmt.Sprintf("users-%d.csv", export.ID)
	export.TotalRows = 3
	export.SuccessfulRows = 3
	export.CompletedAt = &now
	require.NoError(t, storage.UpdateExport(ctx, export))

	got, err := storage.GetExportById(ctx, export.ID)
	require.NoError(t, err)
	assert.Equal(t, export.FileName, got.FileName)
	assert.Equal(t, 3, got.SuccessfulRows)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, now, *got.CompletedAt, time.Second)
	assert.Nil(t, got.StaffID)
}

func TestText(t *testing.T) {
	t.Run("Timestamps are formatted per dialect", func(t *testing.T) {
		assert.Equal(t, "TO_CHAR(posts.created_at, 'YYYY-MM-DD HH24:MI:SS')", text("postgres", "posts.created_at"))
		assert.Equal(t, "DATE_FORMAT(posts.created_at, '%Y-%m-%d %H:%i:%s')", text("mysql", "posts.created_at"))
		assert.Equal(t, "posts.created_at", text("sqlite3", "posts.created_at"))
	})

	t.Run("Text columns are left alone", func(t *testing.T) {
		assert.Equal(t, "posts.content", text("postgres", "posts.content"))
	})
}
