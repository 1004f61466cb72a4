package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&User{}, &RevokedSession{}))
	return db
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &User{Name: "A", Email: "a@site.kz", Handle: "a"}))
	err := repo.Create(ctx, &User{Name: "B", Email: "a@site.kz", Handle: "b"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = repo.GetByEmail(ctx, "missing@site.kz")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSessionRepository_RevokeAndPurge(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Revoke(ctx, &RevokedSession{JTI: "old", UserID: 1, ExpiresAt: now.Add(-time.Hour), RevokedAt: now}))
	require.NoError(t, repo.Revoke(ctx, &RevokedSession{JTI: "live", UserID: 1, ExpiresAt: now.Add(time.Hour), RevokedAt: now}))
	require.NoError(t, repo.Revoke(ctx, &RevokedSession{JTI: "live", UserID: 1, ExpiresAt: now.Add(time.Hour), RevokedAt: now}))

	revoked, err := repo.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revoked, err = repo.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}
