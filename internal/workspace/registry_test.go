package workspace

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

	"siteportal/internal/blob"
	"siteportal/internal/domain/project"
	"siteportal/internal/domain/upload"
	pkglogger "siteportal/internal/pkg/logger"
)

func setupRegistry(t *testing.T) (*Registry, project.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:workspace_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&project.Project{}))

	store := project.NewStore(db)
	require.NoError(t, store.Put(context.Background(), &project.Project{
		ID: "p1", Name: "Riverside", AccessCode: "1111",
		Updates: []project.WeeklyUpdate{
			{ID: "u2", Week: 2, Date: "2024-05-13", Media: []project.MediaItem{}},
			{ID: "u1", Week: 1, Date: "2024-05-06", Media: []project.MediaItem{}},
		},
	}))

	svc := project.NewService(store)
	cfg := upload.Config{SettleDelay: time.Millisecond, ClearDelay: time.Minute}
	r := NewRegistry(context.Background(), cfg, blob.NewLocal(t.TempDir(), "/static/uploads"), svc, store, pkglogger.Discard())
	t.Cleanup(r.Close)
	return r, store
}

func TestRegistry_OpenDefaultsToNewestUpdate(t *testing.T) {
	r, _ := setupRegistry(t)

	sel, err := r.Open(context.Background(), 1, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, Selection{View: ViewDetail, ProjectID: "p1", UpdateID: "u2"}, sel)

	_, err = r.Open(context.Background(), 1, "p1", "nope")
	assert.ErrorIs(t, err, project.ErrUpdateNotFound)

	_, err = r.Open(context.Background(), 1, "p9", "")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestRegistry_SessionsArePerUser(t *testing.T) {
	r, _ := setupRegistry(t)

	a, err := r.Session(1)
	require.NoError(t, err)
	again, err := r.Session(1)
	require.NoError(t, err)
	b, err := r.Session(2)
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
}

func TestRegistry_UploadsLandOnSelectedUpdate(t *testing.T) {
	r, store := setupRegistry(t)
	ctx := context.Background()

	_, err := r.Open(ctx, 1, "p1", "u1")
	require.NoError(t, err)
	pipeline, err := r.Pipeline(1)
	require.NoError(t, err)

	accepted, _ := pipeline.Enqueue([]blob.File{blob.NewBytesFile("slab.jpg", "image/jpeg", []byte("jpeg"))})
	require.Len(t, accepted, 1)

	require.Eventually(t, func() bool {
		snap := pipeline.Snapshot()
		return len(snap) == 1 && snap[0].Status == upload.StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	p, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, p.Updates[1].Media, 1)
	assert.Contains(t, p.Updates[1].Media[0].URL, "/static/uploads/p1/")
	assert.Empty(t, p.Updates[0].Media)
}

func TestRegistry_ReconcilesOnStoreChanges(t *testing.T) {
	r, store := setupRegistry(t)
	ctx := context.Background()

	_, err := r.Open(ctx, 1, "p1", "u1")
	require.NoError(t, err)
	s, err := r.Session(1)
	require.NoError(t, err)

	p, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	p.Updates = p.Updates[:1]
	require.NoError(t, store.Put(ctx, p))
	assert.Equal(t, "u2", s.State.Selection().UpdateID)

	require.NoError(t, store.Delete(ctx, "p1"))
	assert.Equal(t, Selection{View: ViewHome}, s.State.Selection())
}

func TestRegistry_DropClosesPipeline(t *testing.T) {
	r, _ := setupRegistry(t)

	pipeline, err := r.Pipeline(1)
	require.NoError(t, err)
	r.Drop(1)
	assert.True(t, pipeline.Closed())

	fresh, err := r.Pipeline(1)
	require.NoError(t, err)
	assert.NotSame(t, pipeline, fresh)
}

func TestRegistry_DropEndsAccountWorkspace(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	// two devices of the same account share one workspace
	_, err := r.Open(ctx, 1, "p1", "u1")
	require.NoError(t, err)
	tablet, err := r.Session(1)
	require.NoError(t, err)
	laptop, err := r.Session(1)
	require.NoError(t, err)
	require.Same(t, tablet, laptop)

	accepted, _ := laptop.Pipeline.Enqueue([]blob.File{blob.NewBytesFile("slab.jpg", "image/jpeg", []byte("jpeg"))})
	require.Len(t, accepted, 1)

	r.Drop(1)

	_, rejected := tablet.Pipeline.Enqueue([]blob.File{blob.NewBytesFile("wall.jpg", "image/jpeg", []byte("jpeg"))})
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0].Err, upload.ErrPipelineClosed)

	fresh, err := r.Session(1)
	require.NoError(t, err)
	assert.Empty(t, fresh.Pipeline.Snapshot())
	assert.Equal(t, Selection{View: ViewHome}, fresh.State.Selection())
}

func TestRegistry_ClosedRefusesSessions(t *testing.T) {
	r, _ := setupRegistry(t)
	r.Close()

	_, err := r.Session(1)
	assert.ErrorIs(t, err, ErrClosed)
}
