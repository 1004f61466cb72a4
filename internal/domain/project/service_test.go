package project

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T) (*Service, Store) {
	t.Helper()
	store := setupTestStore(t)
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestCreate_SeedsOneUpdate(t *testing.T) {
	svc, _ := setupTestService(t)

	p, err := svc.Create(context.Background(), &CreateProjectRequest{
		Name: " Riverside ", ClientName: "Acme", AccessCode: "1111",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Riverside", p.Name)
	require.Len(t, p.Updates, 1)
	assert.Equal(t, 1, p.Updates[0].Week)
	assert.Equal(t, "2024-05-20", p.Updates[0].Date)
	assert.Equal(t, "Week 1", p.Updates[0].Title)
	assert.NotEmpty(t, p.Updates[0].ID)
}

func TestAddWeek_PrependsWithNextWeekNumber(t *testing.T) {
	svc, store := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleProject("p1")))

	u, err := svc.AddWeek(ctx, "p1", &AddWeekRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, u.Week)
	assert.Equal(t, "Week 3", u.Title)

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.Updates, 3)
	assert.Equal(t, u.ID, got.Updates[0].ID)
	assert.Equal(t, "u2", got.Updates[1].ID)
	assert.Equal(t, "u1", got.Updates[2].ID)
}

func TestAddWeek_ExplicitWeekMayRepeat(t *testing.T) {
	svc, store := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleProject("p1")))

	week := 1
	u, err := svc.AddWeek(ctx, "p1", &AddWeekRequest{Week: &week, Date: "2024-06-01", Title: "Redo"})
	require.NoError(t, err)
	assert.Equal(t, 1, u.Week)
	assert.Equal(t, "2024-06-01", u.Date)
}

func TestApplyField_TouchesOnlyTargetUpdate(t *testing.T) {
	svc, store := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleProject("p1")))

	before, err := store.Get(ctx, "p1")
	require.NoError(t, err)

	u, err := svc.ApplyField(ctx, "p1", "u1", SetCompletion(55))
	require.NoError(t, err)
	assert.Equal(t, 55, u.Stats.Completion)

	after, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, before.Updates[0], after.Updates[0])

	want := before.Updates[1]
	want.Stats.Completion = 55
	assert.Equal(t, want, after.Updates[1])
}

func TestApplyField_Errors(t *testing.T) {
	svc, store := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleProject("p1")))

	_, err := svc.ApplyField(ctx, "p1", "missing", SetTitle("x"))
	assert.ErrorIs(t, err, ErrUpdateNotFound)

	_, err = svc.ApplyField(ctx, "nope", "u1", SetTitle("x"))
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.ApplyField(ctx, "p1", "u1", SetCompletion(150))
	assert.ErrorIs(t, err, ErrInvalidCompletion)
}

func TestPrependMedia_NewItemFirstOthersKeepOrder(t *testing.T) {
	svc, store := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleProject("p1")))

	item := MediaItem{ID: "m3", Kind: MediaPhoto, URL: "/new.jpg", ThumbnailURL: "/new.jpg"}
	require.NoError(t, svc.PrependMedia(ctx, "p1", "u1", item))

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	media := got.Updates[1].Media
	require.Len(t, media, 3)
	assert.Equal(t, item, media[0])
	assert.Equal(t, "m2", media[1].ID)
	assert.Equal(t, "m1", media[2].ID)
	assert.Empty(t, got.Updates[0].Media)
}

func TestAddMediaURL(t *testing.T) {
	svc, store := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleProject("p1")))

	item, err := svc.AddMediaURL(ctx, "p1", "u2", &AddMediaRequest{
		Kind: MediaPanoramic, URL: "https://cdn.example/pano.jpg", Description: "roof",
	})
	require.NoError(t, err)
	assert.Equal(t, MediaPanoramic, item.Kind)

	_, err = svc.AddMediaURL(ctx, "p1", "u2", &AddMediaRequest{Kind: "gif", URL: "https://x"})
	assert.ErrorIs(t, err, ErrInvalidMediaKind)
}

func TestUpdateDetails_RejectsEmptyAccessCode(t *testing.T) {
	svc, store := setupTestService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleProject("p1")))

	empty := "  "
	_, err := svc.UpdateDetails(ctx, "p1", &UpdateProjectRequest{AccessCode: &empty})
	assert.ErrorIs(t, err, ErrInvalidAccessCode)

	name := "Tower B"
	p, err := svc.UpdateDetails(ctx, "p1", &UpdateProjectRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Tower B", p.Name)
	assert.Equal(t, "1111", p.AccessCode)
}

func TestNewMediaID(t *testing.T) {
	now := time.UnixMilli(1716195600000)
	id := NewMediaID(now)
	assert.Regexp(t, regexp.MustCompile(`^1716195600000-[0-9a-z]{7}$`), id)
	assert.NotEqual(t, id, NewMediaID(now))
}
