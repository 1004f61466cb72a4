package summary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"siteportal/internal/domain/project"
	"siteportal/internal/pkg/genai"
	"siteportal/internal/pkg/logger"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type fakeEditor struct {
	p       *project.Project
	applied []project.FieldUpdate
}

func (f *fakeEditor) Get(_ context.Context, id string) (*project.Project, error) {
	if f.p == nil || f.p.ID != id {
		return nil, project.ErrProjectNotFound
	}
	return f.p.Clone(), nil
}

func (f *fakeEditor) ApplyField(_ context.Context, projectID, updateID string, op project.FieldUpdate) (*project.WeeklyUpdate, error) {
	idx := f.p.UpdateIndex(updateID)
	if idx < 0 {
		return nil, project.ErrUpdateNotFound
	}
	next, err := op.Apply(f.p.Updates[idx])
	if err != nil {
		return nil, err
	}
	f.p.Updates[idx] = next
	f.applied = append(f.applied, op)
	return &next, nil
}

func sampleEditor() *fakeEditor {
	return &fakeEditor{p: &project.Project{
		ID: "p1", Name: "Riverside Tower", Location: "Almaty",
		Updates: []project.WeeklyUpdate{{
			ID: "u1", Week: 3, Date: "2024-05-20", Title: "Framing",
			Media: []project.MediaItem{},
			Stats: project.Stats{Completion: 35, WorkersOnSite: 12, Weather: "Rain"},
		}},
	}}
}

func TestDraft_StoresGeneratedSummary(t *testing.T) {
	editor := sampleEditor()
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Riverside Tower") &&
			strings.Contains(prompt, "Completion: 35%") &&
			strings.Contains(prompt, "poured level 4 slab")
	})).Return("Level 4 slab is poured.", nil)

	svc := NewService(editor, gen, logger.Discard())
	u, err := svc.Draft(context.Background(), "p1", "u1", "  poured level 4 slab ")
	require.NoError(t, err)

	assert.Equal(t, "Level 4 slab is poured.", u.Summary)
	require.Len(t, editor.applied, 1)
	assert.Equal(t, project.FieldSummary, editor.applied[0].Field)
	gen.AssertExpectations(t)
}

func TestDraft_Errors(t *testing.T) {
	gen := new(MockGenerator)
	svc := NewService(sampleEditor(), gen, logger.Discard())
	ctx := context.Background()

	_, err := svc.Draft(ctx, "p1", "u1", "   ")
	assert.ErrorIs(t, err, ErrEmptyNotes)

	_, err = svc.Draft(ctx, "nope", "u1", "notes")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	_, err = svc.Draft(ctx, "p1", "missing", "notes")
	assert.ErrorIs(t, err, project.ErrUpdateNotFound)

	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestDraft_GenerationFailureLeavesUpdate(t *testing.T) {
	editor := sampleEditor()
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("upstream down"))

	_, err := NewService(editor, gen, logger.Discard()).Draft(context.Background(), "p1", "u1", "notes")
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Empty(t, editor.applied)
	assert.Empty(t, editor.p.Updates[0].Summary)
}

func setupRouter(gen Generator) (*gin.Engine, *fakeEditor) {
	gin.SetMode(gin.TestMode)
	editor := sampleEditor()
	r := gin.New()
	NewHandler(NewService(editor, gen, logger.Discard())).RegisterRoutes(r.Group("/api/v1"))
	return r, editor
}

func TestDraftEndpoint(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("All good.", nil)
	r, _ := setupRouter(gen)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/updates/u1/summary",
		strings.NewReader(`{"notes":"crane arrived"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "All good.")
}

func TestDraftEndpoint_DisabledClient(t *testing.T) {
	r, _ := setupRouter(genai.New(genai.Config{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/updates/u1/summary",
		strings.NewReader(`{"notes":"crane arrived"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "GENAI_DISABLED")
}

func TestDraftEndpoint_MissingNotes(t *testing.T) {
	r, _ := setupRouter(new(MockGenerator))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/updates/u1/summary",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
