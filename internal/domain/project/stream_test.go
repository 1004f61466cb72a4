package project

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_PushesChangesAndDeletion(t *testing.T) {
	r, store := setupTestRouter(t, nil)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleProject("p1")))

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/projects/p1/stream"
	header := http.Header{"X-Test-Role": []string{"admin"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	read := func() StreamEvent {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var ev StreamEvent
		require.NoError(t, conn.ReadJSON(&ev))
		return ev
	}

	ev := read()
	assert.Equal(t, EventSnapshot, ev.Type)
	require.NotNil(t, ev.Project)
	assert.Equal(t, "Riverside Tower", ev.Project.Name)

	changed := sampleProject("p1")
	changed.Name = "Riverside Tower II"
	require.NoError(t, store.Put(ctx, changed))

	ev = read()
	assert.Equal(t, EventSnapshot, ev.Type)
	assert.Equal(t, "Riverside Tower II", ev.Project.Name)

	require.NoError(t, store.Delete(ctx, "p1"))
	ev = read()
	assert.Equal(t, EventDeleted, ev.Type)
}

func TestStream_LockedProjectIsRefused(t *testing.T) {
	r, store := setupTestRouter(t, fakeAccess{})
	require.NoError(t, store.Put(context.Background(), sampleProject("p1")))

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/projects/p1/stream"
	header := http.Header{"X-Test-Role": []string{"client"}, "X-Device-ID": []string{"d1"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
