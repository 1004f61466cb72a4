package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestState_ChangedClosesOnChangeOnly(t *testing.T) {
	s := NewState()
	ch := s.Changed()

	s.Clear()
	assert.False(t, closed(ch), "clearing an empty selection is not a change")

	s.Open("p1", "u1")
	assert.True(t, closed(ch))

	next := s.Changed()
	assert.False(t, closed(next))
	s.Open("p1", "u1")
	assert.False(t, closed(next))
}

func TestState_Target(t *testing.T) {
	s := NewState()
	_, _, ok := s.Target()
	assert.False(t, ok)

	s.Open("p1", "")
	_, _, ok = s.Target()
	assert.False(t, ok, "a project without updates has no target")

	require.NoError(t, s.SelectUpdate("u2"))
	pid, uid, ok := s.Target()
	assert.True(t, ok)
	assert.Equal(t, "p1", pid)
	assert.Equal(t, "u2", uid)
}

func TestState_Navigate(t *testing.T) {
	s := NewState()
	assert.ErrorIs(t, s.Navigate("settings"), ErrInvalidView)
	assert.ErrorIs(t, s.Navigate(ViewDetail), ErrNoActiveProject)
	assert.ErrorIs(t, s.SelectUpdate("u1"), ErrNoActiveProject)

	s.Open("p1", "u1")
	require.NoError(t, s.Navigate(ViewProfile))
	assert.Equal(t, Selection{View: ViewProfile, ProjectID: "p1", UpdateID: "u1"}, s.Selection())

	require.NoError(t, s.Navigate(ViewHome))
	assert.Equal(t, Selection{View: ViewHome}, s.Selection())
}

func TestState_Repair(t *testing.T) {
	s := NewState()
	s.Open("p1", "u1")

	s.repair("p2", false, nil)
	assert.Equal(t, "p1", s.Selection().ProjectID)

	s.repair("p1", true, []string{"u3", "u1"})
	assert.Equal(t, "u1", s.Selection().UpdateID)

	s.repair("p1", true, []string{"u3"})
	assert.Equal(t, "u3", s.Selection().UpdateID)

	s.repair("p1", false, nil)
	assert.Equal(t, Selection{View: ViewHome}, s.Selection())
}
