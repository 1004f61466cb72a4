package workspace

import (
	"errors"
	"sync"
)

type View string

const (
	ViewHome    View = "home"
	ViewDetail  View = "detail"
	ViewProfile View = "profile"
)

func (v View) Valid() bool {
	return v == ViewHome || v == ViewDetail || v == ViewProfile
}

var (
	ErrInvalidView     = errors.New("unknown view")
	ErrNoActiveProject = errors.New("no project is open")
	ErrClosed          = errors.New("workspace registry is closed")
)

// Selection is a copy of the navigation state.
type Selection struct {
	View      View   `json:"view"`
	ProjectID string `json:"project_id,omitempty"`
	UpdateID  string `json:"update_id,omitempty"`
}

// State is one user's navigation state. All writes go through its methods;
// readers observe changes through Changed.
type State struct {
	mu      sync.Mutex
	sel     Selection
	changed chan struct{}
}

func NewState() *State {
	return &State{sel: Selection{View: ViewHome}, changed: make(chan struct{})}
}

func (s *State) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Target returns the weekly update uploads go to.
func (s *State) Target() (projectID, updateID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.ProjectID, s.sel.UpdateID, s.sel.ProjectID != "" && s.sel.UpdateID != ""
}

// Changed returns a channel that is closed on the next state change.
func (s *State) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// Open shows a project with one of its updates selected.
func (s *State) Open(projectID, updateID string) {
	s.set(Selection{View: ViewDetail, ProjectID: projectID, UpdateID: updateID})
}

func (s *State) SelectUpdate(updateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.ProjectID == "" {
		return ErrNoActiveProject
	}
	next := s.sel
	next.UpdateID = updateID
	s.setLocked(next)
	return nil
}

// Navigate switches view. Going home closes the open project.
func (s *State) Navigate(v View) error {
	if !v.Valid() {
		return ErrInvalidView
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.sel
	next.View = v
	switch v {
	case ViewHome:
		next.ProjectID, next.UpdateID = "", ""
	case ViewDetail:
		if next.ProjectID == "" {
			return ErrNoActiveProject
		}
	}
	s.setLocked(next)
	return nil
}

// Clear drops the selection and returns home.
func (s *State) Clear() {
	s.set(Selection{View: ViewHome})
}

func (s *State) set(sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(sel)
}

func (s *State) setLocked(sel Selection) {
	if sel == s.sel {
		return
	}
	s.sel = sel
	close(s.changed)
	s.changed = make(chan struct{})
}

// repair adjusts the selection after the open project changed in the store.
// exists is false when the project was deleted; updateIDs is its update order.
func (s *State) repair(projectID string, exists bool, updateIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.ProjectID != projectID {
		return
	}
	if !exists {
		s.setLocked(Selection{View: ViewHome})
		return
	}
	for _, id := range updateIDs {
		if id == s.sel.UpdateID {
			return
		}
	}
	next := s.sel
	next.UpdateID = ""
	if len(updateIDs) > 0 {
		next.UpdateID = updateIDs[0]
	}
	s.setLocked(next)
}
