// Package summary drafts weekly update summaries with a text generation model.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"siteportal/internal/domain/project"
)

var (
	ErrEmptyNotes = errors.New("notes are required")
	ErrGeneration = errors.New("summary generation failed, try again later")
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Editor is the slice of the project service the drafter needs.
type Editor interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	ApplyField(ctx context.Context, projectID, updateID string, op project.FieldUpdate) (*project.WeeklyUpdate, error)
}

type Service struct {
	editor Editor
	gen    Generator
	logger *slog.Logger
}

func NewService(editor Editor, gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{editor: editor, gen: gen, logger: logger}
}

// Draft generates a client-facing summary from the site manager's notes and the
// update's stats, then stores it as the update's Summary.
func (s *Service) Draft(ctx context.Context, projectID, updateID, notes string) (*project.WeeklyUpdate, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, ErrEmptyNotes
	}

	p, err := s.editor.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	idx := p.UpdateIndex(updateID)
	if idx < 0 {
		return nil, project.ErrUpdateNotFound
	}

	text, err := s.gen.Generate(ctx, BuildPrompt(p, p.Updates[idx], notes))
	if err != nil {
		s.logger.Warn("summary generation failed", "project_id", projectID, "update_id", updateID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return s.editor.ApplyField(ctx, projectID, updateID, project.SetSummary(text))
}

// BuildPrompt renders the instruction sent to the model.
func BuildPrompt(p *project.Project, u project.WeeklyUpdate, notes string) string {
	var b strings.Builder
	b.WriteString("Write a short, friendly progress summary for the owner of a construction project. ")
	b.WriteString("Use two to four sentences, plain language, no bullet points.\n\n")
	fmt.Fprintf(&b, "Project: %s", p.Name)
	if p.Location != "" {
		fmt.Fprintf(&b, " (%s)", p.Location)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Week %d, %s: %s\n", u.Week, u.Date, u.Title)
	fmt.Fprintf(&b, "Completion: %d%%\n", u.Stats.Completion)
	fmt.Fprintf(&b, "Workers on site: %d\n", u.Stats.WorkersOnSite)
	if u.Stats.Weather != "" {
		fmt.Fprintf(&b, "Weather: %s\n", u.Stats.Weather)
	}
	b.WriteString("\nSite manager notes:\n")
	b.WriteString(notes)
	return b.String()
}
