package access

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sort"
	"strings"
	"sync"

	"siteportal/internal/domain/project"
	"siteportal/internal/pkg/metrics"
)

const defaultLanguage = "en"

// ProjectSource is the part of the content store the unlock flow reads.
type ProjectSource interface {
	Get(ctx context.Context, id string) (*project.Project, error)
}

// Service runs the unlock flow against a device's ledger.
type Service struct {
	projects ProjectSource
	ledger   Ledger
	prefs    PreferenceRepository

	// serializes read-modify-write of a device's ledger
	mu sync.Mutex
}

func NewService(projects ProjectSource, ledger Ledger, prefs PreferenceRepository) *Service {
	return &Service{projects: projects, ledger: ledger, prefs: prefs}
}

// Unlock compares code with the project's access code. Admins are unlocked
// without a code and nothing is recorded for them. A match adds the project to
// the device ledger; repeating it leaves the ledger as it was.
func (s *Service) Unlock(ctx context.Context, deviceID string, admin bool, projectID, code string) (State, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return StateLocked, err
	}
	if admin {
		metrics.UnlockAttemptsTotal.WithLabelValues("admin").Inc()
		return StateUnlocked, nil
	}
	if deviceID == "" {
		return StateLocked, ErrDeviceRequired
	}
	if !codeMatches(p.AccessCode, code) {
		metrics.UnlockAttemptsTotal.WithLabelValues("rejected").Inc()
		return StateLocked, ErrInvalidCode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.ledger.Get(ctx, deviceID)
	if err != nil {
		return StateLocked, fmt.Errorf("read ledger: %w", err)
	}
	if _, ok := ids[projectID]; !ok {
		ids[projectID] = struct{}{}
		if err := s.ledger.Set(ctx, deviceID, ids); err != nil {
			return StateLocked, fmt.Errorf("write ledger: %w", err)
		}
	}
	metrics.UnlockAttemptsTotal.WithLabelValues("accepted").Inc()
	return StateUnlocked, nil
}

func codeMatches(want, got string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// IsUnlocked reports whether the device ledger holds projectID.
func (s *Service) IsUnlocked(ctx context.Context, deviceID, projectID string) (bool, error) {
	if deviceID == "" {
		return false, nil
	}
	ids, err := s.ledger.Get(ctx, deviceID)
	if err != nil {
		return false, err
	}
	_, ok := ids[projectID]
	return ok, nil
}

// Unlocked lists the project ids the device has unlocked, sorted.
func (s *Service) Unlocked(ctx context.Context, deviceID string) ([]string, error) {
	if deviceID == "" {
		return []string{}, nil
	}
	ids, err := s.ledger.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Service) Language(ctx context.Context, deviceID string) (string, error) {
	if deviceID == "" {
		return defaultLanguage, nil
	}
	lang, err := s.prefs.Language(ctx, deviceID)
	if err != nil {
		return "", err
	}
	if lang == "" {
		return defaultLanguage, nil
	}
	return lang, nil
}

func (s *Service) SetLanguage(ctx context.Context, deviceID, lang string) (string, error) {
	if deviceID == "" {
		return "", ErrDeviceRequired
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !validLanguage(lang) {
		return "", ErrInvalidLanguage
	}
	if err := s.prefs.SetLanguage(ctx, deviceID, lang); err != nil {
		return "", err
	}
	return lang, nil
}

func validLanguage(lang string) bool {
	if len(lang) != 2 {
		return false
	}
	for _, r := range lang {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
