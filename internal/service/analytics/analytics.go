package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	portkv "github.com/alanyang/prompt-hub/internal/port/kv"
)

// PreferencesKey is where consent settings live in the key/value store.
const PreferencesKey = "analytics-preferences"

// Preferences records which trackers the user has consented to.
type Preferences struct {
	GA      bool `json:"ga"`
	Clarity bool `json:"clarity"`
}

// DefaultPreferences applies until the user changes them.
var DefaultPreferences = Preferences{GA: true, Clarity: true}

// Service emits usage events as structured log records, gated on consent.
type Service struct {
	kv     portkv.Store
	logger *slog.Logger
}

func NewService(kv portkv.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{kv: kv, logger: logger.With("component", "analytics")}
}

// Preferences returns the stored preferences, or the defaults when none are
// stored or the stored value is unreadable.
func (s *Service) Preferences(ctx context.Context) Preferences {
	raw, err := s.kv.Get(ctx, PreferencesKey)
	if err != nil {
		if !errors.Is(err, portkv.ErrNotFound) {
			s.logger.WarnContext(ctx, "reading analytics preferences", "error", err)
		}
		return DefaultPreferences
	}
	var p Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.WarnContext(ctx, "decoding analytics preferences", "error", err)
		return DefaultPreferences
	}
	return p
}

func (s *Service) SetPreferences(ctx context.Context, p Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding analytics preferences: %w", err)
	}
	if err := s.kv.Set(ctx, PreferencesKey, string(raw)); err != nil {
		return fmt.Errorf("saving analytics preferences: %w", err)
	}
	return nil
}

func (s *Service) Event(ctx context.Context, category, action, label string) {
	if !s.Preferences(ctx).GA {
		return
	}
	s.logger.InfoContext(ctx, "event", "category", category, "action", action, "label", label)
}

func (s *Service) TrackError(ctx context.Context, description string, fatal bool) {
	action := "Error"
	if fatal {
		action = "Fatal Error"
	}
	s.Event(ctx, "Error", action, description)
}

func (s *Service) TrackPromptInteraction(ctx context.Context, action, promptID, promptTitle string) {
	s.Event(ctx, "Prompt", action, fmt.Sprintf("%s (%s)", promptTitle, promptID))
}

func (s *Service) TrackSearch(ctx context.Context, action, query string) {
	s.Event(ctx, "Search", action, query)
}

func (s *Service) TrackOrganization(ctx context.Context, action, itemType, itemName string) {
	s.Event(ctx, "Organization", action, itemType+": "+itemName)
}

func (s *Service) TrackExport(ctx context.Context, action, format string) {
	s.Event(ctx, "Export", action, format)
}
