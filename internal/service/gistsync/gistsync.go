package gistsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alanyang/prompt-hub/internal/domain/snapshot"
	portgist "github.com/alanyang/prompt-hub/internal/port/gist"
	portkv "github.com/alanyang/prompt-hub/internal/port/kv"
	"github.com/alanyang/prompt-hub/internal/service/fault"
)

// Secure storage keys.
const (
	TokenKey  = "github-token"
	GistIDKey = "github-gist-id"
)

const (
	// TokenLifetime is how long a validated token is trusted before it must be
	// checked against GitHub again.
	TokenLifetime = 30 * 24 * time.Hour
	refreshWindow = 24 * time.Hour
)

var (
	ErrNotAuthenticated = errors.New("not authenticated with github")
	ErrNoGist           = errors.New("no gist configured")
	ErrNothingToImport  = errors.New("gist has no prompt data to import")
)

// SecureStore is the subset of the secure storage wrapper this service uses.
// GetItem reports a missing key with an error matching portkv.ErrNotFound.
type SecureStore interface {
	SetItem(ctx context.Context, key string, value any) error
	GetItem(ctx context.Context, key string, out any) error
	RemoveItem(ctx context.Context, key string) error
}

// Library is the workspace that is exported and replaced on import.
type Library interface {
	Snapshot() snapshot.Snapshot
	ReplaceAll(ctx context.Context, snap snapshot.Snapshot) error
}

type Reporter interface {
	Handle(ctx context.Context, err error, opts fault.Options)
	Wrap(ctx context.Context, err error, opts fault.Options) error
}

// credentials is the stored token record. Expiry is in Unix milliseconds.
type credentials struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

// Status summarizes the sync state for display.
type Status struct {
	Authenticated bool      `json:"authenticated"`
	HasGist       bool      `json:"hasGist"`
	GistID        string    `json:"gistId,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt,omitzero"`
}

// Service backs the workspace up to a single private gist. Every sync
// replaces the remote copy wholesale.
// [DIP] GitHub is reached only through portgist.Client.
type Service struct {
	store    SecureStore
	factory  portgist.Factory
	library  Library
	reporter Reporter
	now      func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
	client portgist.Client
	gistID string
}

func NewService(store SecureStore, factory portgist.Factory, library Library, reporter Reporter) *Service {
	return &Service{
		store:    store,
		factory:  factory,
		library:  library,
		reporter: reporter,
		now:      time.Now,
	}
}

func (s *Service) report(ctx context.Context, err error, method, userMessage string) error {
	return s.reporter.Wrap(ctx, err, fault.Options{
		Severity:    fault.SeverityMedium,
		Context:     map[string]any{"component": "gistsync", "method": method},
		UserMessage: userMessage,
	})
}

// Load restores unexpired credentials and the gist id from secure storage.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var creds credentials
	switch err := s.store.GetItem(ctx, TokenKey, &creds); {
	case err == nil:
		if expiry := time.UnixMilli(creds.Expiry); creds.Token != "" && expiry.After(s.now()) {
			s.token = creds.Token
			s.expiry = expiry
			s.client = s.factory(creds.Token)
		}
	case !isNotFound(err):
		s.reporter.Handle(ctx, fmt.Errorf("load github token: %w", err), fault.Options{
			Severity: fault.SeverityMedium,
			Context:  map[string]any{"component": "gistsync", "method": "load"},
		})
	}

	var id string
	switch err := s.store.GetItem(ctx, GistIDKey, &id); {
	case err == nil:
		s.gistID = id
	case !isNotFound(err):
		s.reporter.Handle(ctx, fmt.Errorf("load gist id: %w", err), fault.Options{
			Severity: fault.SeverityLow,
			Context:  map[string]any{"component": "gistsync", "method": "load"},
		})
	}
}

func isNotFound(err error) bool { return errors.Is(err, portkv.ErrNotFound) }

// Login validates token against GitHub and stores it. On failure any previous
// session is cleared.
func (s *Service) Login(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.login(ctx, token)
	if err == nil {
		return nil
	}
	s.logoutLocked(ctx)
	return s.report(ctx, err, "login", "Failed to authenticate with GitHub. Please check your token and try again.")
}

func (s *Service) login(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("login: %w", portgist.ErrUnauthorized)
	}
	client := s.factory(token)
	if _, err := client.AuthenticatedUser(ctx); err != nil {
		return fmt.Errorf("validate token: %w", err)
	}
	expiry := s.now().Add(TokenLifetime)
	if err := s.store.SetItem(ctx, TokenKey, credentials{Token: token, Expiry: expiry.UnixMilli()}); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	s.token = token
	s.expiry = expiry
	s.client = client
	return nil
}

// Logout forgets the token and the gist id.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked(ctx)
}

func (s *Service) logoutLocked(ctx context.Context) error {
	s.token = ""
	s.expiry = time.Time{}
	s.client = nil
	s.gistID = ""
	return errors.Join(
		s.store.RemoveItem(ctx, TokenKey),
		s.store.RemoveItem(ctx, GistIDKey),
	)
}

func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticatedLocked()
}

func (s *Service) authenticatedLocked() bool {
	return s.token != "" && s.client != nil && s.expiry.After(s.now())
}

func (s *Service) HasGist() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gistID != ""
}

func (s *Service) GistID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gistID
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Authenticated: s.authenticatedLocked(),
		HasGist:       s.gistID != "",
		GistID:        s.gistID,
	}
	if st.Authenticated {
		st.ExpiresAt = s.expiry
	}
	return st
}

func (s *Service) SetGistID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setGistIDLocked(ctx, id)
}

func (s *Service) setGistIDLocked(ctx context.Context, id string) error {
	if err := s.store.SetItem(ctx, GistIDKey, id); err != nil {
		return fmt.Errorf("store gist id: %w", err)
	}
	s.gistID = id
	return nil
}

// CheckTokenValidity revalidates a token that expires within a day and
// extends it by TokenLifetime. A token GitHub rejects logs the user out.
func (s *Service) CheckTokenValidity(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || s.client == nil || s.expiry.IsZero() {
		return false
	}
	if s.expiry.After(s.now().Add(refreshWindow)) {
		return true
	}
	if _, err := s.client.AuthenticatedUser(ctx); err != nil {
		s.logoutLocked(ctx)
		return false
	}
	expiry := s.now().Add(TokenLifetime)
	if err := s.store.SetItem(ctx, TokenKey, credentials{Token: s.token, Expiry: expiry.UnixMilli()}); err != nil {
		s.reporter.Handle(ctx, fmt.Errorf("extend token: %w", err), fault.Options{Severity: fault.SeverityLow})
	}
	s.expiry = expiry
	return true
}

func (s *Service) ListGists(ctx context.Context) ([]portgist.Gist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticatedLocked() {
		return nil, ErrNotAuthenticated
	}
	gists, err := s.client.List(ctx)
	if err != nil {
		return nil, s.report(ctx, fmt.Errorf("list gists: %w", err), "listGists", "Failed to fetch your Gists from GitHub.")
	}
	return gists, nil
}

// Export writes the workspace to the configured gist, creating a private one
// when none is set. It returns the snapshot's lastSynced.
func (s *Service) Export(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticatedLocked() {
		return "", ErrNotAuthenticated
	}
	snap := snapshot.Sanitize(s.library.Snapshot())
	raw, err := snapshot.Encode(snap)
	if err != nil {
		return "", s.report(ctx, err, "export", "Failed to prepare your prompts for sync.")
	}

	if s.gistID != "" {
		if err := s.client.Update(ctx, s.gistID, snapshot.Filename, raw); err != nil {
			return "", s.report(ctx, fmt.Errorf("update gist %s: %w", s.gistID, err), "updateGist", "Failed to update Gist on GitHub.")
		}
		return snap.LastSynced, nil
	}

	id, err := s.client.Create(ctx, snapshot.Description, false, snapshot.Filename, raw)
	if err != nil {
		return "", s.report(ctx, fmt.Errorf("create gist: %w", err), "createGist", "Failed to create Gist on GitHub.")
	}
	if err := s.setGistIDLocked(ctx, id); err != nil {
		return "", s.report(ctx, err, "createGist", "Gist created but its id could not be saved.")
	}
	return snap.LastSynced, nil
}

// Import replaces local saved prompts, templates and folders with the gist's
// copy and returns its lastSynced.
func (s *Service) Import(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticatedLocked() {
		return "", ErrNotAuthenticated
	}
	if s.gistID == "" {
		return "", ErrNoGist
	}
	raw, found, err := s.client.File(ctx, s.gistID, snapshot.Filename)
	if err != nil {
		return "", s.report(ctx, fmt.Errorf("read gist %s: %w", s.gistID, err), "getGistContent", "Failed to fetch Gist content from GitHub.")
	}
	if !found {
		return "", ErrNothingToImport
	}
	snap, err := snapshot.Decode([]byte(raw), s.now())
	if err != nil {
		return "", s.report(ctx, err, "import", "The Gist does not contain valid prompt data.")
	}
	if err := s.library.ReplaceAll(ctx, snap); err != nil {
		return "", s.report(ctx, err, "import", "Failed to apply the imported prompts.")
	}
	return snap.LastSynced, nil
}
