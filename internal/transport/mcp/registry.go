package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/prompt-hub/internal/domain/event"
)

// NotificationMethod is the JSON-RPC method used for library change pushes.
const NotificationMethod = "notifications/message"

// Notifier sends one notification to one session.
// *mcpserver.MCPServer satisfies it.
type Notifier interface {
	SendNotificationToSpecificClient(sessionID string, method string, params map[string]any) error
}

// SessionRegistry is the in-memory registry of open MCP sessions.
//
// [SRP] Session storage and notification fan-out only.
// [DIP] The notifier is injected after the mcp-go server exists.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]time.Time // sessionID → opened at

	notifierMu sync.RWMutex
	notifier   Notifier
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]time.Time)}
}

// SetNotifier injects the mcp-go server after construction (breaks the init cycle).
func (r *SessionRegistry) SetNotifier(n Notifier) {
	r.notifierMu.Lock()
	r.notifier = n
	r.notifierMu.Unlock()
}

func (r *SessionRegistry) Register(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		r.sessions[sessionID] = time.Now()
	}
}

// Unregister removes a session and reports whether it was known.
func (r *SessionRegistry) Unregister(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	return ok
}

func (r *SessionRegistry) IsConnected(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sessionID]
	return ok
}

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Broadcast pushes e to every open session. A failed send does not stop the
// remaining sends; all failures are joined.
func (r *SessionRegistry) Broadcast(_ context.Context, e event.Event) error {
	r.notifierMu.RLock()
	n := r.notifier
	r.notifierMu.RUnlock()
	if n == nil {
		return nil
	}

	params, err := toParams(e)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}

	r.mu.RLock()
	targets := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		targets = append(targets, id)
	}
	r.mu.RUnlock()

	var errs []error
	for _, id := range targets {
		if err := n.SendNotificationToSpecificClient(id, NotificationMethod, params); err != nil {
			errs = append(errs, fmt.Errorf("notify session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func toParams(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": v}, nil
	}
	return params, nil
}

var _ Notifier = (*mcpserver.MCPServer)(nil)
