package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/prompt-hub/internal/domain/event"
	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/domain/snapshot"
	portbus "github.com/alanyang/prompt-hub/internal/port/eventbus"
	portkv "github.com/alanyang/prompt-hub/internal/port/kv"
	portrating "github.com/alanyang/prompt-hub/internal/port/rating"
	portsearch "github.com/alanyang/prompt-hub/internal/port/search"
)

// Keys under which the workspace collections are mirrored.
const (
	KeyCustomPrompts = "custom-prompts"
	KeySavedPrompts  = "saved-prompts"
	KeyFolders       = "folders"
)

// Catalog supplies the system templates.
// [ISP] Only the two calls the library needs.
type Catalog interface {
	Load(ctx context.Context) []domainprompt.Prompt
	Refresh(ctx context.Context) []domainprompt.Prompt
}

// Tracker receives usage events.
type Tracker interface {
	Event(ctx context.Context, category, action, label string)
	TrackError(ctx context.Context, description string, fatal bool)
	TrackOrganization(ctx context.Context, action, itemType, itemName string)
	TrackPromptInteraction(ctx context.Context, action, promptID, promptTitle string)
}

type Config struct {
	// UserID is used for votes cast without an explicit user.
	UserID string
}

// Service owns the workspace state: system templates, local templates, saved
// prompts and folders. Every operation holds mu, so callers observe one
// mutation at a time. Events are published after mu is released; bus
// subscribers read the library back.
// [SRP] Derived views (categories, tags, search index) are rebuilt here and
// nowhere else.
// [DIP] Storage, ratings, search and events are all ports.
type Service struct {
	catalog Catalog
	kv      portkv.Store
	ratings portrating.Repository
	index   portsearch.Index
	bus     portbus.EventBus
	tracker Tracker
	userID  string
	now     func() time.Time

	mu         sync.Mutex
	system     []domainprompt.Prompt
	custom     []domainprompt.Prompt
	saved      []domainprompt.Prompt
	folders    []domainprompt.Folder
	categories []string
	tags       []string
}

// NewService wires the library. ratings and index may be nil: without
// ratings votes stay in memory, without an index Search falls back to
// substring filtering.
func NewService(
	catalog Catalog,
	kv portkv.Store,
	ratings portrating.Repository,
	index portsearch.Index,
	bus portbus.EventBus,
	tracker Tracker,
	cfg Config,
) *Service {
	if cfg.UserID == "" {
		cfg.UserID = domainprompt.AnonymousUser
	}
	return &Service{
		catalog:    catalog,
		kv:         kv,
		ratings:    ratings,
		index:      index,
		bus:        bus,
		tracker:    tracker,
		userID:     cfg.UserID,
		now:        time.Now,
		system:     []domainprompt.Prompt{},
		custom:     []domainprompt.Prompt{},
		saved:      []domainprompt.Prompt{},
		folders:    []domainprompt.Folder{},
		categories: []string{},
		tags:       []string{},
	}
}

// Load reads the catalog (cached) and the mirrored collections.
func (s *Service) Load(ctx context.Context) error {
	return s.reload(ctx, s.catalog.Load)
}

// Refresh is Load with the catalog cache bypassed.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.reload(ctx, s.catalog.Refresh); err != nil {
		return err
	}
	s.publish(ctx, event.TypeCatalogRefreshed, "")
	return nil
}

func (s *Service) reload(ctx context.Context, loadCatalog func(context.Context) []domainprompt.Prompt) error {
	system := loadCatalog(ctx)
	custom := readCollection[domainprompt.Prompt](ctx, s.kv, KeyCustomPrompts)
	saved := readCollection[domainprompt.Prompt](ctx, s.kv, KeySavedPrompts)
	folders := readCollection[domainprompt.Folder](ctx, s.kv, KeyFolders)

	if s.ratings != nil {
		s.applyUserRatings(ctx, system)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.system = system
	s.custom = custom
	s.saved = saved
	s.folders = folders
	if err := s.rebuildLocked(ctx); err != nil {
		s.tracker.TrackError(ctx, "Failed to load prompts", true)
		return fmt.Errorf("load library: %w", err)
	}
	return nil
}

// applyUserRatings sets UserRating on catalog rows the user has voted on.
// Catalog ids from the database are the numeric row ids.
func (s *Service) applyUserRatings(ctx context.Context, prompts []domainprompt.Prompt) {
	votes, err := s.ratings.UserRatings(ctx, s.userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load user ratings", "user_id", s.userID, "error", err)
		return
	}
	for i := range prompts {
		id, err := strconv.ParseInt(prompts[i].ID, 10, 64)
		if err != nil {
			continue
		}
		if v, ok := votes[id]; ok {
			prompts[i].UserRating = &v
		}
	}
}

func readCollection[T any](ctx context.Context, kv portkv.Store, key string) []T {
	out := []T{}
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, portkv.ErrNotFound) {
		return out
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to read collection", "key", key, "error", err)
		return out
	}
	var parsed []T
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		slog.WarnContext(ctx, "discarding unreadable collection", "key", key, "error", err)
		return out
	}
	if parsed == nil {
		return out
	}
	return parsed
}

func encodeCollection[T any](key string, items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", key, err)
	}
	return string(raw), nil
}

func writeCollection[T any](ctx context.Context, kv portkv.Store, key string, items []T) error {
	raw, err := encodeCollection(key, items)
	if err != nil {
		return err
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// writeEncoded stores several encoded collections in one atomic write.
func writeEncoded(ctx context.Context, kv portkv.Store, entries map[string]string) error {
	if err := kv.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("store collections: %w", err)
	}
	return nil
}

// combinedLocked is the system templates, then local templates, then saved
// prompts.
func (s *Service) combinedLocked() []domainprompt.Prompt {
	all := make([]domainprompt.Prompt, 0, len(s.system)+len(s.custom)+len(s.saved))
	all = append(all, s.system...)
	all = append(all, s.custom...)
	return append(all, s.saved...)
}

func (s *Service) rebuildLocked(ctx context.Context) error {
	all := s.combinedLocked()
	s.categories = domainprompt.Categories(all)
	s.tags = domainprompt.Tags(all)
	if s.index == nil {
		return nil
	}
	if err := s.index.Rebuild(ctx, all); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}
	return nil
}

// refreshViewsLocked rebuilds the derived views after a mutation. The change
// itself is already persisted, so an index failure is only logged.
func (s *Service) refreshViewsLocked(ctx context.Context) {
	if err := s.rebuildLocked(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to rebuild derived views", "error", err)
	}
}

func (s *Service) publish(ctx context.Context, t event.Type, entityID string) {
	if err := s.bus.Publish(ctx, event.New(t, entityID)); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "type", t, "entity_id", entityID, "error", err)
	}
}

// ── Read side ────────────────────────────────────────────────────────────────

func (s *Service) Prompts() []domainprompt.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainprompt.CloneAll(s.combinedLocked())
}

func (s *Service) SavedPrompts() []domainprompt.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainprompt.CloneAll(s.saved)
}

// CustomPrompts returns the local templates.
func (s *Service) CustomPrompts() []domainprompt.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainprompt.CloneAll(s.custom)
}

func (s *Service) Folders() []domainprompt.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.folders)
}

func (s *Service) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

func (s *Service) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tags)
}

// AllSavedTags returns the sorted, unique tags of saved prompts.
func (s *Service) AllSavedTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainprompt.Tags(s.saved)
}

func (s *Service) Prompt(id string) (domainprompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := domainprompt.FindByID(s.combinedLocked(), id)
	if !ok {
		return domainprompt.Prompt{}, fmt.Errorf("get prompt %q: %w", id, domainprompt.ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *Service) Filter(f domainprompt.Filter) []domainprompt.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domainprompt.CloneAll(f.Apply(s.combinedLocked()))
}

// Search runs a full-text query over the combined list, best match first.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]domainprompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.combinedLocked()
	if s.index == nil {
		hits := domainprompt.Filter{Search: query}.Apply(all)
		if limit > 0 && len(hits) > limit {
			hits = hits[:limit]
		}
		return domainprompt.CloneAll(hits), nil
	}

	ids, err := s.index.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search prompts: %w", err)
	}
	out := make([]domainprompt.Prompt, 0, len(ids))
	for _, id := range ids {
		if p, ok := domainprompt.FindByID(all, id); ok {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *Service) ExtractVariables(content string) []domainprompt.Variable {
	return domainprompt.ExtractVariables(content)
}

// Render substitutes values into the content of prompt id.
func (s *Service) Render(id string, values map[string]string) (string, error) {
	p, err := s.Prompt(id)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return domainprompt.Render(p.Content, values), nil
}

// ── Saved prompts ────────────────────────────────────────────────────────────

// SavePrompt stores p as a saved prompt, replacing any saved prompt with the
// same id.
func (s *Service) SavePrompt(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	out, err := s.savePrompt(ctx, p)
	if err != nil {
		return domainprompt.Prompt{}, err
	}
	s.publish(ctx, event.TypePromptSaved, out.ID)
	return out, nil
}

func (s *Service) savePrompt(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = normalize(p.Clone())
	if p.ID == "" {
		p.ID = domainprompt.SavedIDPrefix + uuid.NewString()
	}
	if p.CreatedAt == "" {
		p.CreatedAt = domainprompt.Timestamp(s.now())
	}
	p.Type = domainprompt.TypeLocal

	next := slices.Clone(s.saved)
	if i := indexOf(next, p.ID); i >= 0 {
		next[i] = p
	} else {
		next = append(next, p)
	}
	if err := writeCollection(ctx, s.kv, KeySavedPrompts, next); err != nil {
		s.tracker.TrackError(ctx, "Failed to save prompt", false)
		return domainprompt.Prompt{}, fmt.Errorf("save prompt: %w", err)
	}
	s.saved = next
	s.refreshViewsLocked(ctx)

	s.tracker.TrackPromptInteraction(ctx, "save", p.ID, p.Title)
	return p.Clone(), nil
}

// UpdateSavedPrompt replaces the saved prompt with p's id.
func (s *Service) UpdateSavedPrompt(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	out, err := s.updateSavedPrompt(ctx, p)
	if err != nil {
		return domainprompt.Prompt{}, err
	}
	s.publish(ctx, event.TypePromptUpdated, out.ID)
	return out, nil
}

func (s *Service) updateSavedPrompt(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.saved, p.ID)
	if i < 0 {
		return domainprompt.Prompt{}, fmt.Errorf("update saved prompt %q: %w", p.ID, domainprompt.ErrNotFound)
	}
	p = normalize(p.Clone())
	p.Type = domainprompt.TypeLocal
	if p.CreatedAt == "" {
		p.CreatedAt = s.saved[i].CreatedAt
	}

	next := slices.Clone(s.saved)
	next[i] = p
	if err := writeCollection(ctx, s.kv, KeySavedPrompts, next); err != nil {
		s.tracker.TrackError(ctx, "Failed to update prompt", false)
		return domainprompt.Prompt{}, fmt.Errorf("update saved prompt: %w", err)
	}
	s.saved = next
	s.refreshViewsLocked(ctx)

	return p.Clone(), nil
}

func (s *Service) RemoveSavedPrompt(ctx context.Context, id string) error {
	if err := s.removeSavedPrompt(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, event.TypePromptRemoved, id)
	return nil
}

func (s *Service) removeSavedPrompt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.saved, id)
	if i < 0 {
		return fmt.Errorf("remove saved prompt %q: %w", id, domainprompt.ErrNotFound)
	}
	next := slices.Delete(slices.Clone(s.saved), i, i+1)
	if err := writeCollection(ctx, s.kv, KeySavedPrompts, next); err != nil {
		s.tracker.TrackError(ctx, "Failed to remove prompt", false)
		return fmt.Errorf("remove saved prompt: %w", err)
	}
	s.saved = next
	s.refreshViewsLocked(ctx)

	return nil
}

// ── Folders ──────────────────────────────────────────────────────────────────

func (s *Service) CreateFolder(ctx context.Context, name string) (domainprompt.Folder, error) {
	out, err := s.createFolder(ctx, name)
	if err != nil {
		return domainprompt.Folder{}, err
	}
	s.publish(ctx, event.TypeFolderCreated, out.ID)
	return out, nil
}

func (s *Service) createFolder(ctx context.Context, name string) (domainprompt.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return domainprompt.Folder{}, fmt.Errorf("create folder: %w: name is required", domainprompt.ErrInvalidInput)
	}
	for _, f := range s.folders {
		if f.Name == name {
			return domainprompt.Folder{}, fmt.Errorf("create folder %q: %w", name, domainprompt.ErrFolderExists)
		}
	}

	f := domainprompt.Folder{ID: uuid.NewString(), Name: name, CreatedAt: domainprompt.Timestamp(s.now())}
	next := append(slices.Clone(s.folders), f)
	if err := writeCollection(ctx, s.kv, KeyFolders, next); err != nil {
		s.tracker.TrackError(ctx, "Failed to create folder", false)
		return domainprompt.Folder{}, fmt.Errorf("create folder: %w", err)
	}
	s.folders = next

	s.tracker.TrackOrganization(ctx, "create_folder", "folder", name)
	return f, nil
}

// DeleteFolder removes the folder and clears it from every saved prompt that
// referenced it. No prompt is deleted.
func (s *Service) DeleteFolder(ctx context.Context, id string) error {
	if err := s.deleteFolder(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, event.TypeFolderDeleted, id)
	return nil
}

func (s *Service) deleteFolder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.folders, func(f domainprompt.Folder) bool { return f.ID == id })
	if i < 0 {
		return fmt.Errorf("delete folder %q: %w", id, domainprompt.ErrFolderNotFound)
	}
	name := s.folders[i].Name
	folders := slices.Delete(slices.Clone(s.folders), i, i+1)

	saved := domainprompt.CloneAll(s.saved)
	for j := range saved {
		if saved[j].Folder == id {
			saved[j].Folder = ""
		}
	}

	rawFolders, err := encodeCollection(KeyFolders, folders)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	rawSaved, err := encodeCollection(KeySavedPrompts, saved)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if err := writeEncoded(ctx, s.kv, map[string]string{KeyFolders: rawFolders, KeySavedPrompts: rawSaved}); err != nil {
		s.tracker.TrackError(ctx, "Failed to delete folder", false)
		return fmt.Errorf("delete folder: %w", err)
	}
	s.folders = folders
	s.saved = saved

	s.tracker.TrackOrganization(ctx, "delete_folder", "folder", name)
	return nil
}

// MovePromptToFolder files a saved prompt. An empty folderID clears it.
func (s *Service) MovePromptToFolder(ctx context.Context, promptID, folderID string) (domainprompt.Prompt, error) {
	out, err := s.movePromptToFolder(ctx, promptID, folderID)
	if err != nil {
		return domainprompt.Prompt{}, err
	}
	s.publish(ctx, event.TypePromptMoved, promptID)
	return out, nil
}

func (s *Service) movePromptToFolder(ctx context.Context, promptID, folderID string) (domainprompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.saved, promptID)
	if i < 0 {
		return domainprompt.Prompt{}, fmt.Errorf("move prompt %q: %w", promptID, domainprompt.ErrNotFound)
	}
	folderName := ""
	if folderID != "" {
		j := slices.IndexFunc(s.folders, func(f domainprompt.Folder) bool { return f.ID == folderID })
		if j < 0 {
			return domainprompt.Prompt{}, fmt.Errorf("move prompt to %q: %w", folderID, domainprompt.ErrFolderNotFound)
		}
		folderName = s.folders[j].Name
	}

	next := slices.Clone(s.saved)
	next[i] = next[i].Clone()
	next[i].Folder = folderID
	if err := writeCollection(ctx, s.kv, KeySavedPrompts, next); err != nil {
		s.tracker.TrackError(ctx, "Failed to move prompt", false)
		return domainprompt.Prompt{}, fmt.Errorf("move prompt: %w", err)
	}
	s.saved = next

	if folderName != "" {
		s.tracker.TrackOrganization(ctx, "move_prompt", "prompt", next[i].Title+" to "+folderName)
	}
	return next[i].Clone(), nil
}

// ── Local templates ─────────────────────────────────────────────────────────

// CreateTemplate adds a local template. Variables are detected from the
// content when none are given.
func (s *Service) CreateTemplate(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	out, err := s.createTemplate(ctx, p)
	if err != nil {
		return domainprompt.Prompt{}, err
	}
	s.publish(ctx, event.TypeTemplateCreated, out.ID)
	return out, nil
}

func (s *Service) createTemplate(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = normalize(p.Clone())
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
		return domainprompt.Prompt{}, fmt.Errorf("create template: %w: title and content are required", domainprompt.ErrInvalidInput)
	}
	if p.ID == "" {
		p.ID = domainprompt.CustomIDPrefix + uuid.NewString()
	}
	if _, exists := domainprompt.FindByID(s.combinedLocked(), p.ID); exists {
		return domainprompt.Prompt{}, fmt.Errorf("create template: %w: id %q is taken", domainprompt.ErrInvalidInput, p.ID)
	}
	if len(p.Variables) == 0 {
		p.Variables = domainprompt.ExtractVariables(p.Content)
	}
	if err := domainprompt.ValidateVariables(p.Variables); err != nil {
		return domainprompt.Prompt{}, fmt.Errorf("create template: %w", err)
	}
	p.CreatedAt = domainprompt.Timestamp(s.now())
	p.Type = domainprompt.TypeLocalTemplate

	next := append(slices.Clone(s.custom), p)
	if err := writeCollection(ctx, s.kv, KeyCustomPrompts, next); err != nil {
		s.tracker.TrackError(ctx, "Failed to create prompt template", false)
		return domainprompt.Prompt{}, fmt.Errorf("create template: %w", err)
	}
	s.custom = next
	s.refreshViewsLocked(ctx)

	s.tracker.Event(ctx, "Prompt", "create_template", p.Title)
	return p.Clone(), nil
}

// UpdateTemplate replaces a local template. System templates are immutable.
func (s *Service) UpdateTemplate(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	out, err := s.updateTemplate(ctx, p)
	if err != nil {
		return domainprompt.Prompt{}, err
	}
	s.publish(ctx, event.TypeTemplateUpdated, out.ID)
	return out, nil
}

func (s *Service) updateTemplate(ctx context.Context, p domainprompt.Prompt) (domainprompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.system, p.ID) >= 0 {
		return domainprompt.Prompt{}, fmt.Errorf("update template %q: %w", p.ID, domainprompt.ErrImmutable)
	}
	i := indexOf(s.custom, p.ID)
	if i < 0 {
		return domainprompt.Prompt{}, fmt.Errorf("update template %q: %w", p.ID, domainprompt.ErrNotFound)
	}
	p = normalize(p.Clone())
	if len(p.Variables) == 0 {
		p.Variables = domainprompt.ExtractVariables(p.Content)
	}
	if err := domainprompt.ValidateVariables(p.Variables); err != nil {
		return domainprompt.Prompt{}, fmt.Errorf("update template: %w", err)
	}
	p.CreatedAt = s.custom[i].CreatedAt
	p.Type = domainprompt.TypeLocalTemplate

	next := slices.Clone(s.custom)
	next[i] = p
	if err := writeCollection(ctx, s.kv, KeyCustomPrompts, next); err != nil {
		s.tracker.TrackError(ctx, "Failed to update prompt template", false)
		return domainprompt.Prompt{}, fmt.Errorf("update template: %w", err)
	}
	s.custom = next
	s.refreshViewsLocked(ctx)

	s.tracker.Event(ctx, "Prompt", "update_template", p.Title)
	return p.Clone(), nil
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.deleteTemplate(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, event.TypeTemplateDeleted, id)
	return nil
}

func (s *Service) deleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.system, id) >= 0 {
		return fmt.Errorf("delete template %q: %w", id, domainprompt.ErrImmutable)
	}
	i := indexOf(s.custom, id)
	if i < 0 {
		return fmt.Errorf("delete template %q: %w", id, domainprompt.ErrNotFound)
	}
	title := s.custom[i].Title
	next := slices.Delete(slices.Clone(s.custom), i, i+1)
	if err := writeCollection(ctx, s.kv, KeyCustomPrompts, next); err != nil {
		s.tracker.TrackError(ctx, "Failed to delete prompt template", false)
		return fmt.Errorf("delete template: %w", err)
	}
	s.custom = next
	s.refreshViewsLocked(ctx)

	s.tracker.Event(ctx, "Prompt", "delete_template", title)
	return nil
}

// ── Ratings ──────────────────────────────────────────────────────────────────

// Rate records a vote. The in-memory counters change first; when the prompt
// has a database row the vote is written and the counters are replaced by the
// recount. A failed write restores the previous counters.
func (s *Service) Rate(ctx context.Context, id string, positive bool, userID string) (domainprompt.Prompt, error) {
	out, err := s.rate(ctx, id, positive, userID)
	if err != nil {
		return domainprompt.Prompt{}, err
	}
	s.publish(ctx, event.TypePromptRated, id)
	return out, nil
}

func (s *Service) rate(ctx context.Context, id string, positive bool, userID string) (domainprompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == "" {
		userID = s.userID
	}
	list, i := s.locateLocked(id)
	if list == nil {
		return domainprompt.Prompt{}, fmt.Errorf("rate prompt %q: %w", id, domainprompt.ErrNotFound)
	}
	previous := (*list)[i]
	updated := domainprompt.ApplyVote(previous, positive)
	(*list)[i] = updated

	if s.ratings != nil {
		counts, err := s.voteRemote(ctx, id, userID, positive)
		if err != nil {
			(*list)[i] = previous
			s.tracker.TrackError(ctx, "Failed to rate prompt", false)
			return domainprompt.Prompt{}, fmt.Errorf("rate prompt: %w", err)
		}
		if counts != nil {
			updated = updated.WithCounts(*counts)
			(*list)[i] = updated
		}
	}

	if err := s.persistOwnerLocked(ctx, list); err != nil {
		(*list)[i] = previous
		return domainprompt.Prompt{}, fmt.Errorf("rate prompt: %w", err)
	}

	action := "rate_negative"
	if positive {
		action = "rate_positive"
	}
	s.tracker.TrackPromptInteraction(ctx, action, id, updated.Title)
	return updated.Clone(), nil
}

// voteRemote returns nil counts when the prompt has no database row, so the
// optimistic vote stands.
func (s *Service) voteRemote(ctx context.Context, id, userID string, positive bool) (*domainprompt.Counts, error) {
	rowID, ok, err := s.ratings.ResolveID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve prompt id: %w", err)
	}
	if !ok {
		return nil, nil
	}
	counts, err := s.ratings.Vote(ctx, rowID, userID, positive)
	if errors.Is(err, domainprompt.ErrNotFound) {
		// The catalog was served without this row, e.g. from the bundled file.
		slog.WarnContext(ctx, "rated prompt has no database row", "prompt_id", id, "row_id", rowID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record vote: %w", err)
	}
	return &counts, nil
}

func (s *Service) locateLocked(id string) (*[]domainprompt.Prompt, int) {
	for _, list := range []*[]domainprompt.Prompt{&s.system, &s.custom, &s.saved} {
		if i := indexOf(*list, id); i >= 0 {
			return list, i
		}
	}
	return nil, -1
}

// persistOwnerLocked mirrors the collection list belongs to. System
// templates are not mirrored.
func (s *Service) persistOwnerLocked(ctx context.Context, list *[]domainprompt.Prompt) error {
	switch list {
	case &s.custom:
		return writeCollection(ctx, s.kv, KeyCustomPrompts, *list)
	case &s.saved:
		return writeCollection(ctx, s.kv, KeySavedPrompts, *list)
	}
	return nil
}

// ── Snapshots ────────────────────────────────────────────────────────────────

// Snapshot captures saved prompts, local templates and folders.
func (s *Service) Snapshot() snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.New(s.saved, s.custom, s.folders, s.now())
}

// ReplaceAll swaps the local collections for those in snap. System templates
// are kept.
func (s *Service) ReplaceAll(ctx context.Context, snap snapshot.Snapshot) error {
	if err := s.replaceAll(ctx, snap); err != nil {
		return err
	}
	s.publish(ctx, event.TypeLibraryImported, "")
	return nil
}

func (s *Service) replaceAll(ctx context.Context, snap snapshot.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	custom := domainprompt.CloneAll(snap.CustomPrompts)
	for i := range custom {
		custom[i] = normalize(custom[i])
		custom[i].Type = domainprompt.TypeLocalTemplate
	}
	saved := domainprompt.CloneAll(snap.SavedPrompts)
	for i := range saved {
		saved[i] = normalize(saved[i])
		saved[i].Type = domainprompt.TypeLocal
	}
	folders := append([]domainprompt.Folder{}, snap.Folders...)

	entries := make(map[string]string, 3)
	var err error
	if entries[KeyCustomPrompts], err = encodeCollection(KeyCustomPrompts, custom); err != nil {
		return fmt.Errorf("replace library: %w", err)
	}
	if entries[KeySavedPrompts], err = encodeCollection(KeySavedPrompts, saved); err != nil {
		return fmt.Errorf("replace library: %w", err)
	}
	if entries[KeyFolders], err = encodeCollection(KeyFolders, folders); err != nil {
		return fmt.Errorf("replace library: %w", err)
	}
	if err := writeEncoded(ctx, s.kv, entries); err != nil {
		return fmt.Errorf("replace library: %w", err)
	}
	s.custom = custom
	s.saved = saved
	s.folders = folders
	s.refreshViewsLocked(ctx)

	return nil
}

func indexOf(prompts []domainprompt.Prompt, id string) int {
	return slices.IndexFunc(prompts, func(p domainprompt.Prompt) bool { return p.ID == id })
}

// normalize replaces nil slices so stored documents always carry arrays.
func normalize(p domainprompt.Prompt) domainprompt.Prompt {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Variables == nil {
		p.Variables = []domainprompt.Variable{}
	}
	return p
}
