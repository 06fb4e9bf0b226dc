package library_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/prompt-hub/internal/adapter/bleveindex"
	"github.com/alanyang/prompt-hub/internal/adapter/memory"
	"github.com/alanyang/prompt-hub/internal/domain/event"
	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/mocks"
	portbus "github.com/alanyang/prompt-hub/internal/port/eventbus"
	portkv "github.com/alanyang/prompt-hub/internal/port/kv"
	portrating "github.com/alanyang/prompt-hub/internal/port/rating"
	portsearch "github.com/alanyang/prompt-hub/internal/port/search"
	"github.com/alanyang/prompt-hub/internal/service/analytics"
	catalogsvc "github.com/alanyang/prompt-hub/internal/service/catalog"
	"github.com/alanyang/prompt-hub/internal/service/library"
	"github.com/alanyang/prompt-hub/internal/testutil"
)

// ── helpers ───────────────────────────────────────────────────────────────────

var systemPrompts = []domainprompt.Prompt{
	{ID: "1", Title: "Literature Review", Category: "Research", Content: "Review {topic} since {year}", Tags: []string{"review"}},
	{ID: "2", Title: "Grant Proposal", Category: "Writing", Content: "Draft a grant for {field}", Tags: []string{"funding"}},
}

type fixture struct {
	svc     *library.Service
	kv      portkv.Store
	events  *testutil.EventRecorder
	ratings *mocks.MockRatingRepository
}

type options struct {
	kv      portkv.Store
	ratings bool
	index   portsearch.Index
	// bus replaces the recorder when set.
	bus portbus.EventBus
}

func newLibrary(t *testing.T, opts options) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	source := mocks.NewMockCatalogSource(ctrl)
	source.EXPECT().Load(gomock.Any(), "en").Return(domainprompt.CloneAll(systemPrompts), nil).AnyTimes()
	catalog := catalogsvc.NewService(nil, source, memory.NewCache(), catalogsvc.Config{})

	kv := opts.kv
	if kv == nil {
		kv = memory.NewKV()
	}
	f := fixture{kv: kv, events: &testutil.EventRecorder{}}
	var ratings portrating.Repository
	if opts.ratings {
		f.ratings = mocks.NewMockRatingRepository(ctrl)
		ratings = f.ratings
	}
	var bus portbus.EventBus = f.events
	if opts.bus != nil {
		bus = opts.bus
	}
	tracker := analytics.NewService(memory.NewKV(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc = library.NewService(catalog, kv, ratings, opts.index, bus, tracker, library.Config{})
	return f
}

func (f fixture) stored(t *testing.T, key string, out any) {
	t.Helper()
	raw, err := f.kv.Get(context.Background(), key)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(raw), out))
}

func ids(prompts []domainprompt.Prompt) []string {
	out := make([]string, len(prompts))
	for i, p := range prompts {
		out[i] = p.ID
	}
	return out
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_CombinesCatalogTemplatesAndSaved(t *testing.T) {
	kv := memory.NewKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, library.KeyCustomPrompts, `[{"id":"custom-a","title":"Mine","category":"Personal","tags":["own"]}]`))
	require.NoError(t, kv.Set(ctx, library.KeySavedPrompts, `[{"id":"saved-a","title":"Filled","category":"Research","tags":["kept"]}]`))
	require.NoError(t, kv.Set(ctx, library.KeyFolders, `[{"id":"f1","name":"Work","createdAt":"2026-01-01T00:00:00.000Z"}]`))

	f := newLibrary(t, options{kv: kv})
	require.NoError(t, f.svc.Load(ctx))

	assert.Equal(t, []string{"1", "2", "custom-a", "saved-a"}, ids(f.svc.Prompts()))
	assert.Equal(t, []string{"Research", "Writing", "Personal"}, f.svc.Categories())
	assert.Equal(t, []string{"funding", "kept", "own", "review"}, f.svc.Tags())
	assert.Equal(t, []string{"saved-a"}, ids(f.svc.SavedPrompts()))
	assert.Equal(t, []string{"custom-a"}, ids(f.svc.CustomPrompts()))
	require.Len(t, f.svc.Folders(), 1)
	assert.Equal(t, "Work", f.svc.Folders()[0].Name)
}

func TestLoad_UnreadableCollectionBecomesEmpty(t *testing.T) {
	kv := memory.NewKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, library.KeySavedPrompts, `{not json`))
	require.NoError(t, kv.Set(ctx, library.KeyFolders, `null`))

	f := newLibrary(t, options{kv: kv})
	require.NoError(t, f.svc.Load(ctx))

	assert.NotNil(t, f.svc.SavedPrompts())
	assert.Empty(t, f.svc.SavedPrompts())
	assert.Empty(t, f.svc.Folders())
	assert.Len(t, f.svc.Prompts(), 2)
}

func TestLoad_AppliesUserRatings(t *testing.T) {
	f := newLibrary(t, options{ratings: true})
	f.ratings.EXPECT().UserRatings(gomock.Any(), domainprompt.AnonymousUser).Return(map[int64]bool{2: false}, nil)

	require.NoError(t, f.svc.Load(context.Background()))

	p1, err := f.svc.Prompt("1")
	require.NoError(t, err)
	assert.Nil(t, p1.UserRating)
	p2, err := f.svc.Prompt("2")
	require.NoError(t, err)
	require.NotNil(t, p2.UserRating)
	assert.False(t, *p2.UserRating)
}

func TestRefresh_PublishesCatalogRefreshed(t *testing.T) {
	f := newLibrary(t, options{})
	require.NoError(t, f.svc.Refresh(context.Background()))
	last, ok := f.events.Last()
	require.True(t, ok)
	assert.Equal(t, event.TypeCatalogRefreshed, last.Type)
}

// ── Read side ────────────────────────────────────────────────────────────────

func TestPrompt_NotFound(t *testing.T) {
	f := newLibrary(t, options{})
	require.NoError(t, f.svc.Load(context.Background()))
	_, err := f.svc.Prompt("missing")
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)
}

func TestFilter(t *testing.T) {
	f := newLibrary(t, options{})
	require.NoError(t, f.svc.Load(context.Background()))

	got := f.svc.Filter(domainprompt.Filter{Category: "Writing"})
	assert.Equal(t, []string{"2"}, ids(got))
	got = f.svc.Filter(domainprompt.Filter{Search: "LITERATURE"})
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestSearch_WithIndex(t *testing.T) {
	idx, err := bleveindex.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	f := newLibrary(t, options{index: idx})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	got, err := f.svc.Search(ctx, "grant", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "2", got[0].ID)

	// Newly created templates are searchable without a reload.
	_, err = f.svc.CreateTemplate(ctx, domainprompt.Prompt{Title: "Hypothesis Generator", Content: "Ideas about {subject}"})
	require.NoError(t, err)
	got, err = f.svc.Search(ctx, "hypothesis", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hypothesis Generator", got[0].Title)
}

func TestSearch_WithoutIndexFallsBackToSubstring(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	got, err := f.svc.Search(ctx, "review", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestRender(t *testing.T) {
	f := newLibrary(t, options{})
	require.NoError(t, f.svc.Load(context.Background()))

	out, err := f.svc.Render("1", map[string]string{"topic": "CRISPR"})
	require.NoError(t, err)
	assert.Equal(t, "Review CRISPR since {year}", out)

	_, err = f.svc.Render("nope", nil)
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)
}

// ── Saved prompts ────────────────────────────────────────────────────────────

func TestSavePrompt_AssignsIDAndMirrors(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	saved, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "Filled", Content: "Review CRISPR", Type: domainprompt.TypeSystemTemplate, OriginalPromptID: "1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.ID, domainprompt.SavedIDPrefix))
	assert.Equal(t, domainprompt.TypeLocal, saved.Type)
	assert.NotEmpty(t, saved.CreatedAt)
	assert.NotNil(t, saved.Tags)

	var stored []domainprompt.Prompt
	f.stored(t, library.KeySavedPrompts, &stored)
	require.Len(t, stored, 1)
	assert.Equal(t, saved.ID, stored[0].ID)
	assert.Equal(t, []event.Type{event.TypePromptSaved}, f.events.Types())

	// Saving again with the same id replaces.
	saved.Title = "Refiled"
	_, err = f.svc.SavePrompt(ctx, saved)
	require.NoError(t, err)
	require.Len(t, f.svc.SavedPrompts(), 1)
	assert.Equal(t, "Refiled", f.svc.SavedPrompts()[0].Title)
}

func TestUpdateSavedPrompt(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	_, err := f.svc.UpdateSavedPrompt(ctx, domainprompt.Prompt{ID: "saved-missing"})
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)

	saved, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "A"})
	require.NoError(t, err)
	updated, err := f.svc.UpdateSavedPrompt(ctx, domainprompt.Prompt{ID: saved.ID, Title: "B"})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)
}

func TestRemoveSavedPrompt(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	saved, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "A"})
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveSavedPrompt(ctx, saved.ID))
	assert.Empty(t, f.svc.SavedPrompts())

	// The emptied collection is still mirrored.
	var stored []domainprompt.Prompt
	f.stored(t, library.KeySavedPrompts, &stored)
	assert.Empty(t, stored)

	assert.ErrorIs(t, f.svc.RemoveSavedPrompt(ctx, saved.ID), domainprompt.ErrNotFound)
}

func TestAllSavedTags(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	_, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "A", Tags: []string{"zeta", "alpha"}})
	require.NoError(t, err)
	_, err = f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "B", Tags: []string{"alpha", "mid"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, f.svc.AllSavedTags())
}

func TestSavePrompt_StoreFailureLeavesStateUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mocks.NewMockKVStore(ctrl)
	kv.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", portkv.ErrNotFound).AnyTimes()
	kv.EXPECT().Set(gomock.Any(), library.KeySavedPrompts, gomock.Any()).Return(errors.New("disk full"))

	f := newLibrary(t, options{kv: kv})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	_, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "A"})
	require.Error(t, err)
	assert.Empty(t, f.svc.SavedPrompts())
	assert.Empty(t, f.events.Types())
}

// failingBatchKV stores single keys but rejects every multi-key write.
type failingBatchKV struct {
	*memory.KV
}

func (failingBatchKV) SetMany(context.Context, map[string]string) error {
	return errors.New("disk full")
}

func TestMutations_SubscriberCanReadBackUnderBackPressure(t *testing.T) {
	bus := memory.NewEventBus()
	f := newLibrary(t, options{bus: bus})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	subCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	release := make(chan struct{})
	var handled atomic.Int32
	_, err := bus.Subscribe(subCtx, event.ChannelLibrary, func(context.Context, event.Event) {
		if handled.Add(1) == 1 {
			<-release
		}
		_ = f.svc.Prompts()
	})
	require.NoError(t, err)

	const n = 70 // more than one subscriber buffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			_, err := f.svc.CreateTemplate(ctx, domainprompt.Prompt{Title: fmt.Sprintf("T%d", i), Content: "x"})
			assert.NoError(t, err)
		}
	}()
	time.AfterFunc(200*time.Millisecond, func() { close(release) })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("library stalled while the subscriber was reading it back")
	}
	assert.Eventually(t, func() bool { return handled.Load() == n }, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, f.svc.CustomPrompts(), n)
}

// ── Folders ──────────────────────────────────────────────────────────────────

func TestCreateFolder(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	folder, err := f.svc.CreateFolder(ctx, "  Work ")
	require.NoError(t, err)
	assert.Equal(t, "Work", folder.Name)
	assert.NotEmpty(t, folder.ID)

	_, err = f.svc.CreateFolder(ctx, "Work")
	assert.ErrorIs(t, err, domainprompt.ErrFolderExists)
	_, err = f.svc.CreateFolder(ctx, "   ")
	assert.ErrorIs(t, err, domainprompt.ErrInvalidInput)

	var stored []domainprompt.Folder
	f.stored(t, library.KeyFolders, &stored)
	assert.Equal(t, []domainprompt.Folder{folder}, stored)
}

func TestDeleteFolder_ClearsReferencesAndKeepsPrompts(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	work, err := f.svc.CreateFolder(ctx, "Work")
	require.NoError(t, err)
	home, err := f.svc.CreateFolder(ctx, "Home")
	require.NoError(t, err)
	a, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "A", Folder: work.ID})
	require.NoError(t, err)
	b, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "B", Folder: work.ID})
	require.NoError(t, err)
	c, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "C", Folder: home.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteFolder(ctx, work.ID))

	saved := f.svc.SavedPrompts()
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(saved))
	assert.Empty(t, saved[0].Folder)
	assert.Empty(t, saved[1].Folder)
	assert.Equal(t, home.ID, saved[2].Folder)
	assert.Equal(t, []domainprompt.Folder{home}, f.svc.Folders())

	var stored []domainprompt.Prompt
	f.stored(t, library.KeySavedPrompts, &stored)
	assert.Empty(t, stored[0].Folder)

	assert.ErrorIs(t, f.svc.DeleteFolder(ctx, work.ID), domainprompt.ErrFolderNotFound)
}

func TestDeleteFolder_StoreFailureKeepsFolderAndReferences(t *testing.T) {
	kv := failingBatchKV{memory.NewKV()}
	f := newLibrary(t, options{kv: kv})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	work, err := f.svc.CreateFolder(ctx, "Work")
	require.NoError(t, err)
	p, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "A", Folder: work.ID})
	require.NoError(t, err)

	require.Error(t, f.svc.DeleteFolder(ctx, work.ID))
	assert.Equal(t, []domainprompt.Folder{work}, f.svc.Folders())
	assert.Equal(t, work.ID, f.svc.SavedPrompts()[0].Folder)

	reloaded := newLibrary(t, options{kv: kv})
	require.NoError(t, reloaded.svc.Load(ctx))
	assert.Equal(t, []domainprompt.Folder{work}, reloaded.svc.Folders())
	require.Len(t, reloaded.svc.SavedPrompts(), 1)
	assert.Equal(t, p.ID, reloaded.svc.SavedPrompts()[0].ID)
	assert.Equal(t, work.ID, reloaded.svc.SavedPrompts()[0].Folder)
}

func TestMovePromptToFolder(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	folder, err := f.svc.CreateFolder(ctx, "Work")
	require.NoError(t, err)
	p, err := f.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "A"})
	require.NoError(t, err)

	moved, err := f.svc.MovePromptToFolder(ctx, p.ID, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, moved.Folder)

	cleared, err := f.svc.MovePromptToFolder(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Empty(t, cleared.Folder)

	_, err = f.svc.MovePromptToFolder(ctx, p.ID, "no-such-folder")
	assert.ErrorIs(t, err, domainprompt.ErrFolderNotFound)
	_, err = f.svc.MovePromptToFolder(ctx, "saved-nope", folder.ID)
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)
}

// ── Local templates ─────────────────────────────────────────────────────────

func TestCreateTemplate_DetectsVariables(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	tpl, err := f.svc.CreateTemplate(ctx, domainprompt.Prompt{Title: "Mine", Category: "Personal", Content: "Summarize {paper_title} for {audience}", Tags: []string{"own"}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(tpl.ID, domainprompt.CustomIDPrefix))
	assert.Equal(t, domainprompt.TypeLocalTemplate, tpl.Type)
	require.Len(t, tpl.Variables, 2)
	assert.Equal(t, "Paper Title", tpl.Variables[0].Name)
	assert.Contains(t, f.svc.Categories(), "Personal")
	assert.Contains(t, f.svc.Tags(), "own")

	var stored []domainprompt.Prompt
	f.stored(t, library.KeyCustomPrompts, &stored)
	assert.Equal(t, []string{tpl.ID}, ids(stored))
}

func TestCreateTemplate_Rejects(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	_, err := f.svc.CreateTemplate(ctx, domainprompt.Prompt{Title: "No content"})
	assert.ErrorIs(t, err, domainprompt.ErrInvalidInput)

	_, err = f.svc.CreateTemplate(ctx, domainprompt.Prompt{ID: "1", Title: "Clash", Content: "x"})
	assert.ErrorIs(t, err, domainprompt.ErrInvalidInput)

	_, err = f.svc.CreateTemplate(ctx, domainprompt.Prompt{
		Title: "Bad", Content: "{x}",
		Variables: []domainprompt.Variable{{ID: "x", Type: "checkbox"}},
	})
	assert.ErrorIs(t, err, domainprompt.ErrInvalidVariableKind)
	assert.Empty(t, f.svc.CustomPrompts())
}

func TestUpdateTemplate(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	_, err := f.svc.UpdateTemplate(ctx, domainprompt.Prompt{ID: "1", Title: "Hijack"})
	assert.ErrorIs(t, err, domainprompt.ErrImmutable)
	_, err = f.svc.UpdateTemplate(ctx, domainprompt.Prompt{ID: "custom-missing"})
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)

	tpl, err := f.svc.CreateTemplate(ctx, domainprompt.Prompt{Title: "Mine", Content: "{a}"})
	require.NoError(t, err)
	updated, err := f.svc.UpdateTemplate(ctx, domainprompt.Prompt{ID: tpl.ID, Title: "Renamed", Content: "{b}"})
	require.NoError(t, err)
	assert.Equal(t, tpl.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "b", updated.Variables[0].ID)

	// The updated template itself is what gets persisted.
	var stored []domainprompt.Prompt
	f.stored(t, library.KeyCustomPrompts, &stored)
	require.Len(t, stored, 1)
	assert.Equal(t, "Renamed", stored[0].Title)
}

func TestDeleteTemplate(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	assert.ErrorIs(t, f.svc.DeleteTemplate(ctx, "2"), domainprompt.ErrImmutable)
	assert.ErrorIs(t, f.svc.DeleteTemplate(ctx, "custom-missing"), domainprompt.ErrNotFound)

	tpl, err := f.svc.CreateTemplate(ctx, domainprompt.Prompt{Title: "Mine", Content: "x"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteTemplate(ctx, tpl.ID))
	assert.Empty(t, f.svc.CustomPrompts())
	assert.Len(t, f.svc.Prompts(), 2)
}

// ── Ratings ──────────────────────────────────────────────────────────────────

func TestRate_InMemoryOnly(t *testing.T) {
	f := newLibrary(t, options{})
	ctx := context.Background()
	require.NoError(t, f.svc.Load(ctx))

	p, err := f.svc.Rate(ctx, "1", true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, p.PositiveRatings)

	p, err = f.svc.Rate(ctx, "1", false, "")
	require.NoError(t, err)
	assert.Equal(t, 0, p.PositiveRatings)
	assert.Equal(t, 1, p.NegativeRatings)
	assert.Equal(t, event.TypePromptRated, f.events.Types()[len(f.events.Types())-1])
}

func TestRate_RecountOverwritesOptimisticCounters(t *testing.T) {
	f := newLibrary(t, options{ratings: true})
	ctx := context.Background()
	f.ratings.EXPECT().UserRatings(gomock.Any(), gomock.Any()).Return(map[int64]bool{}, nil)
	require.NoError(t, f.svc.Load(ctx))

	f.ratings.EXPECT().ResolveID(gomock.Any(), "1").Return(int64(1), true, nil)
	f.ratings.EXPECT().Vote(gomock.Any(), int64(1), "researcher", true).
		Return(domainprompt.Counts{Positive: 12, Negative: 3}, nil)

	p, err := f.svc.Rate(ctx, "1", true, "researcher")
	require.NoError(t, err)
	assert.Equal(t, 12, p.PositiveRatings)
	assert.Equal(t, 3, p.NegativeRatings)
	require.NotNil(t, p.UserRating)
	assert.True(t, *p.UserRating)
}

func TestRate_FailedWriteRollsBack(t *testing.T) {
	f := newLibrary(t, options{ratings: true})
	ctx := context.Background()
	f.ratings.EXPECT().UserRatings(gomock.Any(), gomock.Any()).Return(map[int64]bool{}, nil)
	require.NoError(t, f.svc.Load(ctx))

	f.ratings.EXPECT().ResolveID(gomock.Any(), "1").Return(int64(1), true, nil)
	f.ratings.EXPECT().Vote(gomock.Any(), int64(1), domainprompt.AnonymousUser, true).Return(domainprompt.Counts{}, errors.New("timeout"))

	_, err := f.svc.Rate(ctx, "1", true, "")
	require.Error(t, err)

	p, err := f.svc.Prompt("1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.PositiveRatings)
	assert.Nil(t, p.UserRating)
	assert.Empty(t, f.events.Types())
}

func TestRate_LocalTemplateStaysLocal(t *testing.T) {
	f := newLibrary(t, options{ratings: true})
	ctx := context.Background()
	f.ratings.EXPECT().UserRatings(gomock.Any(), gomock.Any()).Return(map[int64]bool{}, nil)
	require.NoError(t, f.svc.Load(ctx))

	tpl, err := f.svc.CreateTemplate(ctx, domainprompt.Prompt{Title: "Mine", Content: "x"})
	require.NoError(t, err)
	f.ratings.EXPECT().ResolveID(gomock.Any(), tpl.ID).Return(int64(0), false, nil)

	p, err := f.svc.Rate(ctx, tpl.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, p.PositiveRatings)

	var stored []domainprompt.Prompt
	f.stored(t, library.KeyCustomPrompts, &stored)
	assert.Equal(t, 1, stored[0].PositiveRatings)
}

func TestRate_MissingDatabaseRowKeepsOptimisticVote(t *testing.T) {
	f := newLibrary(t, options{ratings: true})
	ctx := context.Background()
	f.ratings.EXPECT().UserRatings(gomock.Any(), gomock.Any()).Return(map[int64]bool{}, nil)
	require.NoError(t, f.svc.Load(ctx))

	f.ratings.EXPECT().ResolveID(gomock.Any(), "1").Return(int64(1), true, nil)
	f.ratings.EXPECT().Vote(gomock.Any(), int64(1), domainprompt.AnonymousUser, true).
		Return(domainprompt.Counts{}, fmt.Errorf("prompt 1: %w", domainprompt.ErrNotFound))

	p, err := f.svc.Rate(ctx, "1", true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, p.PositiveRatings)
	require.NotNil(t, p.UserRating)
	assert.True(t, *p.UserRating)

	stored, err := f.svc.Prompt("1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.PositiveRatings)
	assert.Equal(t, []event.Type{event.TypePromptRated}, f.events.Types())
}

func TestRate_UnknownPrompt(t *testing.T) {
	f := newLibrary(t, options{})
	require.NoError(t, f.svc.Load(context.Background()))
	_, err := f.svc.Rate(context.Background(), "404", true, "")
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)
}

// ── Snapshots ────────────────────────────────────────────────────────────────

func TestSnapshotReplaceAll_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newLibrary(t, options{})
	require.NoError(t, src.svc.Load(ctx))
	folder, err := src.svc.CreateFolder(ctx, "Work")
	require.NoError(t, err)
	_, err = src.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "A", Folder: folder.ID})
	require.NoError(t, err)
	_, err = src.svc.CreateTemplate(ctx, domainprompt.Prompt{Title: "T", Content: "{x}"})
	require.NoError(t, err)

	snap := src.svc.Snapshot()

	dst := newLibrary(t, options{})
	require.NoError(t, dst.svc.Load(ctx))
	_, err = dst.svc.SavePrompt(ctx, domainprompt.Prompt{Title: "Overwritten"})
	require.NoError(t, err)

	require.NoError(t, dst.svc.ReplaceAll(ctx, snap))

	assert.Equal(t, src.svc.SavedPrompts(), dst.svc.SavedPrompts())
	assert.Equal(t, src.svc.CustomPrompts(), dst.svc.CustomPrompts())
	assert.Equal(t, src.svc.Folders(), dst.svc.Folders())
	assert.Len(t, dst.svc.Prompts(), 4, "system templates survive an import")

	var folders []domainprompt.Folder
	dst.stored(t, library.KeyFolders, &folders)
	assert.Equal(t, src.svc.Folders(), folders)

	last, _ := dst.events.Last()
	assert.Equal(t, event.TypeLibraryImported, last.Type)
}

func TestReplaceAll_StoreFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	kv := failingBatchKV{memory.NewKV()}
	require.NoError(t, kv.Set(ctx, library.KeyCustomPrompts, `[{"id":"custom-old","title":"old"}]`))
	require.NoError(t, kv.Set(ctx, library.KeySavedPrompts, `[{"id":"saved-old","title":"old"}]`))

	f := newLibrary(t, options{kv: kv})
	require.NoError(t, f.svc.Load(ctx))

	snap := f.svc.Snapshot()
	snap.CustomPrompts = []domainprompt.Prompt{{ID: "custom-new", Title: "new"}}
	snap.SavedPrompts = []domainprompt.Prompt{{ID: "saved-new", Title: "new"}}
	require.Error(t, f.svc.ReplaceAll(ctx, snap))

	assert.Equal(t, []string{"custom-old"}, ids(f.svc.CustomPrompts()))
	assert.Equal(t, []string{"saved-old"}, ids(f.svc.SavedPrompts()))
	assert.Empty(t, f.events.Types())

	reloaded := newLibrary(t, options{kv: kv})
	require.NoError(t, reloaded.svc.Load(ctx))
	assert.Equal(t, []string{"custom-old"}, ids(reloaded.svc.CustomPrompts()))
	assert.Equal(t, []string{"saved-old"}, ids(reloaded.svc.SavedPrompts()))
}
