package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alanyang/prompt-hub/internal/adapter/memory"
	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/service/analytics"
	"github.com/alanyang/prompt-hub/internal/service/library"
)

// FixedCatalog serves the same system templates on every load.
type FixedCatalog []domainprompt.Prompt

func (c FixedCatalog) Load(context.Context) []domainprompt.Prompt {
	out := domainprompt.CloneAll(c)
	for i := range out {
		out[i].Type = domainprompt.TypeSystemTemplate
	}
	return out
}

func (c FixedCatalog) Refresh(ctx context.Context) []domainprompt.Prompt { return c.Load(ctx) }

// DiscardLogger drops every record.
func DiscardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// Library is a loaded library over an in-memory store with no database and
// no search index.
type Library struct {
	*library.Service
	KV        *memory.KV
	Events    *EventRecorder
	Analytics *analytics.Service
}

func NewLibrary(t *testing.T, system ...domainprompt.Prompt) Library {
	t.Helper()
	l := Library{KV: memory.NewKV(), Events: &EventRecorder{}}
	l.Analytics = analytics.NewService(memory.NewKV(), DiscardLogger())
	l.Service = library.NewService(FixedCatalog(system), l.KV, nil, nil, l.Events, l.Analytics, library.Config{})
	require.NoError(t, l.Load(context.Background()))
	return l
}
