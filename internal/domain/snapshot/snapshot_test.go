package snapshot_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/domain/snapshot"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSanitize_TruncatesLongFields(t *testing.T) {
	long := strings.Repeat("é", snapshot.MaxFieldLength+5)
	s := snapshot.Snapshot{
		SavedPrompts:  []prompt.Prompt{{ID: "saved-1", Content: long, Description: "short"}},
		CustomPrompts: []prompt.Prompt{{ID: "custom-1", Description: long}},
	}

	got := snapshot.Sanitize(s)

	want := strings.Repeat("é", snapshot.MaxFieldLength) + snapshot.TruncationMarker
	assert.Equal(t, want, got.SavedPrompts[0].Content)
	assert.Equal(t, "short", got.SavedPrompts[0].Description)
	assert.Equal(t, want, got.CustomPrompts[0].Description)

	// Input is left alone.
	assert.Equal(t, long, s.SavedPrompts[0].Content)
}

func TestSanitize_ExactLimitIsKept(t *testing.T) {
	exact := strings.Repeat("x", snapshot.MaxFieldLength)
	got := snapshot.Sanitize(snapshot.Snapshot{SavedPrompts: []prompt.Prompt{{Content: exact}}})
	assert.Equal(t, exact, got.SavedPrompts[0].Content)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	orig := snapshot.New(
		[]prompt.Prompt{{ID: "saved-1", Title: "A", Tags: []string{"t"}, Variables: []prompt.Variable{}, Folder: "f1", Type: prompt.TypeLocal}},
		[]prompt.Prompt{{ID: "custom-1", Title: "B", Tags: []string{}, Variables: []prompt.Variable{{ID: "x", Type: prompt.KindText}}, Type: prompt.TypeLocalTemplate}},
		[]prompt.Folder{{ID: "f1", Name: "Work", CreatedAt: "2026-01-01T00:00:00.000Z"}},
		now,
	)

	raw, err := snapshot.Encode(orig)
	require.NoError(t, err)
	assert.Contains(t, raw, "\n  \"savedPrompts\"")

	got, err := snapshot.Decode([]byte(raw), now.Add(time.Hour))
	require.NoError(t, err)
	if diff := cmp.Diff(orig, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_DefaultsLastSynced(t *testing.T) {
	got, err := snapshot.Decode([]byte(`{"savedPrompts":[],"customPrompts":[],"folders":[]}`), now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T12:00:00.000Z", got.LastSynced)
}

func TestDecode_RejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `nope`},
		{name: "not an object", raw: `[]`},
		{name: "missing folders", raw: `{"savedPrompts":[],"customPrompts":[]}`},
		{name: "null saved prompts", raw: `{"savedPrompts":null,"customPrompts":[],"folders":[]}`},
		{name: "object custom prompts", raw: `{"savedPrompts":[],"customPrompts":{},"folders":[]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := snapshot.Decode([]byte(tc.raw), now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, snapshot.ErrInvalidSnapshot))
		})
	}
}
