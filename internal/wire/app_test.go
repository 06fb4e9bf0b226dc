package wire_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/prompt-hub/internal/config"
	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/wire"
)

func TestBuild_LocalOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.StateDBPath = filepath.Join(dir, "state.db")
	cfg.SecureStorageSecret = "s3cret"
	cfg.SecureStorageSaltPath = filepath.Join(dir, "salt")
	cfg.TokenCheckInterval = 0

	app, err := wire.Build(ctx, cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.MCPServer)
	assert.NotEmpty(t, app.Library.Prompts(), "bundled catalog is served without a database")
	assert.False(t, app.GistSync.IsAuthenticated())

	w := httptest.NewRecorder()
	app.Server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prompts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var prompts []domainprompt.Prompt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prompts))
	assert.Len(t, prompts, len(app.Library.Prompts()))
}

func TestBuild_StatePersistsAcrossRestarts(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.StateDBPath = filepath.Join(dir, "state.db")
	cfg.TokenCheckInterval = 0
	cfg.MCPEnabled = false

	ctx, cancel := context.WithCancel(context.Background())
	app, err := wire.Build(ctx, cfg)
	require.NoError(t, err)
	_, err = app.Library.CreateFolder(ctx, "Work")
	require.NoError(t, err)
	cancel()
	require.NoError(t, app.Close())

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	app2, err := wire.Build(ctx2, cfg)
	require.NoError(t, err)
	defer app2.Close()

	assert.Nil(t, app2.MCPServer)
	require.Len(t, app2.Library.Folders(), 1)
	assert.Equal(t, "Work", app2.Library.Folders()[0].Name)
}
