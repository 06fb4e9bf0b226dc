package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/prompt-hub/internal/adapter/memory"
	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/mocks"
	catalogsvc "github.com/alanyang/prompt-hub/internal/service/catalog"
)

func newCatalogSvc(t *testing.T, withRemote bool) (*catalogsvc.Service, *mocks.MockCatalogSource, *mocks.MockCatalogSource) {
	t.Helper()
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockCatalogSource(ctrl)
	fallback := mocks.NewMockCatalogSource(ctrl)
	if !withRemote {
		// A nil interface, not a typed nil pointer.
		return catalogsvc.NewService(nil, fallback, memory.NewCache(), catalogsvc.Config{}), remote, fallback
	}
	return catalogsvc.NewService(remote, fallback, memory.NewCache(), catalogsvc.Config{}), remote, fallback
}

func TestLoad_Sources(t *testing.T) {
	remoteRows := []domainprompt.Prompt{{ID: "7", Title: "Remote", PositiveRatings: 3, CreatedAt: "2024-01-01T00:00:00.000Z"}}
	bundled := []domainprompt.Prompt{{ID: "1", Title: "Bundled", PositiveRatings: 9}}

	tests := []struct {
		name       string
		withRemote bool
		setup      func(remote, fallback *mocks.MockCatalogSource)
		wantTitle  string
		wantPos    int
	}{
		{
			name:       "remote wins and keeps its counters",
			withRemote: true,
			setup: func(remote, fallback *mocks.MockCatalogSource) {
				remote.EXPECT().Load(gomock.Any(), "en").Return(remoteRows, nil)
			},
			wantTitle: "Remote",
			wantPos:   3,
		},
		{
			name:       "remote error falls back",
			withRemote: true,
			setup: func(remote, fallback *mocks.MockCatalogSource) {
				remote.EXPECT().Load(gomock.Any(), "en").Return(nil, errors.New("connection refused"))
				fallback.EXPECT().Load(gomock.Any(), "en").Return(bundled, nil)
			},
			wantTitle: "Bundled",
		},
		{
			name:       "empty remote falls back",
			withRemote: true,
			setup: func(remote, fallback *mocks.MockCatalogSource) {
				remote.EXPECT().Load(gomock.Any(), "en").Return([]domainprompt.Prompt{}, nil)
				fallback.EXPECT().Load(gomock.Any(), "en").Return(bundled, nil)
			},
			wantTitle: "Bundled",
		},
		{
			name: "no remote configured",
			setup: func(remote, fallback *mocks.MockCatalogSource) {
				fallback.EXPECT().Load(gomock.Any(), "en").Return(bundled, nil)
			},
			wantTitle: "Bundled",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, remote, fallback := newCatalogSvc(t, tc.withRemote)
			tc.setup(remote, fallback)

			got := svc.Load(context.Background())
			require.Len(t, got, 1)
			p := got[0]
			assert.Equal(t, tc.wantTitle, p.Title)
			assert.Equal(t, tc.wantPos, p.PositiveRatings)
			assert.Equal(t, 0, p.NegativeRatings)
			assert.Nil(t, p.UserRating)
			assert.Equal(t, domainprompt.TypeSystemTemplate, p.Type)
			assert.NotEmpty(t, p.CreatedAt)
			assert.NotNil(t, p.Variables)
			assert.NotNil(t, p.Tags)
		})
	}
}

func TestLoad_EverythingFailsYieldsEmpty(t *testing.T) {
	svc, remote, fallback := newCatalogSvc(t, true)
	remote.EXPECT().Load(gomock.Any(), "en").Return(nil, errors.New("down"))
	fallback.EXPECT().Load(gomock.Any(), "en").Return(nil, errors.New("corrupt"))

	got := svc.Load(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoad_CachedUntilRefresh(t *testing.T) {
	svc, _, fallback := newCatalogSvc(t, false)
	ctx := context.Background()

	fallback.EXPECT().Load(gomock.Any(), "en").Return([]domainprompt.Prompt{{ID: "1", Title: "v1"}}, nil).Times(1)
	assert.Equal(t, "v1", svc.Load(ctx)[0].Title)
	assert.Equal(t, "v1", svc.Load(ctx)[0].Title)

	fallback.EXPECT().Load(gomock.Any(), "en").Return([]domainprompt.Prompt{{ID: "1", Title: "v2"}}, nil).Times(1)
	assert.Equal(t, "v2", svc.Refresh(ctx)[0].Title)
	assert.Equal(t, "v2", svc.Load(ctx)[0].Title)
}

func TestLanguage(t *testing.T) {
	svc := catalogsvc.NewService(nil, nil, memory.NewCache(), catalogsvc.Config{Language: "fr"})
	assert.Equal(t, "fr", svc.Language())
	svc = catalogsvc.NewService(nil, nil, memory.NewCache(), catalogsvc.Config{})
	assert.Equal(t, catalogsvc.DefaultLanguage, svc.Language())
}
