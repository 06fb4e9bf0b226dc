package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	portcache "github.com/alanyang/prompt-hub/internal/port/cache"
	portcatalog "github.com/alanyang/prompt-hub/internal/port/catalog"
)

const DefaultLanguage = "en"

type Config struct {
	Language string
	// CacheTTL of zero keeps a loaded catalog until Refresh.
	CacheTTL time.Duration
}

// Service loads the catalog of system templates. It prefers the remote
// source and falls back to the bundled one; a failing load yields an empty
// catalog rather than an error.
// [SRP] Loading and caching only. Merging with local prompts is the library's job.
type Service struct {
	remote   portcatalog.Source
	fallback portcatalog.Source
	cache    portcache.Cache
	cfg      Config
	now      func() time.Time
}

// NewService builds the loader. remote may be nil when no database is configured.
func NewService(remote, fallback portcatalog.Source, cache portcache.Cache, cfg Config) *Service {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &Service{remote: remote, fallback: fallback, cache: cache, cfg: cfg, now: time.Now}
}

func (s *Service) Language() string { return s.cfg.Language }

func (s *Service) cacheKey() string { return "catalog:" + s.cfg.Language }

// Load returns the catalog, from cache when possible.
func (s *Service) Load(ctx context.Context) []domainprompt.Prompt {
	if cached, ok := s.fromCache(ctx); ok {
		return cached
	}

	prompts := s.load(ctx)
	if raw, err := json.Marshal(prompts); err == nil {
		if err := s.cache.Set(ctx, s.cacheKey(), raw, s.cfg.CacheTTL); err != nil {
			slog.WarnContext(ctx, "catalog: cache write failed", "error", err)
		}
	}
	return prompts
}

// Refresh drops the cached catalog and loads it again.
func (s *Service) Refresh(ctx context.Context) []domainprompt.Prompt {
	if err := s.cache.Invalidate(ctx, s.cacheKey()); err != nil {
		slog.WarnContext(ctx, "catalog: cache invalidate failed", "error", err)
	}
	return s.Load(ctx)
}

func (s *Service) fromCache(ctx context.Context) ([]domainprompt.Prompt, bool) {
	raw, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		if !errors.Is(err, portcache.ErrNotFound) {
			slog.WarnContext(ctx, "catalog: cache read failed", "error", err)
		}
		return nil, false
	}
	var prompts []domainprompt.Prompt
	if err := json.Unmarshal(raw, &prompts); err != nil {
		slog.WarnContext(ctx, "catalog: dropping unreadable cache entry", "error", err)
		return nil, false
	}
	return prompts, true
}

func (s *Service) load(ctx context.Context) []domainprompt.Prompt {
	if s.remote != nil {
		prompts, err := s.remote.Load(ctx, s.cfg.Language)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "catalog: remote load failed, using bundled catalog", "error", err)
		case len(prompts) == 0:
			slog.WarnContext(ctx, "catalog: remote catalog empty, using bundled catalog")
		default:
			return s.applyDefaults(prompts, false)
		}
	}

	prompts, err := s.fallback.Load(ctx, s.cfg.Language)
	if err != nil {
		slog.ErrorContext(ctx, "catalog: bundled load failed", "error", err)
		return []domainprompt.Prompt{}
	}
	return s.applyDefaults(prompts, true)
}

// applyDefaults marks every prompt as a system template with no user vote.
// Bundled prompts carry no counters of their own, so resetCounts zeroes them.
func (s *Service) applyDefaults(prompts []domainprompt.Prompt, resetCounts bool) []domainprompt.Prompt {
	now := domainprompt.Timestamp(s.now())
	out := make([]domainprompt.Prompt, len(prompts))
	for i, p := range prompts {
		if p.CreatedAt == "" {
			p.CreatedAt = now
		}
		if p.Variables == nil {
			p.Variables = []domainprompt.Variable{}
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		if resetCounts {
			p.PositiveRatings, p.NegativeRatings = 0, 0
		}
		p.UserRating = nil
		p.Type = domainprompt.TypeSystemTemplate
		out[i] = p
	}
	return out
}
