package bleveindex

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	portsearch "github.com/alanyang/prompt-hub/internal/port/search"
)

var _ portsearch.Index = (*Index)(nil)

// DefaultLimit applies when Search is called with limit <= 0.
const DefaultLimit = 20

type document struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// Index is an in-memory bleve index over the combined prompt list.
// Rebuild swaps in a freshly built index so searches never see a partial set.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	return &Index{index: idx}, nil
}

func (i *Index) Rebuild(ctx context.Context, prompts []domainprompt.Prompt) error {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("creating search index: %w", err)
	}

	batch := idx.NewBatch()
	for _, p := range prompts {
		if err := ctx.Err(); err != nil {
			idx.Close()
			return err
		}
		doc := document{
			Title:       p.Title,
			Description: p.Description,
			Content:     p.Content,
			Category:    p.Category,
			Tags:        p.Tags,
		}
		if err := batch.Index(p.ID, doc); err != nil {
			idx.Close()
			return fmt.Errorf("indexing prompt %s: %w", p.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return fmt.Errorf("applying index batch: %w", err)
	}

	i.mu.Lock()
	old := i.index
	i.index = idx
	i.mu.Unlock()
	return old.Close()
}

func (i *Index) Search(ctx context.Context, q string, limit int) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)

	i.mu.RLock()
	defer i.mu.RUnlock()
	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching prompts: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}

// buildQuery matches whole words with one edit of tolerance, and treats the
// last word as a prefix so results update while the user is still typing.
func buildQuery(q string) query.Query {
	match := bleve.NewMatchQuery(q)
	match.SetFuzziness(1)

	title := bleve.NewMatchQuery(q)
	title.SetField("title")
	title.SetBoost(2)

	queries := []query.Query{match, title}
	if words := strings.Fields(strings.ToLower(q)); len(words) > 0 {
		if last := words[len(words)-1]; len(last) >= 2 {
			queries = append(queries, bleve.NewPrefixQuery(last))
		}
	}
	return bleve.NewDisjunctionQuery(queries...)
}
