package knowledge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/orchestra/core"
)

// jsonEntryScore is the flat relevance assigned to key/value entries whose
// JSON serialization contains the query. Occurrence scoring only applies to
// natural-language content.
const jsonEntryScore = 0.5

// SearchResult represents a retrieved knowledge item with a relevance score
// and arbitrary metadata. ID is the document id or entry key.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// Store is the retrieval interface consumed by the conductor. The in-memory
// implementation is a toy keyword engine; production deployments substitute a
// semantic index behind the same interface.
type Store interface {
	Put(key string, value any, metadata map[string]any) error
	Get(key string) (any, bool)
	AddDocument(content string, metadata map[string]any) (string, error)
	DeleteDocument(id string) error
	Search(query string, limit int) []SearchResult
	SearchSimilar(text string, limit int) []SearchResult
}

// entry is a generic key/value record with upsert semantics.
type entry struct {
	Value     any
	Metadata  map[string]any
	UpdatedAt time.Time
}

// document is an indexed text record carrying a pseudo-embedding computed at
// insertion time.
type document struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Embedding []float64
	CreatedAt time.Time
}

// InMemoryStore is a process-local Store. Concurrency: protected by RWMutex.
// Search is a linear case-insensitive substring scan; SearchSimilar ranks by
// cosine similarity over pseudo-embeddings (see Embed). Suitable for tests,
// demos and small catalogues.
type InMemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	documents map[string]document
	docOrder  []string
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory knowledge store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		entries:   make(map[string]entry),
		documents: make(map[string]document),
	}
}

// Put upserts a key/value entry, stamping the update time.
func (s *InMemoryStore) Put(key string, value any, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{Value: value, Metadata: metadata, UpdatedAt: time.Now().UTC()}
	return nil
}

// Get returns the value stored under key.
func (s *InMemoryStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// AddDocument indexes a text document under a generated id and computes its
// pseudo-embedding for similarity search.
func (s *InMemoryStore) AddDocument(content string, metadata map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := core.NewID()
	s.documents[id] = document{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		Embedding: Embed(content),
		CreatedAt: time.Now().UTC(),
	}
	s.docOrder = append(s.docOrder, id)
	return id, nil
}

// DeleteDocument removes an indexed document by id.
func (s *InMemoryStore) DeleteDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.documents, id)
	for i, oid := range s.docOrder {
		if oid == id {
			s.docOrder = append(s.docOrder[:i], s.docOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Search performs a case-insensitive substring scan across documents and
// key/value entries. Document and string-entry hits are scored by occurrence
// count normalized by content length; non-string entries are JSON-serialized
// and scored at a flat constant. Results are sorted by descending score and
// truncated to limit.
func (s *InMemoryStore) Search(query string, limit int) []SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	results := make([]SearchResult, 0)

	for _, id := range s.docOrder {
		doc := s.documents[id]
		if score := substringScore(doc.Content, needle); score > 0 {
			results = append(results, SearchResult{ID: doc.ID, Content: doc.Content, Score: score, Metadata: doc.Metadata})
		}
	}
	for key, e := range s.entries {
		content, flat := entryContent(e.Value)
		if !strings.Contains(strings.ToLower(content), needle) {
			continue
		}
		score := jsonEntryScore
		if !flat {
			score = substringScore(content, needle)
		}
		if score > 0 {
			results = append(results, SearchResult{ID: key, Content: content, Score: score, Metadata: e.Metadata})
		}
	}

	sortByScore(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// SearchSimilar ranks documents by cosine similarity of their
// pseudo-embeddings against the embedded query text.
func (s *InMemoryStore) SearchSimilar(text string, limit int) []SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := Embed(text)
	results := make([]SearchResult, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		doc := s.documents[id]
		results = append(results, SearchResult{
			ID:       doc.ID,
			Content:  doc.Content,
			Score:    Cosine(query, doc.Embedding),
			Metadata: doc.Metadata,
		})
	}

	sortByScore(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// substringScore counts case-insensitive occurrences of needle in content,
// normalized by content length. Empty inputs score zero.
func substringScore(content, needle string) float64 {
	if content == "" || needle == "" {
		return 0
	}
	occurrences := strings.Count(strings.ToLower(content), needle)
	if occurrences == 0 {
		return 0
	}
	return float64(occurrences) / float64(len(content))
}

// entryContent renders an entry value as searchable text. The boolean reports
// whether the value was JSON-serialized (flat-scored) rather than a string.
func entryContent(value any) (string, bool) {
	if s, ok := value.(string); ok {
		return s, false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", true
	}
	return string(raw), true
}

// sortByScore orders results by descending score, stable for equal scores.
func sortByScore(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}
