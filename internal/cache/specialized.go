package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"cce/internal/config"
	"cce/internal/model"
)

// Tier bundles the specialized caches the engine wires up from a single
// CacheConfig (spec §4.4).
type Tier struct {
	FileIndex        *Memory[model.FileIndex]
	RelevanceScore   *Memory[model.RelevanceScore]
	SymbolReferences *Memory[map[string][]model.Symbol]
	SerializedIndex  *Memory[[]byte]
	Persistent       *Persistent

	relevanceTTL time.Duration
}

// NewTier builds a Tier from cfg. Persistent is opened lazily by callers
// that need on-disk spill (not every engine configuration requires it).
func NewTier(cfg config.CacheConfig) (*Tier, error) {
	fileIndex, err := NewMemory[model.FileIndex](cfg.FileIndexCacheSize, cfg.MaxBytes/2, cfg.DefaultTTL)
	if err != nil {
		return nil, err
	}
	relevance, err := NewMemory[model.RelevanceScore](cfg.MaxEntries, cfg.MaxBytes/4, cfg.RelevanceScoreTTL)
	if err != nil {
		return nil, err
	}
	symbolRefs, err := NewMemory[map[string][]model.Symbol](cfg.SymbolReferencesSize, cfg.MaxBytes/8, cfg.DefaultTTL)
	if err != nil {
		return nil, err
	}
	serialized, err := NewMemory[[]byte](16, cfg.MaxBytes/8, cfg.DefaultTTL)
	if err != nil {
		return nil, err
	}

	return &Tier{
		FileIndex:        fileIndex,
		RelevanceScore:   relevance,
		SymbolReferences: symbolRefs,
		SerializedIndex:  serialized,
		relevanceTTL:     cfg.RelevanceScoreTTL,
	}, nil
}

// RelevanceCacheKey hashes (currentFile, query, sorted candidate paths)
// into a stable cache key, per spec §4.5's cache-key rule.
func RelevanceCacheKey(currentFile, query string, candidates []string) string {
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(currentFile))
	h.Write([]byte{0})
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sorted, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// PutRelevanceScore caches score under its cache key with the tier's
// configured relevance-score TTL.
func (t *Tier) PutRelevanceScore(key string, score model.RelevanceScore) {
	blob, _ := json.Marshal(score)
	t.RelevanceScore.Set(key, score, string(blob), t.relevanceTTL)
}
