// Package loader caches loaded tokenizers, so pipelines that decode for
// many requests don't re-parse tokenizer.json on every call.
package loader

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
	"k8s.io/klog/v2"

	"github.com/gomlx/go-tokenizers/tokenizers/api"
	"github.com/gomlx/go-tokenizers/tokenizers/hftokenizer"
)

// DefaultCacheSize is the number of loaded tokenizers kept: one per
// base-model is plenty for most servers.
const DefaultCacheSize = 20

// CachedLoader loads tokenizers from tokenizer.json files, keeping the
// parsed result in an LRU cache keyed by path. Concurrent loads of the same
// path are collapsed into one.
type CachedLoader struct {
	cache *lru.Cache[string, api.Tokenizer]
	group singleflight.Group
}

// New creates a CachedLoader holding up to cacheSize tokenizers; cacheSize
// <= 0 selects DefaultCacheSize.
func New(cacheSize int) (*CachedLoader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, api.Tokenizer](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize tokenizer cache")
	}
	return &CachedLoader{cache: cache}, nil
}

// FromFile returns the tokenizer for the given tokenizer.json path, loading
// and caching it on first use.
func (l *CachedLoader) FromFile(path string) (api.Tokenizer, error) {
	if tok, ok := l.cache.Get(path); ok {
		return tok, nil
	}
	result, err, shared := l.group.Do(path, func() (any, error) {
		klog.V(1).Infof("loading tokenizer from %q", path)
		return hftokenizer.NewFromFile(path)
	})
	if err != nil {
		return nil, err
	}
	tok, ok := result.(api.Tokenizer)
	if !ok {
		return nil, errors.New("unexpected tokenizer type from singleflight result")
	}
	if !shared {
		// Only add to cache if this goroutine actually loaded the tokenizer.
		l.cache.Add(path, tok)
	}
	return tok, nil
}

// Len returns the number of cached tokenizers.
func (l *CachedLoader) Len() int {
	return l.cache.Len()
}
