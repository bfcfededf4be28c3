// Package pptx extracts plain text from PowerPoint (.pptx) presentations
// by reading the slide XML directly.
package pptx

import (
	"context"
	"sync"

	"meridian/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// Extractor extracts text from PowerPoint files retrieved through a FileSource.
type Extractor struct {
	source loader.FileSource

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewExtractor creates a pptx text extractor over the given source.
func NewExtractor(source loader.FileSource) *Extractor {
	return &Extractor{
		source: source,
		cache:  make(map[string][]byte),
	}
}

// GetFileText extracts the text content of every slide in presentation order.
func (e *Extractor) GetFileText(ctx context.Context, file loader.DocumentFile) ([]byte, error) {
	key := loader.CacheKey(file)

	e.cacheMu.RLock()
	if cached, ok := e.cache[key]; ok {
		e.cacheMu.RUnlock()
		return cached, nil
	}
	e.cacheMu.RUnlock()

	result, err, _ := e.group.Do(key, func() (any, error) {
		e.cacheMu.RLock()
		if cached, ok := e.cache[key]; ok {
			e.cacheMu.RUnlock()
			return cached, nil
		}
		e.cacheMu.RUnlock()

		content, err := e.source.GetFileBytes(ctx, file)
		if err != nil {
			return nil, err
		}

		text, err := parsePptx(content)
		if err != nil {
			return nil, err
		}

		e.cacheMu.Lock()
		e.cache[key] = text
		e.cacheMu.Unlock()

		return text, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
