// Package io provides a filesystem-backed file source.
package io

import (
	"context"
	"os"
	"sync"

	"meridian/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// FileSource loads files directly from the local filesystem with caching.
// Concurrent reads of the same file are collapsed into one.
type FileSource struct {
	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewFileSource creates a new filesystem-based file source.
func NewFileSource() *FileSource {
	return &FileSource{
		cache: make(map[string][]byte),
	}
}

// GetFileBytes reads the file content from the filesystem. Results are cached.
func (s *FileSource) GetFileBytes(ctx context.Context, file loader.DocumentFile) ([]byte, error) {
	key := loader.CacheKey(file)

	s.cacheMu.RLock()
	if cached, ok := s.cache[key]; ok {
		s.cacheMu.RUnlock()
		return cached, nil
	}
	s.cacheMu.RUnlock()

	result, err, _ := s.group.Do(key, func() (any, error) {
		s.cacheMu.RLock()
		if cached, ok := s.cache[key]; ok {
			s.cacheMu.RUnlock()
			return cached, nil
		}
		s.cacheMu.RUnlock()

		content, err := os.ReadFile(file.FilePath)
		if err != nil {
			return nil, err
		}

		s.cacheMu.Lock()
		s.cache[key] = content
		s.cacheMu.Unlock()

		return content, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
