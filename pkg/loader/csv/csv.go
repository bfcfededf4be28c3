// Package csv normalizes CSV files into clean comma-separated text.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"

	"meridian/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// Extractor parses CSV files retrieved through a FileSource.
type Extractor struct {
	source loader.FileSource

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewExtractor creates a CSV extractor over the given source.
func NewExtractor(source loader.FileSource) *Extractor {
	return &Extractor{
		source: source,
		cache:  make(map[string][]byte),
	}
}

// GetFileText retrieves and normalizes the CSV file content.
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

		parsed, err := ParseCSV(content)
		if err != nil {
			return nil, err
		}

		e.cacheMu.Lock()
		e.cache[key] = parsed
		e.cacheMu.Unlock()

		return parsed, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// ParseCSV parses CSV content and returns it as clean comma-separated text.
// Malformed rows and empty rows are dropped; fields containing separators
// are re-quoted.
func ParseCSV(content []byte) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var output strings.Builder
	lineNum := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		isEmpty := true
		for _, field := range record {
			if strings.TrimSpace(field) != "" {
				isEmpty = false
				break
			}
		}
		if isEmpty {
			continue
		}

		if lineNum > 0 {
			output.WriteByte('\n')
		}

		for i, field := range record {
			if i > 0 {
				output.WriteByte(',')
			}
			if strings.ContainsAny(field, ",\n\"") {
				output.WriteString(quoteField(field))
			} else {
				output.WriteString(field)
			}
		}
		lineNum++
	}

	if output.Len() == 0 {
		return nil, fmt.Errorf("CSV file is empty or contains no valid data")
	}

	result := output.String()
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}

	return []byte(result), nil
}

// quoteField properly quotes a CSV field that contains special characters.
func quoteField(field string) string {
	escaped := strings.ReplaceAll(field, "\"", "\"\"")
	return "\"" + escaped + "\""
}
