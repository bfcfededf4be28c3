// Package excel extracts text from Excel (.xlsx) workbooks sheet by sheet.
package excel

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"meridian/pkg/loader"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/singleflight"
)

// Extractor parses Excel workbooks retrieved through a FileSource.
// Multi-sheet workbooks are concatenated with sheet name headers.
type Extractor struct {
	source loader.FileSource

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewExtractor creates an Excel extractor over the given source.
func NewExtractor(source loader.FileSource) *Extractor {
	return &Extractor{
		source: source,
		cache:  make(map[string][]byte),
	}
}

// GetFileText retrieves the workbook and renders every sheet as
// comma-separated rows.
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

		text, err := parseWorkbook(content)
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

func parseWorkbook(content []byte) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()

	var result []byte
	for _, sheetName := range sheetNames {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}

		var sb strings.Builder
		for _, row := range rows {
			isEmpty := true
			for _, cell := range row {
				if strings.TrimSpace(cell) != "" {
					isEmpty = false
					break
				}
			}
			if isEmpty {
				continue
			}
			sb.WriteString(strings.Join(row, ","))
			sb.WriteByte('\n')
		}
		if sb.Len() == 0 {
			continue
		}

		if len(result) > 0 {
			result = append(result, '\n')
		}
		if len(sheetNames) > 1 {
			result = append(result, []byte("--- "+sheetName+" ---\n")...)
		}
		result = append(result, []byte(sb.String())...)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("workbook contains no data")
	}
	return result, nil
}
