// Package loader retrieves document files from a storage backend and
// extracts their plain text content. Per-format extractors live in
// subpackages; sources (filesystem, S3) implement FileSource.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentType identifies a supported document format.
type DocumentType string

const (
	DocumentTypePDF   DocumentType = "pdf"
	DocumentTypeDocx  DocumentType = "docx"
	DocumentTypeText  DocumentType = "txt"
	DocumentTypeCSV   DocumentType = "csv"
	DocumentTypeExcel DocumentType = "xlsx"
	DocumentTypePPTX  DocumentType = "pptx"
)

// DetectType maps a file name to its document type by extension.
func DetectType(path string) (DocumentType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return DocumentTypePDF, nil
	case ".docx":
		return DocumentTypeDocx, nil
	case ".txt", ".md", ".text":
		return DocumentTypeText, nil
	case ".csv":
		return DocumentTypeCSV, nil
	case ".xlsx":
		return DocumentTypeExcel, nil
	case ".pptx":
		return DocumentTypePPTX, nil
	}
	return "", fmt.Errorf("unsupported file format: %s", ext)
}

// DocumentFile represents a stored document whose text is to be extracted.
// The actual bytes are retrieved via the associated FileSource.
type DocumentFile struct {
	ID       string
	FilePath string
	Type     DocumentType
	Source   FileSource
}

// GetBytes retrieves the raw file content via the file's Source.
func (f *DocumentFile) GetBytes(ctx context.Context) ([]byte, error) {
	return f.Source.GetFileBytes(ctx, *f)
}

// FileSource retrieves the raw bytes of a DocumentFile. Implementations may
// load from disk, object storage, or other backends.
type FileSource interface {
	GetFileBytes(ctx context.Context, file DocumentFile) ([]byte, error)
}

// TextExtractor extracts plain text from a DocumentFile.
type TextExtractor interface {
	GetFileText(ctx context.Context, file DocumentFile) ([]byte, error)
}

// CacheKey builds the cache and deduplication key used by loaders.
func CacheKey(file DocumentFile) string {
	return file.ID + ":" + file.FilePath
}

// PlainTextExtractor returns the file bytes unchanged. Used for formats
// that are already plain text.
type PlainTextExtractor struct{}

func (PlainTextExtractor) GetFileText(ctx context.Context, file DocumentFile) ([]byte, error) {
	return file.Source.GetFileBytes(ctx, file)
}

// Registry dispatches text extraction by document type.
type Registry struct {
	extractors map[DocumentType]TextExtractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: make(map[DocumentType]TextExtractor)}
}

// Register binds an extractor to a document type, replacing any previous binding.
func (r *Registry) Register(t DocumentType, e TextExtractor) {
	r.extractors[t] = e
}

// ExtractText runs the extractor registered for the file's type.
func (r *Registry) ExtractText(ctx context.Context, file DocumentFile) ([]byte, error) {
	e, ok := r.extractors[file.Type]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for type %q", file.Type)
	}
	return e.GetFileText(ctx, file)
}
