package loader

import (
	"context"
	"testing"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		path    string
		want    DocumentType
		wantErr bool
	}{
		{path: "report.pdf", want: DocumentTypePDF},
		{path: "docs/Notes.DOCX", want: DocumentTypeDocx},
		{path: "readme.txt", want: DocumentTypeText},
		{path: "readme.md", want: DocumentTypeText},
		{path: "data.csv", want: DocumentTypeCSV},
		{path: "sheet.xlsx", want: DocumentTypeExcel},
		{path: "deck.pptx", want: DocumentTypePPTX},
		{path: "archive.zip", wantErr: true},
		{path: "noextension", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectType(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %q", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected type: got %q, want %q", got, tt.want)
			}
		})
	}
}

type staticSource struct {
	content []byte
}

func (s staticSource) GetFileBytes(ctx context.Context, file DocumentFile) ([]byte, error) {
	return s.content, nil
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(DocumentTypeText, PlainTextExtractor{})

	file := DocumentFile{
		ID:       "doc-1",
		FilePath: "notes.txt",
		Type:     DocumentTypeText,
		Source:   staticSource{content: []byte("plain content")},
	}

	got, err := reg.ExtractText(context.Background(), file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "plain content" {
		t.Fatalf("unexpected text %q", got)
	}

	file.Type = DocumentTypePDF
	if _, err := reg.ExtractText(context.Background(), file); err == nil {
		t.Fatal("expected an error for unregistered type")
	}
}

func TestCacheKey(t *testing.T) {
	file := DocumentFile{ID: "abc", FilePath: "dir/file.pdf"}
	if got := CacheKey(file); got != "abc:dir/file.pdf" {
		t.Fatalf("unexpected cache key %q", got)
	}
}
