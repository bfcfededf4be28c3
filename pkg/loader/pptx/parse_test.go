package pptx

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildPptx(t *testing.T, slides map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range slides {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func slideXML(lines ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>`)
	for _, line := range lines {
		sb.WriteString(`<p:sp><p:txBody><a:p><a:r><a:t>`)
		sb.WriteString(line)
		sb.WriteString(`</a:t></a:r></a:p></p:txBody></p:sp>`)
	}
	sb.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return sb.String()
}

func TestParsePptx(t *testing.T) {
	content := buildPptx(t, map[string]string{
		"ppt/slides/slide2.xml":  slideXML("Second slide"),
		"ppt/slides/slide1.xml":  slideXML("Title", "Subtitle"),
		"ppt/slides/slide10.xml": slideXML("Tenth slide"),
		"ppt/media/image1.png":   "binary",
	})

	got, err := parsePptx(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(got)
	for _, want := range []string{"Title", "Subtitle", "Second slide", "Tenth slide"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in %q", want, text)
		}
	}

	// Numeric slide order, not lexicographic.
	if strings.Index(text, "Second slide") > strings.Index(text, "Tenth slide") {
		t.Fatalf("slides out of order: %q", text)
	}
	if strings.Index(text, "Title") > strings.Index(text, "Second slide") {
		t.Fatalf("slides out of order: %q", text)
	}
}

func TestParsePptxNoSlides(t *testing.T) {
	content := buildPptx(t, map[string]string{
		"ppt/media/image1.png": "binary",
	})
	if _, err := parsePptx(content); err == nil {
		t.Fatal("expected an error for archive without slides")
	}
}

func TestParsePptxInvalidArchive(t *testing.T) {
	if _, err := parsePptx([]byte("not a zip")); err == nil {
		t.Fatal("expected an error for invalid archive")
	}
}
