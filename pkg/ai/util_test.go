package ai

import (
	"errors"
	"testing"
)

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  testPayload
	}{
		{
			name:  "standard json",
			input: `{"name": "alpha", "count": 3}`,
			want:  testPayload{Name: "alpha", Count: 3},
		},
		{
			name:  "double encoded",
			input: `"{\"name\": \"beta\", \"count\": 7}"`,
			want:  testPayload{Name: "beta", Count: 7},
		},
		{
			name:  "unquoted keys repaired",
			input: `{name: "gamma", count: 1}`,
			want:  testPayload{Name: "gamma", Count: 1},
		},
		{
			name:  "duplicate leading brace",
			input: `{ {"name": "delta", "count": 2}`,
			want:  testPayload{Name: "delta", Count: 2},
		},
		{
			name:  "surrounding whitespace",
			input: "\n  {\"name\": \"epsilon\", \"count\": 9}  \n",
			want:  testPayload{Name: "epsilon", Count: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testPayload
			if err := UnmarshalFlexible(tt.input, &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected payload: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalFlexibleRejectsGarbage(t *testing.T) {
	var got testPayload
	err := UnmarshalFlexible("not json at all {{{]", &got)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(&testPayload{})
	if schema == nil {
		t.Fatal("expected a schema")
	}
}

func TestGenerateOptions(t *testing.T) {
	opts := GenerateOptions{Model: "default", Temperature: 0.3}
	for _, o := range []GenerateOption{
		WithModel("custom"),
		WithTemperature(0.9),
		WithSystemPrompts("first", "second"),
	} {
		o(&opts)
	}

	if opts.Model != "custom" {
		t.Fatalf("unexpected model %q", opts.Model)
	}
	if opts.Temperature != 0.9 {
		t.Fatalf("unexpected temperature %v", opts.Temperature)
	}
	if len(opts.SystemPrompts) != 2 || opts.SystemPrompts[0] != "first" {
		t.Fatalf("unexpected system prompts %v", opts.SystemPrompts)
	}
}
