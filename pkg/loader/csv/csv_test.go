package csv

import "testing"

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "simple rows",
			input: "name,city\nAcme,Berlin\n",
			want:  "name,city\nAcme,Berlin\n",
		},
		{
			name:  "drops empty rows",
			input: "a,b\n,\n\nc,d\n",
			want:  "a,b\nc,d\n",
		},
		{
			name:  "quotes fields with commas",
			input: "name,desc\nAcme,\"makes widgets, gadgets\"\n",
			want:  "name,desc\nAcme,\"makes widgets, gadgets\"\n",
		},
		{
			name:  "escapes embedded quotes",
			input: "a\n\"say \"\"hi\"\"\"\n",
			want:  "a\n\"say \"\"hi\"\"\"\n",
		},
		{
			name:  "ragged rows are kept",
			input: "a,b,c\nd,e\n",
			want:  "a,b,c\nd,e\n",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "only blank rows",
			input:   ",,\n,,\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("unexpected output:\ngot  %q\nwant %q", got, tt.want)
			}
		})
	}
}
