package ai

import (
	"testing"
)

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	type labels struct {
		Themes []string `json:"themes"`
	}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "valid json object",
			input: `{"themes":["scaling","safety"]}`,
			want:  []string{"scaling", "safety"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{themes: ['scaling']}`,
			want:  []string{"scaling"},
		},
		{
			name:  "trailing comma",
			input: `{"themes":["scaling",]}`,
			want:  []string{"scaling"},
		},
		{
			name:  "missing endbracket",
			input: `{"themes":["scaling"`,
			want:  []string{"scaling"},
		},
		{
			name:  "stringified json object",
			input: `"{\"themes\": [\"scaling\"]}"`,
			want:  []string{"scaling"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"themes\": [\"scaling\"]\n}\n",
			want:  []string{"scaling"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got labels
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if len(got.Themes) != len(tc.want) {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got.Themes, tc.want)
			}
			for i := range got.Themes {
				if got.Themes[i] != tc.want[i] {
					t.Fatalf("UnmarshalFlexible() themes[%d] = %q, want %q", i, got.Themes[i], tc.want[i])
				}
			}
		})
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	type labels struct {
		Themes []string `json:"themes"`
	}

	var got labels
	if err := UnmarshalFlexible("hello", &got); err == nil {
		t.Fatalf("UnmarshalFlexible() expected error for unrecoverable input")
	}
}

func TestGenerateSchema_PointerAndValue(t *testing.T) {
	type verdict struct {
		Independence int `json:"independence"`
		ClearIntent  int `json:"clear_intent"`
	}

	if GenerateSchema(verdict{}) == nil {
		t.Fatal("GenerateSchema(value) returned nil")
	}
	if GenerateSchema(&verdict{}) == nil {
		t.Fatal("GenerateSchema(pointer) returned nil")
	}
}
