package planparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirect(t *testing.T) {
	obj, errs, ok := Parse(`{"a": 1}`)

	require.True(t, ok)
	assert.Empty(t, errs, "clean JSON must not record stage errors")
	assert.Equal(t, float64(1), obj["a"])
}

func TestParseFencedWithTrailingComma(t *testing.T) {
	obj, errs, ok := Parse("```json\n{\"a\": 1,}\n```")

	require.True(t, ok)
	assert.Equal(t, float64(1), obj["a"])
	assert.NotEmpty(t, errs, "failed earlier stages must be recorded even on success")
}

func TestParseEmbeddedInProse(t *testing.T) {
	raw := `Here is the plan you asked for:

{"proposed_notions": [{"title": "x"}], "note": "braces } in { strings are fine"}

Let me know if you need anything else.`

	obj, _, ok := Parse(raw)

	require.True(t, ok)
	assert.Contains(t, obj, "proposed_notions")
	assert.Equal(t, "braces } in { strings are fine", obj["note"])
}

func TestParseCurlyQuotes(t *testing.T) {
	obj, _, ok := Parse("{“title”: “Hypertension”}")

	require.True(t, ok)
	assert.Equal(t, "Hypertension", obj["title"])
}

func TestParsePythonLiterals(t *testing.T) {
	obj, _, ok := Parse(`{"active": True, "archived": False, "extra": None}`)

	require.True(t, ok)
	assert.Equal(t, true, obj["active"])
	assert.Equal(t, false, obj["archived"])
	assert.Nil(t, obj["extra"])
}

func TestParseHopeless(t *testing.T) {
	obj, errs, ok := Parse("I could not produce a plan for this document.")

	assert.False(t, ok)
	assert.Nil(t, obj)
	assert.Len(t, errs, len(stages), "every stage must record its failure")
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain object",
			input: `x {"a": 1} y`,
			want:  `{"a": 1}`,
		},
		{
			name:  "nested objects",
			input: `{"a": {"b": 2}} trailing`,
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "brace inside string",
			input: `{"a": "}"}`,
			want:  `{"a": "}"}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"a": "say \"}\" loudly"}`,
			want:  `{"a": "say \"}\" loudly"}`,
		},
		{
			name:    "no object",
			input:   "nothing here",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			input:   `{"a": 1`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractBalanced(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
