package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file]", ingestCmd.Use)
}

func TestIngestCmd_RequiresFile(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestIngestCmd_PrintsDocID(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "trial.txt")
	require.NoError(t, os.WriteFile(path, []byte("fracture outcomes"), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Document: sha256:")
	assert.Contains(t, buf.String(), "State: queued")
}

func TestIngestCmd_AppliesOverrides(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	fake := ingestService.(*fakeIngest)

	path := filepath.Join(t.TempDir(), "trial.txt")
	require.NoError(t, os.WriteFile(path, []byte("fracture outcomes"), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path, "--set", "title=Corrected Title", "--set", "year=2021"})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestOverrides = nil
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"title": "Corrected Title", "year": "2021"}, fake.overrides)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", filepath.Join(t.TempDir(), "absent.txt")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestParseOverrides(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", pairs: nil, want: nil},
		{
			name:  "single pair",
			pairs: []string{"title=Trial"},
			want:  map[string]string{"title": "Trial"},
		},
		{
			name:  "value containing equals",
			pairs: []string{"note=a=b"},
			want:  map[string]string{"note": "a=b"},
		},
		{
			name:  "whitespace trimmed",
			pairs: []string{" year = 2019 "},
			want:  map[string]string{"year": "2019"},
		},
		{name: "missing separator", pairs: []string{"title"}, wantErr: true},
		{name: "empty field", pairs: []string{"=value"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOverrides(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
