package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStateValid(t *testing.T) {
	assert.True(t, TaskStateQueued.Valid())
	assert.True(t, TaskStateRunning.Valid())
	assert.True(t, TaskStateDone.Valid())
	assert.True(t, TaskStateFailed.Valid())
	assert.False(t, TaskState("cancelled").Valid())
}

func TestTaskStateTerminal(t *testing.T) {
	assert.False(t, TaskStateQueued.Terminal())
	assert.False(t, TaskStateRunning.Terminal())
	assert.True(t, TaskStateDone.Terminal())
	assert.True(t, TaskStateFailed.Terminal())
}

func TestManifestEffectiveMetadata(t *testing.T) {
	m := &Manifest{
		Prefill: map[string]PrefillValue{
			"title": {Value: "Inferred Title", Provenance: "filename"},
			"year":  {Value: "2019", Provenance: "content"},
		},
		UserOverrides: map[string]OverrideValue{
			"title": {Value: "Proper Title", UpdatedAt: time.Now()},
		},
	}

	merged := m.EffectiveMetadata()
	assert.Equal(t, "Proper Title", merged["title"], "override wins over prefill")
	assert.Equal(t, "2019", merged["year"], "prefill survives when not overridden")
}

func TestManifestSetPrefillDoesNotClobber(t *testing.T) {
	m := &Manifest{}
	m.SetPrefill("language", "de", "content")
	m.SetPrefill("language", "en", "content")

	assert.Equal(t, "de", m.Prefill["language"].Value,
		"re-upload must not clobber accumulated prefill")
}
