package domain

import "time"

// TaskState is the extraction lifecycle state of a document.
type TaskState string

// Task states form the per-document state machine
// queued -> running -> {done, failed}. Transitions are driven only by
// the scheduler, never by a reader.
const (
	TaskStateQueued  TaskState = "queued"
	TaskStateRunning TaskState = "running"
	TaskStateDone    TaskState = "done"
	TaskStateFailed  TaskState = "failed"
)

// Valid reports whether s is a known task state.
func (s TaskState) Valid() bool {
	switch s {
	case TaskStateQueued, TaskStateRunning, TaskStateDone, TaskStateFailed:
		return true
	}
	return false
}

// Terminal reports whether s is an end state of the task state machine.
func (s TaskState) Terminal() bool {
	return s == TaskStateDone || s == TaskStateFailed
}

// PrefillValue is a metadata field inferred by the system, tagged with
// its provenance so callers can tell inferred values from user input.
type PrefillValue struct {
	// Value is the inferred field value.
	Value string `json:"value"`

	// Provenance names the inference source (e.g. "filename", "content").
	Provenance string `json:"provenance"`
}

// OverrideValue is a metadata field set explicitly by the caller.
// Overrides always take precedence over prefill values.
type OverrideValue struct {
	// Value is the caller-supplied field value.
	Value string `json:"value"`

	// UpdatedAt is when the override was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEvent is one entry in a manifest's append-only history.
type HistoryEvent struct {
	// ID is a unique event identifier.
	ID string `json:"id"`

	// Type names the event (e.g. "ingested", "extraction_done",
	// "plan_generated").
	Type string `json:"type"`

	// Detail carries event-specific key-value context.
	Detail map[string]string `json:"detail,omitempty"`

	// At is the server-assigned event timestamp.
	At time.Time `json:"at"`
}

// Manifest is the per-document JSON state record. One manifest exists
// per DocID. It is created on first upload, mutated through the
// per-document lock, and never deleted by this core.
type Manifest struct {
	// DocID is the canonical "algo:digest" identifier.
	DocID string `json:"doc_id"`

	// Algo is the hash algorithm component of DocID.
	Algo string `json:"algo"`

	// Hash is the hex digest component of DocID.
	Hash string `json:"hash"`

	// SourceFilename is the original upload filename, kept for display
	// only. It never participates in storage paths.
	SourceFilename string `json:"source_filename"`

	// ByteSize is the size of the original document in bytes.
	ByteSize int64 `json:"byte_size"`

	// Language is the detected document language (ISO 639-1).
	Language string `json:"language,omitempty"`

	// State is the current extraction task state.
	State TaskState `json:"state"`

	// FailureReason is set when State is failed, drawn from the closed
	// reason taxonomy.
	FailureReason string `json:"failure_reason,omitempty"`

	// PageCount and SegmentCount are written after extraction. Readers
	// must tolerate counts that temporarily lag the extracted files.
	PageCount    int `json:"page_count,omitempty"`
	SegmentCount int `json:"segment_count,omitempty"`

	// Tags are free-form labels attached at extraction time.
	Tags []string `json:"tags,omitempty"`

	// Prefill holds metadata inferred by the system, keyed by field name.
	Prefill map[string]PrefillValue `json:"prefill,omitempty"`

	// UserOverrides holds caller-supplied metadata, keyed by field name.
	UserOverrides map[string]OverrideValue `json:"user_overrides,omitempty"`

	// History is the append-only ordered list of timestamped events.
	History []HistoryEvent `json:"history,omitempty"`

	// CreatedAt is set once on first upload and never overwritten.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt reflects the latest write.
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveMetadata merges prefill and overrides into one field map,
// with override precedence.
func (m *Manifest) EffectiveMetadata() map[string]string {
	merged := make(map[string]string, len(m.Prefill)+len(m.UserOverrides))
	for field, pv := range m.Prefill {
		merged[field] = pv.Value
	}
	for field, ov := range m.UserOverrides {
		merged[field] = ov.Value
	}
	return merged
}

// SetPrefill records an inferred value without clobbering an existing
// one. Re-upload of the same document must not lose accumulated prefill.
func (m *Manifest) SetPrefill(field, value, provenance string) {
	if m.Prefill == nil {
		m.Prefill = make(map[string]PrefillValue)
	}
	if _, exists := m.Prefill[field]; exists {
		return
	}
	m.Prefill[field] = PrefillValue{Value: value, Provenance: provenance}
}
