package fsstore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure notionStore implements the interface.
var _ driven.NotionStore = (*notionStore)(nil)

// notionStore implements driven.NotionStore as an append-only JSONL
// stream at the store root. Records are never mutated in place, so
// notion history is reconstructable by replaying the file.
type notionStore struct {
	store *Store
}

// AppendNotion appends one notion version.
func (n *notionStore) AppendNotion(ctx context.Context, notion domain.Notion) error {
	return n.appendRecord(domain.NotionRecord{Kind: domain.KindNotion, Notion: &notion})
}

// AppendContribution appends one contribution record.
func (n *notionStore) AppendContribution(ctx context.Context, c domain.Contribution) error {
	return n.appendRecord(domain.NotionRecord{Kind: domain.KindContribution, Contribution: &c})
}

// ListNotions returns the latest version of every notion.
func (n *notionStore) ListNotions(ctx context.Context) ([]domain.Notion, error) {
	records, err := n.scan()
	if err != nil {
		return nil, err
	}

	latest := make(map[string]domain.Notion)
	var order []string
	for _, rec := range records {
		if rec.Kind != domain.KindNotion || rec.Notion == nil {
			continue
		}
		if _, seen := latest[rec.Notion.ID]; !seen {
			order = append(order, rec.Notion.ID)
		}
		if rec.Notion.Version >= latest[rec.Notion.ID].Version {
			latest[rec.Notion.ID] = *rec.Notion
		}
	}

	notions := make([]domain.Notion, 0, len(latest))
	for _, id := range order {
		notions = append(notions, latest[id])
	}
	return notions, nil
}

// MaxVersion returns the highest committed version for a notion id.
func (n *notionStore) MaxVersion(ctx context.Context, notionID string) (int, error) {
	records, err := n.scan()
	if err != nil {
		return 0, err
	}

	maxVersion := 0
	for _, rec := range records {
		if rec.Kind == domain.KindNotion && rec.Notion != nil &&
			rec.Notion.ID == notionID && rec.Notion.Version > maxVersion {
			maxVersion = rec.Notion.Version
		}
	}
	return maxVersion, nil
}

// appendRecord writes one record line. The file is opened in append
// mode and each record is a single write, so concurrent appenders from
// this process never interleave.
func (n *notionStore) appendRecord(rec domain.NotionRecord) error {
	n.store.notionsMu.Lock()
	defer n.store.notionsMu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling notion record: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(filepath.Join(n.store.root, notionsFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening notions file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("appending notion record: %w", err)
	}
	return nil
}

// scan replays the full record stream.
func (n *notionStore) scan() ([]domain.NotionRecord, error) {
	f, err := os.Open(filepath.Join(n.store.root, notionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening notions file: %w", err)
	}
	defer f.Close()

	var records []domain.NotionRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec domain.NotionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("unmarshalling notion record: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning notions file: %w", err)
	}
	return records, nil
}
