package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Table is one country's postal-code lookup table. Tables are produced by
// the offline builders, written as standalone snapshot files, and loaded
// read-only at process start. A published table is never mutated: a new
// electoral map produces a new file.
type Table struct {
	Country  string `json:"country"`
	Strategy string `json:"strategy"`

	// Fingerprint is a blake2b-256 digest of the canonical entry data.
	// Rebuilding from unchanged inputs reproduces it exactly, which is
	// what lets operators diff snapshot versions byte for byte.
	Fingerprint string `json:"fingerprint"`

	// Entries maps a normalized postal code (or prefix) to its sorted,
	// deduplicated district ids. A postal code with no districts is
	// absent, never present with an empty set.
	Entries map[string][]string `json:"entries"`

	// Regions optionally maps a postal-code prefix to an upper-chamber
	// region code (e.g. US ZIP3 -> state).
	Regions map[string]string `json:"regions,omitempty"`

	// Overridden records provenance notes for postal codes whose entries
	// came from the manual override table rather than composition.
	Overridden map[string]string `json:"overridden,omitempty"`
}

// Canonicalize sorts and deduplicates every entry and drops empty sets,
// so that encoding the table is deterministic.
func (t *Table) Canonicalize() {
	for code, ids := range t.Entries {
		if len(ids) == 0 {
			delete(t.Entries, code)
			continue
		}
		sort.Strings(ids)
		out := ids[:0]
		for i, id := range ids {
			if id == "" || (i > 0 && id == ids[i-1]) {
				continue
			}
			out = append(out, id)
		}
		if len(out) == 0 {
			delete(t.Entries, code)
			continue
		}
		t.Entries[code] = out
	}
}

// ComputeFingerprint digests the canonical entry data. Only lookup data
// participates; provenance notes do not change the fingerprint.
func (t *Table) ComputeFingerprint() (string, error) {
	payload := struct {
		Entries map[string][]string `json:"entries"`
		Regions map[string]string   `json:"regions,omitempty"`
	}{t.Entries, t.Regions}

	// encoding/json writes map keys in sorted order, so this is stable.
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode snapshot payload: %w", err)
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Write canonicalizes, fingerprints, and persists the table. Output is
// byte-identical across runs for identical data.
func Write(path string, t *Table) error {
	if t.Country == "" || t.Strategy == "" {
		return fmt.Errorf("snapshot missing country or strategy")
	}
	t.Canonicalize()
	if len(t.Entries) == 0 {
		return fmt.Errorf("refusing to write empty snapshot for %s", t.Country)
	}

	fp, err := t.ComputeFingerprint()
	if err != nil {
		return err
	}
	t.Fingerprint = fp

	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	b = append(b, '\n')

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads a snapshot file and verifies its fingerprint and the
// non-empty-entries invariant before handing it to the resolver.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var t Table
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if t.Country == "" {
		return nil, fmt.Errorf("snapshot %s missing country", path)
	}
	for code, ids := range t.Entries {
		if len(ids) == 0 {
			return nil, fmt.Errorf("snapshot %s: empty district set for %q", path, code)
		}
	}

	fp, err := t.ComputeFingerprint()
	if err != nil {
		return nil, err
	}
	if t.Fingerprint != "" && t.Fingerprint != fp {
		return nil, fmt.Errorf("snapshot %s fingerprint mismatch: file says %s, data is %s", path, t.Fingerprint, fp)
	}

	return &t, nil
}
