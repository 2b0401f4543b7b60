// Package store reads the local encounter store: one directory per parsed
// log, written by the external ingestion pipeline, plus a start-timestamp
// index used to join remote records to local directories.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	nameRecord      = "encounter.txt"
	accountsRecord  = "accounts.json"
	permalinkRecord = "dpsreport.txt"
	startsDir       = "starts"
)

type Store struct {
	Root string

	// Identities maps game account names to chat display names. Accounts
	// without a mapping are rendered emphasized instead of dropped.
	Identities map[string]string
}

// LocalEncounter is the read-only view of one store directory.
type LocalEncounter struct {
	Key       string
	Name      string
	Accounts  []string
	Permalink string
	ModTime   time.Time
}

// Read loads one store directory by key. A missing directory or missing
// encounter-name record means not found; missing accounts or permalink
// records are not errors and leave those fields empty.
func (s *Store) Read(key string) (*LocalEncounter, bool) {
	dir := filepath.Join(s.Root, key)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, false
	}

	nameBytes, err := os.ReadFile(filepath.Join(dir, nameRecord))
	if err != nil {
		return nil, false
	}

	enc := &LocalEncounter{
		Key:     key,
		Name:    strings.TrimSpace(string(nameBytes)),
		ModTime: info.ModTime(),
	}

	if raw, err := os.ReadFile(filepath.Join(dir, accountsRecord)); err == nil {
		for _, acc := range gjson.ParseBytes(raw).Array() {
			enc.Accounts = append(enc.Accounts, acc.String())
		}
	}
	if raw, err := os.ReadFile(filepath.Join(dir, permalinkRecord)); err == nil {
		enc.Permalink = strings.TrimSpace(string(raw))
	}

	return enc, true
}

// KeysForStart returns the directory keys filed under the start-timestamp
// index for ts. An absent index entry yields an empty slice.
func (s *Store) KeysForStart(ts int64) []string {
	entries, err := os.ReadDir(filepath.Join(s.Root, startsDir, strconv.FormatInt(ts, 10)))
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Name())
	}
	return keys
}

// ScanSince loads every store directory modified after since (all of them
// when since is zero), newest first by directory modification time.
func (s *Store) ScanSince(since int64) ([]*LocalEncounter, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, err
	}

	var found []*LocalEncounter
	cutoff := time.Unix(since, 0)
	for _, e := range entries {
		if !e.IsDir() || e.Name() == startsDir {
			continue
		}
		enc, ok := s.Read(e.Name())
		if !ok {
			continue
		}
		if since > 0 && !enc.ModTime.After(cutoff) {
			continue
		}
		found = append(found, enc)
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].ModTime.After(found[j].ModTime)
	})
	return found, nil
}

// DisplayName translates an account name through the identity map. An
// unmapped account comes back emphasized so it stands out in the report
// rather than silently disappearing.
func (s *Store) DisplayName(account string) string {
	if name, ok := s.Identities[account]; ok && name != "" {
		return name
	}
	// viper hands config maps back with lowercased keys.
	if name, ok := s.Identities[strings.ToLower(account)]; ok && name != "" {
		return name
	}
	return "*" + account + "*"
}
