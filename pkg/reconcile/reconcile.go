// Package reconcile merges remote encounter records with local store
// directories into at most one result per tracked encounter. Both inputs
// are best-effort descriptions of the same physical fight: the remote
// listing is joined by time correlation, which is approximate, while the
// local encounter-name match is exact.
package reconcile

import (
	"time"

	"github.com/mvarnah/wingman/pkg/catalog"
	"github.com/mvarnah/wingman/pkg/store"
)

// RemoteRecord is the reconciler's view of one remote listing item.
type RemoteRecord struct {
	AreaID    int64
	Link      string
	StartedAt int64
}

// BossResult is the unified record handed to the renderer. At most one
// exists per tracked encounter per run, and it always carries at least
// one of RemoteLink or Permalink.
type BossResult struct {
	Type       *catalog.EncounterType
	StartTime  time.Time
	RemoteLink string
	Permalink  string
	Accounts   []string
	LocalKey   string
}

// RemoteAssigner picks the first (newest, in listing order) remote record
// per tracked encounter while the listing is still being paged. Done
// reports when every tracked type has an assignment, which lets the
// lister terminate early.
type RemoteAssigner struct {
	types    []*catalog.EncounterType
	assigned map[string]RemoteRecord
}

func NewRemoteAssigner(types []*catalog.EncounterType) *RemoteAssigner {
	return &RemoteAssigner{types: types, assigned: make(map[string]RemoteRecord)}
}

// Offer files rec under the first tracked type whose area ids match.
// Later records never overwrite an existing assignment.
func (a *RemoteAssigner) Offer(rec RemoteRecord) {
	for _, t := range a.types {
		if !t.Matches(rec.AreaID) {
			continue
		}
		if _, taken := a.assigned[t.Name]; !taken {
			a.assigned[t.Name] = rec
		}
		return
	}
}

func (a *RemoteAssigner) Done() bool {
	return len(a.assigned) == len(a.types)
}

// Assigned returns the per-type assignments keyed by encounter name.
func (a *RemoteAssigner) Assigned() map[string]RemoteRecord {
	return a.assigned
}

// Reconcile matches remote assignments against the local store and merges
// them. For each tracked type the newest local directory whose recorded
// name equals the type's display name is selected; independently the
// assigned remote record is taken. When preferLocal is set and the remote
// record's start-map keys do not include the selected local directory,
// the two disagree about which log they describe and the remote link is
// discarded — local data is ground truth.
func Reconcile(types []*catalog.EncounterType, remote map[string]RemoteRecord, st *store.Store, since int64, preferLocal bool) ([]BossResult, error) {
	locals, err := st.ScanSince(since)
	if err != nil {
		return nil, err
	}

	var results []BossResult
	for _, t := range types {
		var local *store.LocalEncounter
		for _, enc := range locals {
			if enc.Name == t.Name {
				local = enc
				break
			}
		}

		rec, hasRemote := remote[t.Name]
		if local == nil && !hasRemote {
			continue
		}

		if hasRemote && preferLocal && local != nil {
			if !containsKey(st.KeysForStart(rec.StartedAt), local.Key) {
				hasRemote = false
			}
		}

		res := BossResult{Type: t}
		if hasRemote {
			res.RemoteLink = rec.Link
			res.StartTime = time.Unix(rec.StartedAt, 0)
		}
		if local != nil {
			res.LocalKey = local.Key
			res.Permalink = local.Permalink
			for _, acc := range local.Accounts {
				res.Accounts = append(res.Accounts, st.DisplayName(acc))
			}
			if !hasRemote {
				res.StartTime = local.ModTime
			}
		}

		// A result with no link at all has nothing to report.
		if res.RemoteLink == "" && res.Permalink == "" {
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
