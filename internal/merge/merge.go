// Package merge combines many per-user documents into the single master
// document the supporter dashboard is built from. Everything here is a
// pure function over well-formed input; partial fragments (missing
// fields) behave as empty collections and never fault.
package merge

import (
	"github.com/bganesh/bprogress/internal/catalog"
	"github.com/bganesh/bprogress/internal/models"
)

// DefaultDocument returns the empty accumulator every load and every
// aggregation starts from: catalog users and tasks, nothing else.
func DefaultDocument() *models.Document {
	return &models.Document{
		Users:    catalog.SeedUsers(),
		Tasks:    catalog.Tasks(),
		Records:  []models.ProgressRecord{},
		Messages: []models.Message{},
		Groups:   []models.Group{},
		Statuses: []models.StatusUpdate{},
	}
}

// Merge folds one fragment into the accumulator and returns it.
//
// Per-field policy:
//   - users: the accumulator gains exactly the fragment's owner
//     identity. The fragment's embedded user list is ignored so stale
//     or duplicate roster copies never re-enter the merged view.
//   - records, messages, statuses: concatenation. Each is authored by
//     exactly one user's document, so no cross-fragment de-duplication
//     is attempted. Chronological order is applied at query time, not
//     here.
//   - groups: de-duplicated by id, last writer wins; a group keeps the
//     position of its first appearance.
//   - tasks: untouched. The catalog is static and already seeded.
func Merge(acc, fragment *models.Document) *models.Document {
	if fragment == nil {
		return acc
	}
	if fragment.Owner != nil {
		acc.Users = append(acc.Users, *fragment.Owner)
	}
	acc.Records = append(acc.Records, fragment.Records...)
	acc.Messages = append(acc.Messages, fragment.Messages...)
	acc.Statuses = append(acc.Statuses, fragment.Statuses...)
	acc.Groups = mergeGroups(acc.Groups, fragment.Groups)
	return acc
}

// MergeAll reduces fragments left-to-right into a fresh default
// accumulator. Fragment order is store-enumeration order and is not
// guaranteed stable across runs.
func MergeAll(fragments []*models.Document) *models.Document {
	acc := DefaultDocument()
	for _, fragment := range fragments {
		acc = Merge(acc, fragment)
	}
	return acc
}

// mergeGroups keeps one entry per group id. A later entry overwrites an
// earlier one in place, so first-appearance order is preserved.
func mergeGroups(existing, incoming []models.Group) []models.Group {
	index := make(map[string]int, len(existing))
	for i, g := range existing {
		index[g.ID] = i
	}
	for _, g := range incoming {
		if i, ok := index[g.ID]; ok {
			existing[i] = g
			continue
		}
		index[g.ID] = len(existing)
		existing = append(existing, g)
	}
	return existing
}
