// Package store holds the persistent moderator set. Two implementations
// exist: a flat JSON file for zero-config deployments and a gorm-backed
// table when a database is configured.
package store

import (
	"context"
	"sort"
)

// ModeratorStore is the permission set shared by the webhook path and
// the scheduler. Implementations serialize access internally.
type ModeratorStore interface {
	Add(ctx context.Context, userID string) error
	Remove(ctx context.Context, userID string) (bool, error)
	IsModerator(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context) ([]string, error)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
