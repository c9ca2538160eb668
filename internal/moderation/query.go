// Package moderation backs the admin user and seller lists: fetch once,
// then filter, search and sort in memory.
package moderation

import (
	"sort"
	"strings"
	"time"
)

type SortMode string

const (
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
	SortName   SortMode = "name"
	SortEmail  SortMode = "email"
	SortRole   SortMode = "role"
)

// FilterAll disables a filter, as does "".
const FilterAll = "all"

// Query is the list toolbar state. Status applies to sellers, Role to
// users.
type Query struct {
	Search string
	Status string
	Role   string
	Sort   SortMode
}

// row is the projection filter and sort work on.
type row struct {
	haystack  []string
	name      string
	email     string
	role      string
	createdAt time.Time
}

func matches(filter, value string) bool {
	return filter == "" || filter == FilterAll || filter == value
}

func matchesSearch(search string, fields []string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// sortIndexes orders idx by mode, keeping fetch order on ties. An unknown
// mode keeps fetch order.
func sortIndexes(idx []int, rows []row, mode SortMode) {
	var less func(a, b row) bool
	switch mode {
	case "", SortNewest:
		less = func(a, b row) bool { return a.createdAt.After(b.createdAt) }
	case SortOldest:
		less = func(a, b row) bool { return a.createdAt.Before(b.createdAt) }
	case SortName:
		less = func(a, b row) bool { return strings.ToLower(a.name) < strings.ToLower(b.name) }
	case SortEmail:
		less = func(a, b row) bool { return strings.ToLower(a.email) < strings.ToLower(b.email) }
	case SortRole:
		less = func(a, b row) bool { return a.role < b.role }
	default:
		return
	}
	sort.SliceStable(idx, func(i, j int) bool { return less(rows[idx[i]], rows[idx[j]]) })
}
