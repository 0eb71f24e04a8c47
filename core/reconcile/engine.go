package reconcile

import "strings"

// Apply returns the list that results from one change notification.
//
// The record is the latest known state of one entity, whatever the upstream
// operation was. A record that is not visible removes any entry with its key;
// a visible record replaces the existing entry in place or is appended.
// The input list is never modified.
func Apply[T any](adapter Adapter[T], list []T, record T) []T {
	key := adapter.Key(record)

	if !adapter.Visible(record) {
		if indexOf(adapter, list, key) < 0 {
			return list
		}
		out := make([]T, 0, len(list)-1)
		for _, item := range list {
			if adapter.Key(item) != key {
				out = append(out, item)
			}
		}
		return out
	}

	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	if idx := indexOf(adapter, list, key); idx >= 0 {
		out[idx] = record
		return out
	}
	return append(out, record)
}

// Build folds records into an empty list with Apply. Store order is kept,
// invisible records are skipped and a repeated key keeps its first position.
func Build[T any](adapter Adapter[T], records []T) []T {
	list := make([]T, 0, len(records))
	for _, record := range records {
		list = Apply(adapter, list, record)
	}
	return list
}

// Filter returns the subsequence of list whose search fields contain query,
// case-insensitively, in original order. An empty or whitespace-only query
// returns list unchanged.
func Filter[T any](adapter Adapter[T], list []T, query string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}

	out := make([]T, 0)
	for _, item := range list {
		for _, field := range adapter.SearchFields(item) {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func indexOf[T any](adapter Adapter[T], list []T, key string) int {
	for i, item := range list {
		if adapter.Key(item) == key {
			return i
		}
	}
	return -1
}
