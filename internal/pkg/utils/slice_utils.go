package utils

import "strings"

// Batch splits items into consecutive batches of at most batchSize elements.
// A non-positive batchSize yields a single batch.
func Batch[T any](items []T, batchSize int) [][]T {
	if len(items) == 0 {
		return [][]T{}
	}
	if batchSize <= 0 {
		batchSize = len(items)
	}

	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

// UniqueLower lower-cases items and drops empty values and duplicates, keeping the first occurrence.
func UniqueLower(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		v := strings.ToLower(strings.TrimSpace(item))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
