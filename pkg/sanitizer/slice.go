package sanitizer

import "sort"

// NormalizeIntSlice deduplicates and sorts, used for recurrence weekdays
// and days-of-month so stored patterns compare predictably. Empty input
// stays nil so optional day sets remain omitted.
func NormalizeIntSlice(items []int) []int {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	result := make([]int, 0, len(items))

	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}

	sort.Ints(result)
	return result
}
