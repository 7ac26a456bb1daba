package board

// DefaultPageSize is the number of rows per dashboard page.
const DefaultPageSize = 10

// PageCount returns ceil(len(list)/pageSize), or 0 for a non-positive size.
func PageCount[T any](list []T, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (len(list) + pageSize - 1) / pageSize
}

// Page returns the 1-based page of list. Out-of-range pages are empty.
func Page[T any](list []T, pageNumber, pageSize int) []T {
	if pageSize <= 0 || pageNumber < 1 {
		return []T{}
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(list) {
		return []T{}
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
