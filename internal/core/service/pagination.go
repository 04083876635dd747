package service

// Page bounds for listings.
const (
	DefaultTaskLimit = 10
	MaxTaskLimit     = 50
	DefaultUserLimit = 20
	MaxUserLimit     = 100
)

// clampPage normalises page and limit into [1, ∞) and [1, max].
func clampPage(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
