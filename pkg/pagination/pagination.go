package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many documents any list query can request.
	MaxLimit = 100
)

// Params holds page-based pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage treats anything below one as the first page.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Skip converts (page, limit) into a document offset.
func (p Params) Skip() int64 {
	return int64((NormalizePage(p.Page) - 1) * NormalizeLimit(p.Limit))
}

// Take returns the effective page size.
func (p Params) Take() int64 {
	return int64(NormalizeLimit(p.Limit))
}
