package repository

// PageRequest is a limit/offset window over an ordered result set.
type PageRequest struct {
	Limit  int
	Offset int
}

// Unpaged returns a request that reads the whole result set.
func Unpaged() PageRequest {
	return PageRequest{Limit: -1}
}

// IsUnpaged reports whether the request reads the whole result set.
func (p PageRequest) IsUnpaged() bool {
	return p.Limit < 0
}
