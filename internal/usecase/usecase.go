// Package usecase contains the application-specific business rules.
// Every operation receives the acting caller explicitly; a nil caller is anonymous.
package usecase

// PageResult is one page of a list together with the size of the whole result set.
type PageResult[T any] struct {
	Items []T
	Total int64
}
