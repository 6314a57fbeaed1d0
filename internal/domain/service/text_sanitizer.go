package service

// TextSanitizer strips markup from user-supplied free text.
type TextSanitizer interface {
	Sanitize(input string) string
}
