// Package service declares the infrastructure capabilities the usecases depend on.
package service

// PasswordHasher hashes account passwords at registration and verifies them at login.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Check reports whether password matches hash. Any hash error counts as a mismatch.
	Check(password, hash string) bool
}
