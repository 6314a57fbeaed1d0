// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// User is the identity behind every request: credentials plus the one-to-one profile.
type User struct {
	ID           int64     // Numeric identity id, also the profile id.
	Username     string    // Unique login handle.
	Email        string    // Unique, stored lower-cased.
	FirstName    string    // Optional given name.
	LastName     string    // Optional family name.
	PasswordHash string    // bcrypt hash of the secret credential.
	IsStaff      bool      // Privileged operator flag.
	Profile      *Profile  // Loaded with the user; nil only for half-built records.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this account.
}

// Type returns the profile type, or an empty value when no profile is attached.
func (u *User) Type() ProfileType {
	if u == nil || u.Profile == nil {
		return ""
	}

	return u.Profile.Type
}

// Profile extends an identity with its marketplace role and contact metadata.
type Profile struct {
	UserID       int64       // Primary key, equal to the owning user id.
	Type         ProfileType // Customer or business, fixed at registration.
	File         *string     // Blob key of the uploaded profile file.
	UploadedAt   *time.Time  // Set whenever File is set.
	Location     *string
	Tel          *string
	Description  *string
	WorkingHours *string
	CreatedAt    time.Time
}

// AttachFile stores a new file key and stamps the upload time.
func (p *Profile) AttachFile(key string, now time.Time) {
	p.File = &key
	p.UploadedAt = &now
}

// ClearFile removes the file and its upload time together.
func (p *Profile) ClearFile() {
	p.File = nil
	p.UploadedAt = nil
}

// HasFile reports whether a file is attached.
func (p *Profile) HasFile() bool {
	return p.File != nil && *p.File != ""
}
