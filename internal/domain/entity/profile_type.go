// Package entity contains the core business objects of the project.
package entity

import "slices"

// ProfileType classifies an identity as a buyer or a seller.
type ProfileType string

const (
	// ProfileTypeCustomer marks identities that place orders and write reviews.
	ProfileTypeCustomer ProfileType = "customer"
	// ProfileTypeBusiness marks identities that publish offers and fulfil orders.
	ProfileTypeBusiness ProfileType = "business"
)

// String returns the string representation of the ProfileType.
func (t ProfileType) String() string {
	return string(t)
}

// IsValid checks if the ProfileType is a valid value.
func (t ProfileType) IsValid() bool {
	switch t {
	case ProfileTypeCustomer, ProfileTypeBusiness:
		return true
	default:
		return false
	}
}

// ProfileTypes is a slice of ProfileType for convenience.
type ProfileTypes []ProfileType

// Contains checks if the slice contains a specific profile type.
func (ts ProfileTypes) Contains(t ProfileType) bool {
	return slices.Contains(ts, t)
}

// ToStrings converts ProfileTypes to []string.
func (ts ProfileTypes) ToStrings() []string {
	result := make([]string, len(ts))
	for i, t := range ts {
		result[i] = t.String()
	}

	return result
}

// AllProfileTypes lists every accepted profile type.
func AllProfileTypes() ProfileTypes {
	return ProfileTypes{ProfileTypeCustomer, ProfileTypeBusiness}
}
