// Package constants holds configuration values shared across layers.
package constants

// Pub/Sub provider names accepted in configuration.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
	PubSubProviderNoop   = "noop"
)

// Blob folders for uploaded files.
const (
	StorageFolderProfiles = "profile"
	StorageFolderOffers   = "offers"
)
