package directory

import "twinhost/pkg/twin"

// Store is the durable twin directory. Profiles are whole-record replacements
// keyed by name, so last-write-wins is acceptable under concurrent upserts.
type Store interface {
	// Upsert inserts or replaces the profile under its derived name.
	Upsert(profile *twin.Profile) error
	// GetByName returns the profile or a NotFoundError.
	GetByName(name string) (*twin.Profile, error)
	// ListAll returns every imported profile, order unspecified.
	ListAll() ([]*twin.Profile, error)
}
