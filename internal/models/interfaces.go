package models

import "context"

// StationLoader produces the session's station sequence.
type StationLoader interface {
	Load(ctx context.Context) ([]Station, error)
}
