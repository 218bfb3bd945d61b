// Package locations holds the pickup locations for the active event and the
// per-user "last used location" state.
package locations

import "errors"

type Location struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	Name    string `json:"name"`
	Active  bool   `json:"active"`
}

var ErrNotFound = errors.New("locations: location not found")
