package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string. Bid IDs sort lexicographically by creation
// time, which keeps the SQLite history index cheap to walk in order.
func New() string {
	return ulid.Make().String()
}
