package xplm

import "errors"

// ErrNoSharedValues is returned by a SharedValuesProvider when the vendor
// plugin exposing the interface is not loaded or refused the handshake.
var ErrNoSharedValues = errors.New("shared value interface unavailable")

// SharedValues is the path-keyed value tree some vendor plugins expose
// beside the regular data fields.
type SharedValues interface {
	// Version is the interface version reported during the handshake.
	Version() string
	// ValueID resolves a dotted path, returning -1 when it does not exist.
	ValueID(path string) int
	GetFloat(id int) float64
	SetFloat(id int, v float64)
	GetInt(id int) int
	SetInt(id int, v int)
}

// SharedValuesProvider performs the inter-plugin handshake.
type SharedValuesProvider interface {
	SharedValues() (SharedValues, error)
}
