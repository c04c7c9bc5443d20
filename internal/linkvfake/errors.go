package linkvfake

import "errors"

// ErrKeyNotFound is returned by CAS when key does not exist and
// createIfNotExists was false.
var ErrKeyNotFound = errors.New("linkvfake: key not found")

// ErrCasMismatch is returned by CAS when the stored value does not match
// from.
var ErrCasMismatch = errors.New("linkvfake: current value does not match from")
