package paramstore

import "errors"

// Sentinel errors identifying the parameter store's failure modes.
var (
	ErrKeyNotFound = errors.New("paramstore: key not found")
	ErrNotActive   = errors.New("paramstore: store is not active")
)
