package db

import "errors"

// Domain-level database error sentinels.
var (
	// Link share errors
	ErrLinkShareNoKey = errors.New("link share has no key")
)
