package collection

import "errors"

var (
	// ErrFrozen is returned when a frozen builder is mutated or committed again.
	ErrFrozen = errors.New("collection is frozen")

	// ErrInvalidNode is returned when a nil node or a node without a key is added.
	ErrInvalidNode = errors.New("invalid node")

	// ErrNotImplemented is returned by capability accessors the store does not provide.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidStructure is wrapped by every error Validate reports.
	ErrInvalidStructure = errors.New("invalid collection structure")
)
