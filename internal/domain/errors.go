package domain

import "github.com/pkg/errors"

var (
	// ErrRecordNotFound is returned when a lookup or update matches no row.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnsupportedCacheBackend is returned by the first cache operation when
	// the configured backend kind is missing or unknown.
	ErrUnsupportedCacheBackend = errors.New("unsupported cache backend")

	// ErrCacheClearUnsupported is returned by backends that refuse a full flush.
	ErrCacheClearUnsupported = errors.New("cache clear is not supported by this backend")

	// ErrEmptyPayload is returned when the upstream answered without a usable entity.
	ErrEmptyPayload = errors.New("upstream response has no data")

	// ErrInvalidEntity is returned when an entity cannot produce write parameters.
	ErrInvalidEntity = errors.New("invalid entity")
)
