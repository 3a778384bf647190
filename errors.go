package iso3166

import (
	"errors"
	"fmt"
)

var (
	// ErrIntegrityMismatch is matched by errors returned from NewStore when the
	// acquired bytes do not hash to the expected digest.
	ErrIntegrityMismatch = errors.New("iso3166: dataset digest mismatch")

	// ErrNotImplemented is returned for source URL schemes that cannot be fetched.
	ErrNotImplemented = errors.New("iso3166: not implemented")

	// ErrKeyNotFound is matched by errors returned from Get for unknown codes.
	ErrKeyNotFound = errors.New("iso3166: code not found")
)

// Origin identifies where dataset bytes were acquired from.
type Origin int

const (
	OriginRemote Origin = iota
	OriginCache
)

func (o Origin) String() string {
	switch o {
	case OriginCache:
		return "cache"
	case OriginRemote:
		return "remote"
	}
	return fmt.Sprintf("Origin(%d)", int(o))
}

// IntegrityError reports a digest mismatch. It matches ErrIntegrityMismatch.
type IntegrityError struct {
	Expected string
	Actual   string
	Origin   Origin
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("iso3166: %s dataset digest mismatch: got %s, want %s", e.Origin, e.Actual, e.Expected)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrityMismatch }

// KeyNotFoundError reports a lookup for an unknown code. It matches ErrKeyNotFound.
type KeyNotFoundError struct {
	Code string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("iso3166: code %q not found", e.Code)
}

func (e *KeyNotFoundError) Is(target error) bool { return target == ErrKeyNotFound }
