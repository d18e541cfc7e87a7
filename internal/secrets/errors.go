package secrets

import "errors"

var (
	// ErrUnavailable indicates the secret store could not be reached or the
	// secret does not exist.
	ErrUnavailable = errors.New("credentials unavailable")
	// ErrMalformed indicates the secret payload is not the expected shape.
	ErrMalformed = errors.New("malformed credential secret")
)
