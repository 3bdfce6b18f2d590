package users

import "errors"

// Error conditions distinguishable by callers. ErrEmailInUse maps to a
// conflict response at the HTTP boundary; ErrMalformedID never escapes
// the service, which converts it to a not-found outcome after logging.
var (
	ErrEmailInUse  = errors.New("email is already in use")
	ErrMalformedID = errors.New("malformed user id")
)
