package is

import "errors"

// Errors returned by Convert, Is and IsValue. Each is returned wrapped, so
// compare with errors.Is.
var (
	ErrMalformedTest  = errors.New("expected function, string, or object as test")
	ErrInvalidIndex   = errors.New("expected positive finite index")
	ErrInvalidParent  = errors.New("expected parent node")
	ErrMissingPairing = errors.New("expected both parent and index")
)
