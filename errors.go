package escapetime

import "errors"

// ErrInvalidParameter is returned for out-of-range grid or evaluation
// parameters. It is always raised eagerly, before any computation starts;
// there is no partial result to recover.
var ErrInvalidParameter = errors.New("invalid parameter")
