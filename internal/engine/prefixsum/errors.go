package prefixsum

import "errors"

// ErrInvalidArgument indicates an index or value outside the accepted range.
var ErrInvalidArgument = errors.New("invalid argument")
