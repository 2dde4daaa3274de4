package domain

import "errors"

// ErrValidation flags a missing or malformed required field detected in the
// core, after transport-level validation has already run.
var ErrValidation = errors.New("missing or invalid field")
