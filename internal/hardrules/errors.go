package hardrules

import "errors"

// ErrInvalidRule indicates a rule table entry failed validation.
var ErrInvalidRule = errors.New("invalid hard rule")
