package payment

import "errors"

// ErrValidation marks bad caller input, rejected before any side effect.
var ErrValidation = errors.New("invalid payment input")
