package domain

import (
	"errors"
)

var (
	ErrInvalidPricingInput = errors.New("invalid pricing input")
)
