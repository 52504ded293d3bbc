package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrInvalidContract     = errors.New("invalid option contract")
	ErrNoUnderlyingPrice   = errors.New("no underlying price available")
	ErrNoQuote             = errors.New("no quote available")
	ErrNoImpliedVolatility = errors.New("no usable implied volatility")
	ErrSymbolRequired      = errors.New("symbol is required")
)
