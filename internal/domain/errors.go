package domain

import "errors"

// ErrNotConfigured is returned when a provider gateway was never initialized,
// typically because AWS configuration could not be built at startup. It is the
// only failure that short-circuits a turn before any provider call is made.
var ErrNotConfigured = errors.New("provider client not initialized")
