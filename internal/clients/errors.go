package clients

import "github.com/pkg/errors"

// ErrSourceUnavailable marks a non-success response from an external source.
// The price path treats it as skippable per asset; balance paths treat any
// fetch error as fatal for their run.
var ErrSourceUnavailable = errors.New("source unavailable")
