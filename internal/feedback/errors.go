package feedback

import "errors"

var (
	// ErrProviderRequired is returned when no search provider is given.
	ErrProviderRequired = errors.New("search provider required")

	// ErrJudgeRequired is returned when no judgment source is given.
	ErrJudgeRequired = errors.New("judge required")

	// ErrEmptyQuery is returned when the initial query has no terms.
	ErrEmptyQuery = errors.New("query has no terms")

	// ErrInvalidTarget is returned when the target precision is outside [0, 1].
	ErrInvalidTarget = errors.New("target precision must be within [0, 1]")
)
