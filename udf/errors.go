package udf

import "errors"

var (
	// ErrFunctionNotFound is returned when invoking a function name that
	// has not been registered, directly or via plugin load.
	ErrFunctionNotFound = errors.New("udf: function not registered")

	// ErrKindMismatch is returned when a caller invokes a registered
	// function through the wrong Kind-specific accessor.
	ErrKindMismatch = errors.New("udf: function registered under a different kind")

	// ErrSymbolNotFunc is returned when a plugin symbol exists but does not
	// satisfy the expected function signature for its Kind.
	ErrSymbolNotFunc = errors.New("udf: plugin symbol has the wrong signature")

	// ErrAlreadyRegistered is returned by Register when a name is already
	// bound and the caller did not request an overwrite.
	ErrAlreadyRegistered = errors.New("udf: function already registered")
)
