package analysis

import "errors"

// The two error kinds every validated operation can surface. Both are raised
// at request construction or at the start of a query, never after partially
// consuming the loaded tables. Callers distinguish them with errors.Is.
var (
	// ErrArgumentType reports a parameter whose runtime type does not match
	// its declared semantic type (a non-integer count, a non-numeric height,
	// a non-string gender or genre).
	ErrArgumentType = errors.New("invalid argument type")

	// ErrArgumentValue reports a parameter of the right type that violates a
	// domain constraint (non-positive count, inverted or implausible height
	// bounds, unknown period, genre absent from the dataset).
	ErrArgumentValue = errors.New("invalid argument value")
)
