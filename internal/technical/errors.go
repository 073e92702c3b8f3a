package technical

import "errors"

var (
	// ErrInsufficientData is returned when the bar series is empty and no
	// indicator has anything to say about it.
	ErrInsufficientData = errors.New("technical: empty bar series")

	// ErrComputation is returned when a well-formed series still produced a
	// non-finite indicator value. It aborts the enclosing report only.
	ErrComputation = errors.New("technical: computation failed")
)
