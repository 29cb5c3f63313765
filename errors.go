package strictxml

import "fmt"

// ErrParseError wraps a terminal parse failure with the position where it
// was detected. Offset is a byte offset into the full input stream; Line
// and Column are 1-based, with columns counted in codepoints.
type ErrParseError struct {
	Err    error
	Offset int
	Line   int
	Column int
}

func (e ErrParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d (byte %d)",
		e.Err,
		e.Line,
		e.Column,
		e.Offset,
	)
}

func (e ErrParseError) Unwrap() error {
	return e.Err
}

// errorAt wraps err with an explicit position. Already-wrapped errors
// pass through unchanged so the innermost detection point wins.
func errorAt(err error, pos position) error {
	if _, ok := err.(ErrParseError); ok {
		return err
	}
	return ErrParseError{
		Err:    err,
		Offset: pos.offset,
		Line:   pos.line,
		Column: pos.column,
	}
}
