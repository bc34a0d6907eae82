package codec

import "fmt"

// ParseError reports a malformed or truncated table buffer. Every decode
// failure in this package is a ParseError; the context names the structure
// and field that could not be read.
type ParseError struct {
	Context string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %v", e.Context, e.Err)
	}
	return fmt.Sprintf("parse %s", e.Context)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseFail(err error, format string, args ...any) error {
	return &ParseError{Context: fmt.Sprintf(format, args...), Err: err}
}
