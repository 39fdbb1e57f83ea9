package catalog

import (
	"errors"
	"fmt"
)

var (
	// The document is missing markup the parser depends on. The course is skipped.
	ErrUnparsable = errors.New("unparsable course")
	// The document uses a field or code outside the known vocabulary. Extraction halts.
	ErrSchemaDrift = errors.New("catalog schema drift")
)

type CourseError struct {
	URL string
	Err error
}

func (e *CourseError) Error() string {
	return fmt.Sprintf("%v: %v", e.URL, e.Err)
}

func (e *CourseError) Unwrap() error {
	return e.Err
}

func unparsable(format string, args ...any) error {
	return fmt.Errorf("%w: %v", ErrUnparsable, fmt.Sprintf(format, args...))
}

func schemaDrift(format string, args ...any) error {
	return fmt.Errorf("%w: %v", ErrSchemaDrift, fmt.Sprintf(format, args...))
}
