package document

import (
	"errors"
	"fmt"
)

// FormatError reports a result document that cannot be ingested.
type FormatError struct {
	Code    string
	Message string
}

// Error codes for FormatError.
const (
	ErrCodeSyntax         = "XML_SYNTAX"
	ErrCodeMissingSection = "MISSING_SECTION"
	ErrCodeBadValue       = "BAD_VALUE"
)

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsFormatError reports whether err wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
