package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrAmbiguousAlias  = errors.New("ambiguous alias")
	ErrInvalidQuery    = errors.New("invalid query")
	ErrRecordNotFound  = errors.New("record not found")
	ErrIndexNotFound   = errors.New("index not found")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
