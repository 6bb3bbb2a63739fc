/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package dialect

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDialect     = errors.New("dialect: unknown dialect")
	ErrInvalidPageRequest = errors.New("dialect: invalid page request")
	ErrInvalidDirection   = errors.New("dialect: invalid sort direction")
)

// UnknownDialectError no dialect registered for ProductName
type UnknownDialectError struct {
	ProductName string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownDialect, e.ProductName)
}

func (e *UnknownDialectError) Is(target error) bool {
	return target == ErrUnknownDialect
}
