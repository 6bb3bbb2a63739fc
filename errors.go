/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"errors"
	"fmt"
)

var (
	ErrNilDriver                = errors.New("sqlmark: dialect(driver) is nil")
	ErrNilDB                    = errors.New("sqlmark: db is nil")
	ErrTemplateNotFound         = errors.New("sqlmark: template not found")
	ErrMalformedTemplate        = errors.New("sqlmark: malformed template")
	ErrParameterBindingMismatch = errors.New("sqlmark: parameter binding mismatch")
)

// MalformedTemplateError 模板语法错误（未闭合的引号/注释/:{...}，或非法的 : 标记）
type MalformedTemplateError struct {
	ID     string
	Offset int
	Reason string
}

func (e *MalformedTemplateError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s at offset %d", ErrMalformedTemplate, e.Reason, e.Offset)
	}
	return fmt.Sprintf("%s: %s at offset %d in %s", ErrMalformedTemplate, e.Reason, e.Offset, e.ID)
}

func (e *MalformedTemplateError) Is(target error) bool {
	return target == ErrMalformedTemplate
}

// ParameterBindingMismatchError is returned when a placeholder cannot be given a value.
// Name is empty for positional placeholders.
type ParameterBindingMismatchError struct {
	Ordinal int
	Name    string
	Reason  string
}

func (e *ParameterBindingMismatchError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: positional parameter #%d: %s", ErrParameterBindingMismatch, e.Ordinal, e.Reason)
	}
	return fmt.Sprintf("%s: parameter #%d %q: %s", ErrParameterBindingMismatch, e.Ordinal, e.Name, e.Reason)
}

func (e *ParameterBindingMismatchError) Is(target error) bool {
	return target == ErrParameterBindingMismatch
}

func malformed(offset int, format string, args ...any) *MalformedTemplateError {
	return &MalformedTemplateError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
