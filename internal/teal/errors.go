package teal

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrOperandCount   = errors.New("wrong number of immediate operands")
	ErrMissingLabel   = errors.New("branch operation needs label argument")
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrUndefinedLabel = errors.New("reference to undefined label")
	ErrInvalidPragma  = errors.New("invalid #pragma")
)

// ParseError reports a source line that could not be turned into a program.
type ParseError struct {
	Filename string
	Line     int
	Err      error
}

func (e *ParseError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Filename, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Errorf builds a ParseError whose cause wraps sentinel with extra detail.
func Errorf(filename string, line int, sentinel error, format string, args ...any) *ParseError {
	detail := fmt.Sprintf(format, args...)
	return &ParseError{
		Filename: filename,
		Line:     line,
		Err:      fmt.Errorf("%w: %s", sentinel, detail),
	}
}
