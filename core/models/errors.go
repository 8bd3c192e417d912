package models

import (
	"errors"
	"fmt"
)

var (
	ErrScan       = errors.New("scan failed")
	ErrParse      = errors.New("parse failed")
	ErrResolution = errors.New("module resolution failed")
	ErrDepthLimit = errors.New("import depth limit exceeded")
)

// ScanError is returned when the project root cannot be enumerated.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() []error {
	return []error{ErrScan, e.Err}
}

// ParseError is returned when imports cannot be extracted from a file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ResolutionError is returned when a local module has no sibling file
// next to the importing file.
type ResolutionError struct {
	Module   ModuleName
	Importer string
	Path     string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s imported by %s: %s: %v", e.Module, e.Importer, e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() []error {
	return []error{ErrResolution, e.Err}
}

type DepthLimitError struct {
	Module ModuleName
	Limit  int
}

func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("module %s exceeds max depth %d", e.Module, e.Limit)
}

func (e *DepthLimitError) Unwrap() error {
	return ErrDepthLimit
}
