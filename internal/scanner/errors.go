package scanner

import (
	"errors"
	"fmt"
)

// ErrProjectTypeUndetected is returned by Detect when no registered scanner
// recognises the directory.
var ErrProjectTypeUndetected = errors.New("no supported manifest found in directory")

// ErrConflictingFilters is returned when a dependency listing asks for
// production only and development only at the same time.
var ErrConflictingFilters = errors.New("cannot combine production only and development only filters")

// ManifestReadError means the manifest exists but could not be read or
// parsed. Always fatal for the scan.
type ManifestReadError struct {
	Path string
	Err  error
}

func (e *ManifestReadError) Error() string {
	return fmt.Sprintf("unable to read manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestReadError) Unwrap() error {
	return e.Err
}

// ManifestWriteError means a rewrite failed before the new manifest was
// swapped into place, the original file is untouched.
type ManifestWriteError struct {
	Path string
	Err  error
}

func (e *ManifestWriteError) Error() string {
	return fmt.Sprintf("unable to write manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestWriteError) Unwrap() error {
	return e.Err
}

// PackageNotFoundError is a per package registry miss, callers skip the
// package and carry on.
type PackageNotFoundError struct {
	Name string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %s not found in registry", e.Name)
}

// RegistryError covers transient registry failures, network trouble, non
// success status codes and timeouts.
type RegistryError struct {
	Op  string
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry request failed for %s: %v", e.Op, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}
