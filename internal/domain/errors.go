package domain

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes failures worth retrying from bad data.
type ErrorKind string

const (
	// KindTransient covers network failures, timeouts and non-200 upstream responses.
	KindTransient ErrorKind = "transient"
	// KindMalformed covers content that was fetched but could not be parsed.
	KindMalformed ErrorKind = "malformed"
)

// LoadError reports a failure to load a source table.
type LoadError struct {
	Kind   ErrorKind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Transient wraps err as a transient load failure of source.
func Transient(source string, err error) error {
	return &LoadError{Kind: KindTransient, Source: source, Err: err}
}

// Malformed wraps err as a malformed-data failure of source.
func Malformed(source string, err error) error {
	return &LoadError{Kind: KindMalformed, Source: source, Err: err}
}

// KindOf returns the LoadError kind in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

var (
	// ErrUnknownUnit marks a record whose unit of measure is not recognized.
	ErrUnknownUnit = errors.New("unknown unit of measure")
	// ErrUnknownDimension is returned for a grouping or pivot dimension that does not exist.
	ErrUnknownDimension = errors.New("unknown dimension")
	// ErrIncompatibleDimensions is returned when a pivot column is not allowed for its row.
	ErrIncompatibleDimensions = errors.New("incompatible pivot dimensions")
	// ErrEmptyPivot is returned when no records match the pivot selection.
	ErrEmptyPivot = errors.New("no records match pivot selection")
	// ErrMissingColumn is returned when a required source column is absent.
	ErrMissingColumn = errors.New("missing required column")
)
