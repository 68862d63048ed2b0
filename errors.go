package vcbanner

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound is returned when the template for a region is
	// absent. The region is skipped rather than failed.
	ErrTemplateNotFound = errors.New("vcbanner: template not found")
	// ErrNoLabel is returned when there is no label image to build with
	ErrNoLabel = errors.New("vcbanner: no label image")
	// ErrGameNotFound is returned when a ROM has no entry in the database
	ErrGameNotFound = errors.New("vcbanner: game not found")
	// ErrNoDatabase is returned when a ROM is given without a database
	ErrNoDatabase = errors.New("vcbanner: no database")
)

// RegionError records the region a build failed for
type RegionError struct {
	Region string
	Err    error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Region, e.Err)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}
