package project

import "errors"

var (
	// ErrConfig indicates a project layout that cannot be loaded: no pods
	// directory, an unnameable root, or duplicate pod or override names.
	ErrConfig = errors.New("invalid project configuration")

	// ErrDestinationExists is returned by Export when the target directory
	// is already present.
	ErrDestinationExists = errors.New("destination already exists")
)
