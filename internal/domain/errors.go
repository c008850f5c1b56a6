package domain

import "errors"

var (
	// ErrNoCamera means none of the configured camera devices responded.
	ErrNoCamera = errors.New("no camera detected")
	// ErrNoFaceFound means every capture attempt produced a frame without a face.
	ErrNoFaceFound = errors.New("no face found in captured frames")
	// ErrUnrecognized means speech was heard but could not be turned into text.
	ErrUnrecognized = errors.New("speech not recognized")
	// ErrNotFound is returned by lookup collaborators (weather, encyclopedia) for unknown items.
	ErrNotFound = errors.New("not found")
)
