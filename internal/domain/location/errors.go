package location

import "errors"

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrLocationInUse    = errors.New("location still has shifts or attendance records")
)
