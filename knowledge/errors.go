package knowledge

import "fmt"

var (
	// ErrNotFound is returned when a document with the given id does not
	// exist in the store.
	ErrNotFound = fmt.Errorf("document not found")
)
