package transform

import (
	"fmt"
	"strings"
)

// TransformError reports a record that could not become a view model. List
// transforms skip such records instead of failing the whole response.
type TransformError struct {
	Resource string
	ID       int64
	Reason   string
	Err      error
}

func (e *TransformError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "transform %s", e.Resource)
	if e.ID > 0 {
		fmt.Fprintf(&b, " #%d", e.ID)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TransformError) Unwrap() error { return e.Err }

// Permanent reports that retrying the fetch cannot repair the record.
func (e *TransformError) Permanent() bool { return true }
