package hotreload

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrOverflow is wrapped by the error event queued after the watcher had to drop records because the queue was full.
var ErrOverflow = errors.New("watcher queue overflow")

// Kind classifies a filesystem change observed by a Watcher.
type Kind int

const (
	// KindCreate reports a file that appeared in the watched tree.
	KindCreate Kind = iota
	// KindModify reports a file whose contents changed.
	KindModify
	// KindRemove reports a file that was removed or renamed away.
	KindRemove
	// KindError reports a failure of the watcher itself; Event.Err carries the cause.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindModify:
		return "modify"
	case KindRemove:
		return "remove"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single record delivered by a Watcher.
type Event struct {
	// Path is the file the record is about. Empty for KindError records that are not tied to a file.
	Path string
	// Kind classifies the record.
	Kind Kind
	// Err is set for KindError records.
	Err error
}

// Actionable reports whether the event should trigger a shader rebuild: it must be a
// modification of a file carrying the given extension (compared case-insensitively).
//
// Parameters:
//   - ext: the extension including the dot, e.g. ".wgsl"
//
// Returns:
//   - bool: true if the event is a modify event on a matching file
func (e Event) Actionable(ext string) bool {
	return e.Kind == KindModify && strings.EqualFold(filepath.Ext(e.Path), ext)
}
