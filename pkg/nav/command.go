package nav

import (
	"fmt"
	"strings"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/fix"
)

// Op identifies a command.
type Op int

const (
	OpFocus Op = iota
	OpNextSibling
	OpPrevSibling
	OpFirstChild
	OpParent
	OpLastSibling
	OpExtract
	OpSubstitute
	OpDelete
)

//nolint:gochecknoglobals // lookup table
var opNames = map[Op]string{
	OpFocus:       "focus",
	OpNextSibling: "next",
	OpPrevSibling: "prev",
	OpFirstChild:  "first-child",
	OpParent:      "parent",
	OpLastSibling: "last",
	OpExtract:     "extract",
	OpSubstitute:  "substitute",
	OpDelete:      "delete",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// IsEdit reports whether the op mutates document text.
func (o Op) IsEdit() bool {
	return o == OpExtract || o == OpSubstitute || o == OpDelete
}

// ParseOp converts a command name to an Op.
func ParseOp(name string) (Op, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for op, n := range opNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

// Command is one host request. At is used only by OpFocus.
type Command struct {
	Op Op
	At document.Position
}

// Focus returns a command placing the cursor on the node at pos.
func Focus(pos document.Position) Command {
	return Command{Op: OpFocus, At: pos}
}

// Status is the result class of a command.
type Status int

const (
	// StatusSuccess means the cursor moved or the edit was applied.
	StatusSuccess Status = iota
	// StatusNoop means nothing changed; Reason says why.
	StatusNoop
	// StatusError means the command failed; the cursor is unchanged.
	StatusError
	// StatusStale means the command was superseded. Hosts should not show it.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNoop:
		return "noop"
	case StatusError:
		return "error"
	case StatusStale:
		return "stale"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// AppliedEdit is one splice of an edit command, in byte offsets and in the
// line/character range of the pre-edit document.
type AppliedEdit struct {
	fix.TextEdit
	Range document.Range
}

// Outcome is what a command returns to the host.
type Outcome struct {
	Op        Op
	Status    Status
	Selection document.Range
	Reason    string
	Err       error
	Edits     []AppliedEdit
	Version   int
}
