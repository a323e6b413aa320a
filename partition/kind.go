package partition

import (
	"fmt"

	"github.com/mxfgo/mxf/mxferrs"
)

// Status encodes the 14th octet of a partition pack's key: whether the
// partition's header metadata is open for further writes and whether it is
// complete.
type Status uint8

// Kind encodes the 15th octet of a partition pack's key: which of the three
// partition roles (Header, Body, Footer) this pack occupies.
type Kind uint8

const (
	StatusOpenIncomplete   Status = 2
	StatusOpenComplete     Status = 3
	StatusClosedIncomplete Status = 4
	StatusClosedComplete   Status = 5

	KindHeader Kind = 2
	KindBody   Kind = 3
	KindFooter Kind = 4
)

var validStatuses = map[Status]string{
	StatusOpenIncomplete:   "OpenIncomplete",
	StatusOpenComplete:     "OpenComplete",
	StatusClosedIncomplete: "ClosedIncomplete",
	StatusClosedComplete:   "ClosedComplete",
}

var validKinds = map[Kind]string{
	KindHeader: "Header",
	KindBody:   "Body",
	KindFooter: "Footer",
}

// String returns the status's name, or "Unknown" if it is not one of the
// four recognized values.
func (s Status) String() string {
	if name, ok := validStatuses[s]; ok {
		return name
	}

	return "Unknown"
}

// String returns the kind's name, or "Unknown" if it is not one of the three
// recognized values.
func (k Kind) String() string {
	if name, ok := validKinds[k]; ok {
		return name
	}

	return "Unknown"
}

// Validate reports whether status and kind are both recognized values; the
// twelve legal combinations are the cross product of the two.
func Validate(status Status, kind Kind) error {
	if _, ok := validStatuses[status]; !ok {
		return fmt.Errorf("%w: partition status octet 0x%02x", mxferrs.ErrUnexpectedKey, status)
	}
	if _, ok := validKinds[kind]; !ok {
		return fmt.Errorf("%w: partition kind octet 0x%02x", mxferrs.ErrUnexpectedKey, kind)
	}

	return nil
}

// IsComplete reports whether status names a Complete variant.
func (s Status) IsComplete() bool {
	return s == StatusOpenComplete || s == StatusClosedComplete
}

// IsClosed reports whether status names a Closed variant.
func (s Status) IsClosed() bool {
	return s == StatusClosedIncomplete || s == StatusClosedComplete
}
