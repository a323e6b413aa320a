package archive

import (
	"crypto/rand"

	"github.com/mxfgo/mxf/ulid"
)

// newInstanceUID mints a fresh, randomly-filled instance UID for a set being
// added to the header metadata graph. No UUID-generation library appears
// anywhere in the retrieved corpus, so this is the one place this package
// reaches past it to the standard library's system entropy source — a
// boundary concern, not business logic.
func newInstanceUID() ulid.UUID {
	var u ulid.UUID
	_, _ = rand.Read(u[:])

	return u
}

// newPackageUMID mints a UMID for a Material or Source Package. Real UMIDs
// carry a registered SMPTE UL prefix identifying the generating
// organization and material-number algorithm; this package fills only the
// random material-number half and leaves the rest zero, which is sufficient
// to give every package in a file a distinct identity without depending on
// a registered organization ID this module does not have.
func newPackageUMID() ulid.UMID {
	var u ulid.UMID
	_, _ = rand.Read(u[16:])

	return u
}
