package store

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// SchemaVersion is stamped on every document this build writes.
const SchemaVersion = "v1.0.0"

// ErrSchemaVersion is returned when a stored document was written with a
// schema this build cannot read.
var ErrSchemaVersion = errors.New("unsupported schema version")

// checkSchemaVersion accepts documents from the same major version.
// Documents without a version predate versioning and are read as v1.
func checkSchemaVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrSchemaVersion, v)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return fmt.Errorf("%w: %s (want %s.x)", ErrSchemaVersion, v, semver.Major(SchemaVersion))
	}
	return nil
}
