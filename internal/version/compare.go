package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/arb-console/pkg/errors"
)

// CheckBackendCompatibility checks whether the console can talk to a backend.
// Returns nil if compatible, an error with details if not.
//
// Compatibility Rules:
//   - If either version is "main" or empty, the check is skipped
//     (development builds and backends that do not report a version)
//   - Major versions must match exactly
//   - Minor and patch versions can differ
//
// Examples:
//   - Console 1.2.0, Backend 1.2.0 -> OK
//   - Console 1.2.0, Backend 1.5.3 -> OK (minor differs)
//   - Console 2.0.0, Backend 1.2.0 -> ERROR (major differs)
//   - Console main, Backend 1.2.0 -> OK (dev build, skip check)
//   - Console 1.2.0, Backend "" -> OK (unknown, skip check)
func CheckBackendCompatibility(consoleVersion, backendVersion string) error {
	consoleVersion = strings.TrimPrefix(strings.TrimSpace(consoleVersion), "v")
	backendVersion = strings.TrimPrefix(strings.TrimSpace(backendVersion), "v")

	if skip(consoleVersion) || skip(backendVersion) {
		return nil
	}

	consoleSemver, err := semver.NewVersion(consoleVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid console version '%s'", consoleVersion)
	}

	backendSemver, err := semver.NewVersion(backendVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid backend version '%s'", backendVersion)
	}

	if consoleSemver.Major() != backendSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: console is %d.x.x but backend is %d.x.x",
			consoleSemver.Major(), backendSemver.Major())
	}

	return nil
}

func skip(version string) bool {
	return version == "" || version == "main"
}
