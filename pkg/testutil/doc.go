// Package testutil provides utilities for testing lumen components.
//
// Key components:
//   - TestEnvironment: isolates XDG directories and LUMEN_* variables so a
//     test never reads the configuration of the machine it runs on
//   - FakeTTY: an in-memory destination detected as a terminal
//   - Detector / NewRenderer: deterministic capability detection
//
// Usage guidelines:
//   - Renderers under test write to a bytes.Buffer (tier none) unless the
//     test is about escape codes, in which case it writes to a FakeTTY
//   - All test data should be defined inline, not in external files
package testutil
