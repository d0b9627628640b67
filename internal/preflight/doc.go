// Package preflight provides readiness checks for filesystem paths and
// external tools that the daemon depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before processing each job. If any
//     check fails, processing halts instead of burning minutes on a doomed
//     cut.
//   - The CLI "cleaver status" command uses the individual check functions
//     to display readiness detail.
package preflight
