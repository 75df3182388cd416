// Package preflight provides readiness checks for the directories and
// external binaries zeusmaker depends on.
//
// These checks run in two contexts:
//   - "zeusmaker convert" calls RunAll before starting a batch and refuses
//     to start when any check fails, so no work is wasted on a doomed run.
//   - "zeusmaker check" renders each Result and CheckSystemDeps as a table.
package preflight
