// Package resources sizes the conversion worker pools from the CPU count and
// reports host capacity for diagnostics.
//
// Sizer is deliberately cheap: one core-count query per call, so the engine
// re-evaluates pool sizes before every batch. HostReport is heavier and only
// backs the check command.
package resources
