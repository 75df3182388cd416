// Package main hosts the zeusmaker CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into conversion
// batches, dry-run plans, environment checks, batch history queries, and
// configuration scaffolding. It centralizes configuration resolution and
// logger setup so subcommands only translate flags into engine requests and
// render the results.
//
// Keep this package lean: conversion behavior belongs in internal/conversion
// and its collaborators. Commands here own flags, terminal output, and the
// output directory lock.
package main
