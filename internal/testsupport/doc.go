// Package testsupport holds fixtures shared by package tests: temp-dir
// configs, placeholder inputs, a scriptable mock ffmpeg, and a history store.
package testsupport
