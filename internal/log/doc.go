// Package log builds the slog loggers used by svgmin.
//
// Loggers write through PathHandler, which shortens file paths under the
// user's home directory to "~/...". Log output of a batch run names many
// files, and the shortened form keeps user names out of shared logs.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Warn("step failed", "file", "/home/alice/svg/logo.svg")
//	// step failed file=~/svg/logo.svg
//
// The level is Warn by default and Debug in verbose mode.
package log
