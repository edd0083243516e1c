// Package database stores the run history of svgmin in SQLite.
//
// Every batch run is saved with its summary, its full JSON report and one
// row per file. The history command lists runs, re-renders stored runs,
// compares the latest two and tracks the size of one file over time.
//
// modernc.org/sqlite is a CGO-free driver, so the binary cross-compiles
// without a C toolchain. The database is a single file in the XDG data
// directory.
package database
