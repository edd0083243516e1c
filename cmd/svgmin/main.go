// Package main provides the entry point for the svgmin CLI.
//
// svgmin reads the SVG files of an input directory, minifies them and
// writes the smaller copies to an output directory, reporting per-file and
// total savings.
//
// Usage:
//
//	svgmin
//	svgmin --input assets --output dist
//	svgmin history
//
// See --help for all available options.
package main

// main is the entry point for svgmin.
func main() {
	Execute()
}
