// Package config provides the configuration of an svgmin run: input and
// output directories, optimizer strategy and precision, worker count,
// report format and run history location. Values come from defaults, the
// optional YAML configuration file and command line flags, in that order.
package config
