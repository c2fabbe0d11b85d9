// Package registry provides the central "glue" for the module system.
//
// The Registry maps the piece kind names used in definition files (e.g.
// "add") to the Go constructors that build them. Modules register their kinds
// at startup; Validate then checks that every argument struct can be decoded
// from cty values, so a mismatch surfaces before any definition is loaded.
package registry
