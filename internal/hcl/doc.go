// Package hcl provides the HCL implementation of config.Loader. It is
// responsible for file parsing, expression evaluation and the translation of
// HCL blocks into the format-agnostic config.Model.
//
// A definition file looks like this:
//
//	node "a" {
//	  piece = "identity"
//	}
//
//	node "b" {
//	  piece  = "add"
//	  args   = { amount = 1 }
//	  inputs = { in = a.out }
//	}
//
//	input "a.in" {
//	  value = 5
//	}
//
//	output = ["a.out"]
//
// Edges may be written as `edge` blocks or as references in a node's inputs
// attribute; literal values in that attribute bind the port directly.
package hcl
