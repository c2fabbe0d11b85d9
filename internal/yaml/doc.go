// Package yaml provides the YAML implementation of config.Loader. Documents
// mirror the HCL format:
//
//	nodes:
//	  - id: a
//	    piece: identity
//	  - id: b
//	    piece: add
//	    args: {amount: 1}
//	    inputs: {in: a.out}
//	  - {id: c, piece: identity}
//	edges:
//	  - {from: b.out, to: c.in}
//	inputs:
//	  a.in: 5
//	outputs: [a.out]
//	composites:
//	  - name: pair
//	    inputs: [{name: x, port: p.in}]
//	    outputs: [{name: y, port: p.out}]
//	    nodes:
//	      - {id: p, piece: identity}
//
// A node's inputs map is shorthand for edges into that node. Unlike HCL it
// only takes port references; literal values go in the top-level inputs map.
// A file may hold several documents separated by `---`.
package yaml
