// Package piece defines the capability every node of a composition graph
// implements, together with the leaf variants that wrap plain Go functions
// and loss functions.
//
// A Piece declares its input and output port names up front and is invoked
// with a map of named values. Values are cty.Value and are opaque to the
// graph; only concrete pieces look inside them.
package piece
