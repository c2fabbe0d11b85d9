// Package composite provides a piece that owns a nested graph of pieces and
// behaves, from the outside, exactly like a leaf exposing the same ports.
package composite
