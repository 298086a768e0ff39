// Package buffer holds the logical text of an editor and its formatting spans.
//
// Offsets count UTF-16 code units, the unit the DOM uses for text offsets and for
// Range.toString().length. A range is a pair of bounds over positions, the gaps between
// code units, so Closed(2, 4) over "abcdef" covers "cd".
package buffer
