// Package graphicsstate models the PDF graphics state: the current
// transformation matrix, text state, color and line parameters, and the
// save/restore stack driven by the q and Q operators.
package graphicsstate
