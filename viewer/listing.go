package viewer

import (
	"strings"

	"github.com/tsawler/vellum/contentstream"
	"github.com/tsawler/vellum/core"
	"github.com/tsawler/vellum/font"
)

// record appends one operation to the operator listing. Each operation is
// written on its own line as its operands followed by the operator, with
// string operands replaced by their decoded Unicode form and the numbers
// inside TJ arrays reproduced verbatim.
func (in *Interpreter) record(op contentstream.Operation) {
	in.tc.WriteByte('\n')

	if op.Operator == "BI" && op.Image != nil {
		in.tc.WriteString("BI ")
		in.tc.WriteString(op.Image.Dict.String())
		in.tc.WriteString(" ID EI")
		return
	}

	for _, operand := range op.Operands {
		in.tc.WriteString(in.renderOperand(operand))
		in.tc.WriteByte(' ')
	}
	if len(op.Operands) == 0 {
		in.tc.WriteByte(' ')
	}
	in.tc.WriteString(op.Operator)
}

// renderOperand formats one operand for the listing.
func (in *Interpreter) renderOperand(operand core.Object) string {
	switch v := operand.(type) {
	case core.String:
		return "(" + in.decodeForListing(v.Value) + ")"
	case core.Array:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = in.renderOperand(elem)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return operand.String()
	}
}

// decodeForListing decodes string bytes with the current font without
// recording unmapped-code warnings twice; execution decodes the same
// bytes for the canvas.
func (in *Interpreter) decodeForListing(data []byte) string {
	f := in.curFont
	if f == nil {
		f = font.NewFont("", "Helvetica", "Type1")
	}
	decoded := f.DecodeString(data)
	f.UnmappedCodes()
	return decoded
}
