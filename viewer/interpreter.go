package viewer

import (
	"fmt"
	"strings"

	"github.com/tsawler/vellum/contentstream"
	"github.com/tsawler/vellum/core"
	"github.com/tsawler/vellum/font"
	"github.com/tsawler/vellum/graphicsstate"
	"github.com/tsawler/vellum/model"
)

// interpMode tracks the text-object state machine: BT enters text mode,
// ET leaves it. Violations are reported and the machine coerces back.
type interpMode int

const (
	modePage interpMode = iota
	modeText
)

const maxFormDepth = 16

// Interpreter executes content stream operations against a graphics
// state, accumulating results on a Canvas.
type Interpreter struct {
	resolve    font.ResolverFunc
	buildFonts func(resources core.Dict) map[string]*font.Font
	warn       func(format string, args ...interface{})

	gs      *graphicsstate.GraphicsState
	canvas  *Canvas
	fonts   map[string]*font.Font
	curFont *font.Font

	mode      interpMode
	bxDepth   int
	formDepth int
	tc        strings.Builder
}

// NewInterpreter creates an interpreter writing to canvas. resolve
// follows indirect references; buildFonts constructs the fonts of a
// resource dictionary (the viewer supplies a caching implementation);
// warn receives non-fatal findings.
func NewInterpreter(canvas *Canvas, resolve font.ResolverFunc,
	buildFonts func(core.Dict) map[string]*font.Font,
	warn func(string, ...interface{})) *Interpreter {

	if warn == nil {
		warn = func(string, ...interface{}) {}
	}
	if buildFonts == nil {
		buildFonts = func(core.Dict) map[string]*font.Font { return map[string]*font.Font{} }
	}
	return &Interpreter{
		resolve:    resolve,
		buildFonts: buildFonts,
		warn:       warn,
		gs:         graphicsstate.New(),
		canvas:     canvas,
	}
}

// Run executes a parsed content stream under the given resources and
// stores the operator listing on the canvas.
func (in *Interpreter) Run(ops []contentstream.Operation, resources core.Dict) {
	in.fonts = in.buildFonts(resources)
	startDepth := in.gs.Depth()

	in.exec(ops, resources, true)

	if in.mode == modeText {
		in.warn("content stream ended inside a text object")
		in.mode = modePage
	}
	if d := in.gs.Depth(); d != startDepth {
		in.warn("unbalanced graphics state: %d saves left at end of stream", d-startDepth)
	}
	in.canvas.TextContent = in.tc.String()
}

// exec runs one operation list. topLevel controls whether the operator
// listing records the operations; form XObject contents contribute canvas
// events but not listing text.
func (in *Interpreter) exec(ops []contentstream.Operation, resources core.Dict, topLevel bool) {
	for _, op := range ops {
		if topLevel {
			in.record(op)
		}
		in.execOp(op, resources)
	}
}

// execOp dispatches one operation.
func (in *Interpreter) execOp(op contentstream.Operation, resources core.Dict) {
	args := op.Operands

	switch op.Operator {
	// Graphics state.
	case "q":
		in.gs.Save()
	case "Q":
		if err := in.gs.Restore(); err != nil {
			in.warn("Q: %v", err)
		}
	case "cm":
		if m, ok := matrixOperand(args); ok {
			in.gs.Transform(m)
		} else {
			in.warn("cm: expected 6 numbers, got %d operands", len(args))
		}
	case "w":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetLineWidth(v)
		}
	case "J":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetLineCap(int(v))
		}
	case "j":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetLineJoin(int(v))
		}
	case "M":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetMiterLimit(v)
		}
	case "d":
		if len(args) == 2 {
			if arr, ok := args[0].(core.Array); ok {
				dashes := make([]float64, 0, len(arr))
				for i := range arr {
					if v, ok := arr.GetNumber(i); ok {
						dashes = append(dashes, v)
					}
				}
				phase, _ := numberOperand(args, 1)
				in.gs.SetDash(dashes, phase)
			}
		}
	case "ri":
		if name, ok := nameOperand(args, 0); ok {
			in.gs.SetRenderingIntent(name)
		}
	case "i":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetFlatness(v)
		}
	case "gs":
		// Extended graphics state dictionaries carry parameters the text
		// and image extraction does not consume.

	// Path construction and painting produce no canvas events.
	case "m", "l", "c", "v", "y", "h", "re",
		"S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n",
		"W", "W*", "sh", "d0", "d1":

	// Color.
	case "CS":
		if name, ok := nameOperand(args, 0); ok {
			in.gs.SetStrokeColorSpace(name)
		}
	case "cs":
		if name, ok := nameOperand(args, 0); ok {
			in.gs.SetFillColorSpace(name)
		}
	case "SC", "SCN":
		in.gs.SetStrokeColor(numberOperands(args))
	case "sc", "scn":
		in.gs.SetFillColor(numberOperands(args))
	case "G":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetStrokeColorSpace("DeviceGray")
			in.gs.SetStrokeColor([]float64{v})
		}
	case "g":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetFillColorSpace("DeviceGray")
			in.gs.SetFillColor([]float64{v})
		}
	case "RG":
		in.gs.SetStrokeColorSpace("DeviceRGB")
		in.gs.SetStrokeColor(numberOperands(args))
	case "rg":
		in.gs.SetFillColorSpace("DeviceRGB")
		in.gs.SetFillColor(numberOperands(args))
	case "K":
		in.gs.SetStrokeColorSpace("DeviceCMYK")
		in.gs.SetStrokeColor(numberOperands(args))
	case "k":
		in.gs.SetFillColorSpace("DeviceCMYK")
		in.gs.SetFillColor(numberOperands(args))

	// Text objects.
	case "BT":
		if in.mode == modeText {
			in.warn("BT inside a text object")
		}
		in.mode = modeText
		in.gs.BeginText()
	case "ET":
		if in.mode != modeText {
			in.warn("ET outside a text object")
		}
		in.mode = modePage
		in.gs.EndText()

	// Text state.
	case "Tc":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetCharSpacing(v)
		}
	case "Tw":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetWordSpacing(v)
		}
	case "Tz":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetHorizontalScaling(v)
		}
	case "TL":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetLeading(v)
		}
	case "Tf":
		in.opTf(args)
	case "Tr":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetRenderingMode(int(v))
		}
	case "Ts":
		if v, ok := numberOperand(args, 0); ok {
			in.gs.SetTextRise(v)
		}

	// Text positioning.
	case "Td":
		if tx, ok := numberOperand(args, 0); ok {
			if ty, ok := numberOperand(args, 1); ok {
				in.gs.TranslateText(tx, ty)
			}
		}
	case "TD":
		if tx, ok := numberOperand(args, 0); ok {
			if ty, ok := numberOperand(args, 1); ok {
				in.gs.TranslateTextSetLeading(tx, ty)
			}
		}
	case "Tm":
		if m, ok := matrixOperand(args); ok {
			in.gs.SetTextMatrix(m)
		} else {
			in.warn("Tm: expected 6 numbers, got %d operands", len(args))
		}
	case "T*":
		in.gs.NextLine()

	// Text showing.
	case "Tj":
		if s, ok := stringOperand(args, 0); ok {
			in.showText(s)
		} else {
			in.warn("Tj: missing string operand")
		}
	case "TJ":
		in.opTJ(args)
	case "'":
		in.gs.NextLine()
		if s, ok := stringOperand(args, 0); ok {
			in.showText(s)
		}
	case "\"":
		if aw, ok := numberOperand(args, 0); ok {
			in.gs.SetWordSpacing(aw)
		}
		if ac, ok := numberOperand(args, 1); ok {
			in.gs.SetCharSpacing(ac)
		}
		in.gs.NextLine()
		if s, ok := stringOperand(args, 2); ok {
			in.showText(s)
		}

	// Inline images.
	case "BI":
		if op.Image != nil {
			in.canvas.InlineImages = append(in.canvas.InlineImages, op.Image)
		}

	// XObjects.
	case "Do":
		in.opDo(args, resources)

	// Marked content is observed in the listing but otherwise ignored.
	case "BMC", "BDC", "EMC", "MP", "DP":

	// Compatibility sections suppress unknown-operator reporting.
	case "BX":
		in.bxDepth++
	case "EX":
		if in.bxDepth > 0 {
			in.bxDepth--
		} else {
			in.warn("EX without matching BX")
		}

	default:
		if in.bxDepth == 0 {
			in.warn("unknown operator %q", op.Operator)
		}
	}
}

// opTf selects the font resource for subsequent text showing.
func (in *Interpreter) opTf(args []core.Object) {
	if len(args) != 2 {
		in.warn("Tf: expected name and size, got %d operands", len(args))
		return
	}
	name, ok := args[0].(core.Name)
	if !ok {
		in.warn("Tf: first operand is %T, expected name", args[0])
		return
	}
	size, ok := numberOperand(args, 1)
	if !ok {
		in.warn("Tf: second operand is %T, expected number", args[1])
		return
	}

	in.gs.SetFont(string(name), size)
	f, ok := in.fonts[string(name)]
	if !ok {
		in.warn("font resource /%s not found; substituting Helvetica", name)
		f = font.NewFont(string(name), "Helvetica", "Type1")
		in.fonts[string(name)] = f
	}
	in.curFont = f
}

// opTJ shows an array of strings and positioning adjustments.
func (in *Interpreter) opTJ(args []core.Object) {
	if len(args) != 1 {
		in.warn("TJ: expected one array operand, got %d", len(args))
		return
	}
	arr, ok := args[0].(core.Array)
	if !ok {
		in.warn("TJ: operand is %T, expected array", args[0])
		return
	}
	for _, elem := range arr {
		switch v := elem.(type) {
		case core.String:
			in.showText(v.Value)
		case core.Int:
			in.gs.AdjustText(float64(v))
		case core.Real:
			in.gs.AdjustText(float64(v))
		}
	}
}

// showText decodes one text-showing operand onto the canvas and advances
// the text matrix.
func (in *Interpreter) showText(data []byte) {
	if in.mode != modeText {
		in.warn("text shown outside BT/ET")
	}

	f := in.curFont
	if f == nil {
		f = font.NewFont("", "Helvetica", "Type1")
		in.curFont = f
	}

	decoded := f.DecodeString(data)
	for _, code := range f.UnmappedCodes() {
		in.warn("font %s: no mapping for code %#x", f.Name, code)
	}
	in.canvas.Strings = append(in.canvas.Strings, decoded)

	spaces := 0
	if !f.Composite() {
		spaces = strings.Count(string(data), " ")
	}
	in.gs.Advance(f.StringWidth(data), len(data), spaces)
}

// opDo draws an XObject: images are appended to the canvas, form
// XObjects are evaluated recursively under a saved graphics state and the
// merged resources.
func (in *Interpreter) opDo(args []core.Object, resources core.Dict) {
	if len(args) != 1 {
		in.warn("Do: expected one name operand, got %d", len(args))
		return
	}
	name, ok := args[0].(core.Name)
	if !ok {
		in.warn("Do: operand is %T, expected name", args[0])
		return
	}

	stream, err := in.xobjectStream(string(name), resources)
	if err != nil {
		in.warn("Do /%s: %v", name, err)
		return
	}
	if stream == nil {
		in.warn("Do: XObject /%s not found", name)
		return
	}

	subtype, _ := stream.Dict.GetName("Subtype")
	switch string(subtype) {
	case "Image":
		in.canvas.Images = append(in.canvas.Images, &Image{Name: string(name), Stream: stream})

	case "Form":
		in.canvas.Forms = append(in.canvas.Forms, &Form{Name: string(name), Stream: stream})
		in.runForm(string(name), stream, resources)

	default:
		in.warn("Do /%s: unsupported XObject subtype %q", name, subtype)
	}
}

// xobjectStream resolves a name through Resources./XObject.
func (in *Interpreter) xobjectStream(name string, resources core.Dict) (*core.Stream, error) {
	xobjObj := resources.Get("XObject")
	if xobjObj == nil {
		return nil, nil
	}
	xobjResolved, err := in.resolveObj(xobjObj)
	if err != nil {
		return nil, err
	}
	xobjects, ok := xobjResolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("XObject resource is %T, expected dictionary", xobjResolved)
	}

	entry := xobjects.Get(name)
	if entry == nil {
		return nil, nil
	}
	entryResolved, err := in.resolveObj(entry)
	if err != nil {
		return nil, err
	}
	stream, ok := entryResolved.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("XObject /%s is %T, expected stream", name, entryResolved)
	}
	return stream, nil
}

// runForm evaluates a form XObject's content under a saved state.
func (in *Interpreter) runForm(name string, stream *core.Stream, parentResources core.Dict) {
	if in.formDepth >= maxFormDepth {
		in.warn("form /%s: nesting deeper than %d levels", name, maxFormDepth)
		return
	}

	data, err := stream.Decode()
	if err != nil {
		in.warn("form /%s: %v", name, err)
		return
	}
	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		in.warn("form /%s: %v", name, err)
		return
	}

	// Child resources override the invoking context's.
	merged := parentResources
	if formResObj := stream.Dict.Get("Resources"); formResObj != nil {
		if resolved, err := in.resolveObj(formResObj); err == nil {
			if formRes, ok := resolved.(core.Dict); ok {
				merged = core.Merge(parentResources, formRes)
			}
		}
	}

	in.gs.Save()
	if matrixObj, ok := stream.Dict.GetArray("Matrix"); ok && len(matrixObj) == 6 {
		var m model.Matrix
		valid := true
		for i := range matrixObj {
			v, ok := matrixObj.GetNumber(i)
			if !ok {
				valid = false
				break
			}
			m[i] = v
		}
		if valid {
			in.gs.Transform(m)
		}
	}

	savedFonts, savedCur, savedMode := in.fonts, in.curFont, in.mode
	in.fonts = in.buildFonts(merged)
	in.formDepth++

	in.exec(ops, merged, false)

	in.formDepth--
	in.fonts, in.curFont, in.mode = savedFonts, savedCur, savedMode
	if err := in.gs.Restore(); err != nil {
		in.warn("form /%s: %v", name, err)
	}
}

// resolveObj follows an indirect reference through the configured
// resolver.
func (in *Interpreter) resolveObj(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.IndirectRef)
	if !ok {
		return obj, nil
	}
	if in.resolve == nil {
		return nil, fmt.Errorf("unresolvable reference %s", ref)
	}
	return in.resolve(ref)
}

// Operand helpers.

func numberOperand(args []core.Object, i int) (float64, bool) {
	if i >= len(args) {
		return 0, false
	}
	switch v := args[i].(type) {
	case core.Int:
		return float64(v), true
	case core.Real:
		return float64(v), true
	default:
		return 0, false
	}
}

func numberOperands(args []core.Object) []float64 {
	out := make([]float64, 0, len(args))
	for i := range args {
		if v, ok := numberOperand(args, i); ok {
			out = append(out, v)
		}
	}
	return out
}

func nameOperand(args []core.Object, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	name, ok := args[i].(core.Name)
	return string(name), ok
}

func stringOperand(args []core.Object, i int) ([]byte, bool) {
	if i >= len(args) {
		return nil, false
	}
	s, ok := args[i].(core.String)
	if !ok {
		return nil, false
	}
	return s.Value, true
}

func matrixOperand(args []core.Object) (model.Matrix, bool) {
	var m model.Matrix
	if len(args) != 6 {
		return m, false
	}
	for i := 0; i < 6; i++ {
		v, ok := numberOperand(args, i)
		if !ok {
			return m, false
		}
		m[i] = v
	}
	return m, true
}
