package graphicsstate

import (
	"fmt"

	"github.com/tsawler/vellum/model"
)

// GraphicsState is the mutable state a content stream interpreter runs
// against. Save and Restore implement the q/Q stack.
type GraphicsState struct {
	// CTM is the current transformation matrix.
	CTM model.Matrix

	// Text holds the text state.
	Text TextState

	// Line parameters.
	LineWidth  float64
	LineCap    int
	LineJoin   int
	MiterLimit float64
	DashArray  []float64
	DashPhase  float64

	// Color state. Colors hold up to four components depending on the
	// active color space.
	StrokeColorSpace string
	FillColorSpace   string
	StrokeColor      []float64
	FillColor        []float64

	// RenderingIntent and flatness set via ri and i.
	RenderingIntent string
	Flatness        float64

	stack []*GraphicsState
}

// TextState is the text-specific portion of the graphics state.
type TextState struct {
	FontName string
	FontSize float64

	CharSpacing       float64
	WordSpacing       float64
	HorizontalScaling float64 // percent, 100 is neutral
	Leading           float64
	RenderingMode     int
	Rise              float64

	TextMatrix     model.Matrix
	TextLineMatrix model.Matrix
}

// New creates a graphics state with the PDF defaults.
func New() *GraphicsState {
	return &GraphicsState{
		CTM:              model.Identity(),
		LineWidth:        1.0,
		MiterLimit:       10.0,
		StrokeColorSpace: "DeviceGray",
		FillColorSpace:   "DeviceGray",
		StrokeColor:      []float64{0},
		FillColor:        []float64{0},
		RenderingIntent:  "RelativeColorimetric",
		Text: TextState{
			HorizontalScaling: 100.0,
			TextMatrix:        model.Identity(),
			TextLineMatrix:    model.Identity(),
		},
	}
}

// Clone copies the state without the stack.
func (gs *GraphicsState) Clone() *GraphicsState {
	clone := *gs
	clone.stack = nil
	clone.DashArray = append([]float64(nil), gs.DashArray...)
	clone.StrokeColor = append([]float64(nil), gs.StrokeColor...)
	clone.FillColor = append([]float64(nil), gs.FillColor...)
	return &clone
}

// Save pushes a copy of the current state (q operator).
func (gs *GraphicsState) Save() {
	gs.stack = append(gs.stack, gs.Clone())
}

// Restore pops the stack back into the current state (Q operator). An
// empty stack is an error; the state is left unchanged.
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return fmt.Errorf("graphics state stack underflow")
	}
	saved := gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]

	stack := gs.stack
	*gs = *saved
	gs.stack = stack
	return nil
}

// Depth returns the number of saved states.
func (gs *GraphicsState) Depth() int { return len(gs.stack) }

// Transform concatenates a matrix onto the CTM (cm operator).
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetLineWidth sets the line width (w).
func (gs *GraphicsState) SetLineWidth(width float64) { gs.LineWidth = width }

// SetLineCap sets the line cap style (J).
func (gs *GraphicsState) SetLineCap(style int) { gs.LineCap = style }

// SetLineJoin sets the line join style (j).
func (gs *GraphicsState) SetLineJoin(join int) { gs.LineJoin = join }

// SetMiterLimit sets the miter limit (M).
func (gs *GraphicsState) SetMiterLimit(limit float64) { gs.MiterLimit = limit }

// SetDash sets the dash pattern (d).
func (gs *GraphicsState) SetDash(array []float64, phase float64) {
	gs.DashArray = append([]float64(nil), array...)
	gs.DashPhase = phase
}

// SetRenderingIntent sets the rendering intent (ri).
func (gs *GraphicsState) SetRenderingIntent(intent string) { gs.RenderingIntent = intent }

// SetFlatness sets the flatness tolerance (i).
func (gs *GraphicsState) SetFlatness(flatness float64) { gs.Flatness = flatness }

// SetStrokeColorSpace sets the stroking color space (CS).
func (gs *GraphicsState) SetStrokeColorSpace(name string) {
	gs.StrokeColorSpace = name
	gs.StrokeColor = defaultColor(name)
}

// SetFillColorSpace sets the nonstroking color space (cs).
func (gs *GraphicsState) SetFillColorSpace(name string) {
	gs.FillColorSpace = name
	gs.FillColor = defaultColor(name)
}

// SetStrokeColor sets stroking color components (SC, SCN, G, RG, K).
func (gs *GraphicsState) SetStrokeColor(components []float64) {
	gs.StrokeColor = append([]float64(nil), components...)
}

// SetFillColor sets nonstroking color components (sc, scn, g, rg, k).
func (gs *GraphicsState) SetFillColor(components []float64) {
	gs.FillColor = append([]float64(nil), components...)
}

// defaultColor returns the initial color for a color space.
func defaultColor(space string) []float64 {
	switch space {
	case "DeviceRGB":
		return []float64{0, 0, 0}
	case "DeviceCMYK":
		return []float64{0, 0, 0, 1}
	default:
		return []float64{0}
	}
}

// SetFont sets the font resource name and size (Tf).
func (gs *GraphicsState) SetFont(name string, size float64) {
	gs.Text.FontName = name
	gs.Text.FontSize = size
}

// SetCharSpacing sets character spacing (Tc).
func (gs *GraphicsState) SetCharSpacing(spacing float64) { gs.Text.CharSpacing = spacing }

// SetWordSpacing sets word spacing (Tw).
func (gs *GraphicsState) SetWordSpacing(spacing float64) { gs.Text.WordSpacing = spacing }

// SetHorizontalScaling sets horizontal scaling in percent (Tz).
func (gs *GraphicsState) SetHorizontalScaling(scale float64) { gs.Text.HorizontalScaling = scale }

// SetLeading sets the text leading (TL).
func (gs *GraphicsState) SetLeading(leading float64) { gs.Text.Leading = leading }

// SetRenderingMode sets the text rendering mode (Tr).
func (gs *GraphicsState) SetRenderingMode(mode int) { gs.Text.RenderingMode = mode }

// SetTextRise sets the text rise (Ts).
func (gs *GraphicsState) SetTextRise(rise float64) { gs.Text.Rise = rise }

// BeginText resets the text matrices (BT).
func (gs *GraphicsState) BeginText() {
	gs.Text.TextMatrix = model.Identity()
	gs.Text.TextLineMatrix = model.Identity()
}

// EndText leaves the text object (ET). The matrices keep their final
// values; BT resets them on the next text object.
func (gs *GraphicsState) EndText() {}

// SetTextMatrix sets both text matrices (Tm).
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.TextMatrix = m
	gs.Text.TextLineMatrix = m
}

// TranslateText starts a new line offset from the current line (Td).
func (gs *GraphicsState) TranslateText(tx, ty float64) {
	gs.Text.TextLineMatrix = model.Translate(tx, ty).Multiply(gs.Text.TextLineMatrix)
	gs.Text.TextMatrix = gs.Text.TextLineMatrix
}

// TranslateTextSetLeading is Td with leading set to -ty (TD).
func (gs *GraphicsState) TranslateTextSetLeading(tx, ty float64) {
	gs.SetLeading(-ty)
	gs.TranslateText(tx, ty)
}

// NextLine moves to the next line using the leading (T*).
func (gs *GraphicsState) NextLine() {
	gs.TranslateText(0, -gs.Text.Leading)
}

// Advance moves the text matrix after showing text. width is the summed
// glyph width in 1/1000 em; spaces counts the single-byte space codes for
// word spacing.
func (gs *GraphicsState) Advance(width float64, chars, spaces int) {
	scale := gs.Text.HorizontalScaling / 100.0
	tx := width/1000.0*gs.Text.FontSize + float64(chars)*gs.Text.CharSpacing + float64(spaces)*gs.Text.WordSpacing
	tx *= scale
	gs.Text.TextMatrix = model.Translate(tx, 0).Multiply(gs.Text.TextMatrix)
}

// AdjustText applies a TJ numeric displacement, expressed in -1/1000 em.
func (gs *GraphicsState) AdjustText(amount float64) {
	scale := gs.Text.HorizontalScaling / 100.0
	tx := -amount / 1000.0 * gs.Text.FontSize * scale
	gs.Text.TextMatrix = model.Translate(tx, 0).Multiply(gs.Text.TextMatrix)
}

// TextPosition returns the current text origin in device space.
func (gs *GraphicsState) TextPosition() model.Point {
	m := gs.Text.TextMatrix.Multiply(gs.CTM)
	return m.Transform(model.Point{X: 0, Y: gs.Text.Rise})
}
