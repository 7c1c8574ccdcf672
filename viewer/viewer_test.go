package viewer

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/tsawler/vellum/reader"
)

// buildViewerDoc assembles a three-page document: text on page 1, an
// inline image on page 2, and an image XObject on page 3.
func buildViewerDoc(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := make(map[int]int64)

	add := func(num int, body string) {
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	addStream := func(num int, dict string, data []byte) {
		offsets[num] = int64(buf.Len())
		sep := " "
		if dict == "" {
			sep = ""
		}
		fmt.Fprintf(&buf, "%d 0 obj\n<< %s%s/Length %d >>\nstream\n", num, dict, sep, len(data))
		buf.Write(data)
		buf.WriteString("\nendstream\nendobj\n")
	}

	buf.WriteString("%PDF-1.6\n")

	add(1, `<< /Type /Catalog /Pages 2 0 R >>`)
	add(2, `<< /Type /Pages /Kids [3 0 R 4 0 R 5 0 R] /Count 3 /MediaBox [0 0 612 792] /Resources << /Font << /F1 9 0 R >> >> >>`)
	add(3, `<< /Type /Page /Parent 2 0 R /Contents 6 0 R >>`)
	add(4, `<< /Type /Page /Parent 2 0 R /Contents 7 0 R >>`)
	add(5, `<< /Type /Page /Parent 2 0 R /Contents 8 0 R /Resources << /Font << /F1 9 0 R >> /XObject << /Im0 10 0 R >> >> >>`)

	addStream(6, "", []byte("BT\n0 0 0 rg\n/F1 12 Tf\n72 720 Td\n( ) Tj\n(Plaintiff) Tj\n[(19) -30 (CV) -30 (47031)] TJ\nET"))

	inline := "q\nBI /W 2 /H 1 /BPC 8 /CS /G /F /AHx ID\nF00F>\nEI\nQ"
	addStream(7, "", []byte(inline))

	addStream(8, "", []byte("/Im0 Do\nBT /F1 10 Tf (last page) Tj ET"))

	add(9, `<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>`)
	addStream(10, `/Type /XObject /Subtype /Image /Width 4 /Height 4 /BitsPerComponent 8 /ColorSpace /DeviceGray`, bytes.Repeat([]byte{0x40}, 16))

	// Cross-reference table and trailer.
	nums := make([]int, 0, len(offsets))
	for n := range offsets {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	maxNum := nums[len(nums)-1]

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", maxNum+1)
	for n := 1; n <= maxNum; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", maxNum+1, xrefOffset)

	return buf.Bytes()
}

func openViewer(t *testing.T) *Viewer {
	t.Helper()
	data := buildViewerDoc(t)
	r, err := reader.NewReaderFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open document: %v", err)
	}
	return New(r)
}

// TestViewerNavigation enforces 1-based bounds and Next/Prev movement.
func TestViewerNavigation(t *testing.T) {
	v := openViewer(t)

	if err := v.Navigate(0); err == nil {
		t.Error("Navigate(0) should fail")
	}
	if err := v.Navigate(4); err == nil {
		t.Error("Navigate(4) should fail")
	}

	if err := v.Navigate(1); err != nil {
		t.Fatalf("Navigate(1) error = %v", err)
	}
	if v.CurrentPage() != 1 {
		t.Errorf("CurrentPage() = %d", v.CurrentPage())
	}
	if err := v.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if v.CurrentPage() != 2 {
		t.Errorf("after Next: %d", v.CurrentPage())
	}
	if err := v.Prev(); err != nil {
		t.Fatalf("Prev() error = %v", err)
	}
	if v.CurrentPage() != 1 {
		t.Errorf("after Prev: %d", v.CurrentPage())
	}
}

// TestViewerRenderText extracts page 1 strings in operator order.
func TestViewerRenderText(t *testing.T) {
	v := openViewer(t)
	if err := v.Navigate(1); err != nil {
		t.Fatalf("Navigate(1) error = %v", err)
	}
	canvas, err := v.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := []string{" ", "Plaintiff", "19", "CV", "47031"}
	if len(canvas.Strings) != len(want) {
		t.Fatalf("Strings = %q", canvas.Strings)
	}
	for i, w := range want {
		if canvas.Strings[i] != w {
			t.Errorf("Strings[%d] = %q, want %q", i, canvas.Strings[i], w)
		}
	}

	if !strings.HasPrefix(canvas.TextContent, "\n BT\n0 0 0 rg\n/F1 12 Tf") {
		t.Errorf("TextContent prefix = %q", canvas.TextContent[:min(40, len(canvas.TextContent))])
	}
	if !strings.HasSuffix(canvas.TextContent, " ET") {
		t.Errorf("TextContent suffix = %q", canvas.TextContent)
	}
}

// TestViewerInlineImage renders page 2's inline image with decoded
// attributes.
func TestViewerInlineImage(t *testing.T) {
	v := openViewer(t)
	if err := v.Navigate(2); err != nil {
		t.Fatalf("Navigate(2) error = %v", err)
	}
	canvas, err := v.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(canvas.InlineImages) != 1 {
		t.Fatalf("InlineImages = %d", len(canvas.InlineImages))
	}
	img := canvas.InlineImages[0]
	if img.Width() != 2 || img.Height() != 1 || img.Filter() != "ASCIIHexDecode" {
		t.Errorf("inline image = %dx%d filter %q", img.Width(), img.Height(), img.Filter())
	}
	decoded, err := img.Decoded()
	if err != nil {
		t.Fatalf("Decoded() error = %v", err)
	}
	if !bytes.Equal(decoded, []byte{0xF0, 0x0F}) {
		t.Errorf("Decoded() = % X", decoded)
	}
}

// TestViewerCanvasReset replaces the canvas on each navigation: after
// rendering the image page, moving back yields an empty image list.
func TestViewerCanvasReset(t *testing.T) {
	v := openViewer(t)

	if err := v.Navigate(2); err != nil {
		t.Fatalf("Navigate(2) error = %v", err)
	}
	if _, err := v.Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(v.Canvas().InlineImages) != 1 {
		t.Fatalf("expected inline image on page 2")
	}

	if err := v.Prev(); err != nil {
		t.Fatalf("Prev() error = %v", err)
	}
	if _, err := v.Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(v.Canvas().InlineImages) != 0 {
		t.Errorf("InlineImages = %d after reset, want 0", len(v.Canvas().InlineImages))
	}
	if len(v.Canvas().Strings) == 0 {
		t.Error("page 1 strings missing after re-render")
	}
}

// TestViewerImageXObject records Do-drawn images on page 3.
func TestViewerImageXObject(t *testing.T) {
	v := openViewer(t)
	if err := v.Navigate(3); err != nil {
		t.Fatalf("Navigate(3) error = %v", err)
	}
	canvas, err := v.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(canvas.Images) != 1 {
		t.Fatalf("Images = %d", len(canvas.Images))
	}
	img := canvas.Images[0]
	if img.Name != "Im0" || img.Width() != 4 || img.Height() != 4 {
		t.Errorf("image = %s %dx%d", img.Name, img.Width(), img.Height())
	}
	if canvas.Text() != "last page" {
		t.Errorf("Text() = %q", canvas.Text())
	}
}

// TestViewerRenderBeforeNavigate fails cleanly.
func TestViewerRenderBeforeNavigate(t *testing.T) {
	v := openViewer(t)
	if _, err := v.Render(); err == nil {
		t.Error("Render() before Navigate should fail")
	}
}
