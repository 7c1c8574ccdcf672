package reader

import (
	"bytes"
	"fmt"
	"sort"
	"testing"
)

// pdfBuilder assembles a syntactically complete PDF in memory for tests,
// tracking object offsets so the xref table is exact.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets map[int]int64
	trailer map[string]string
}

func newPDFBuilder(version string) *pdfBuilder {
	b := &pdfBuilder{
		offsets: make(map[int]int64),
		trailer: make(map[string]string),
	}
	fmt.Fprintf(&b.buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)
	return b
}

// addObject writes "num 0 obj <body> endobj" and records its offset.
func (b *pdfBuilder) addObject(num int, body string) {
	b.offsets[num] = int64(b.buf.Len())
	fmt.Fprintf(&b.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

// addStream writes a stream object with a correct /Length entry. Extra
// dictionary entries go in dict (without the enclosing << >>).
func (b *pdfBuilder) addStream(num int, dict string, data []byte) {
	b.offsets[num] = int64(b.buf.Len())
	sep := " "
	if dict == "" {
		sep = ""
	}
	fmt.Fprintf(&b.buf, "%d 0 obj\n<< %s%s/Length %d >>\nstream\n", num, dict, sep, len(data))
	b.buf.Write(data)
	b.buf.WriteString("\nendstream\nendobj\n")
}

// setTrailer adds an entry to the trailer dictionary.
func (b *pdfBuilder) setTrailer(key, value string) {
	b.trailer[key] = value
}

// finish writes the xref table and trailer, returning the file bytes.
func (b *pdfBuilder) finish(rootNum int) []byte {
	nums := make([]int, 0, len(b.offsets))
	for n := range b.offsets {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	maxNum := 0
	if len(nums) > 0 {
		maxNum = nums[len(nums)-1]
	}

	xrefOffset := b.buf.Len()
	fmt.Fprintf(&b.buf, "xref\n0 %d\n", maxNum+1)
	b.buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= maxNum; num++ {
		if off, ok := b.offsets[num]; ok {
			fmt.Fprintf(&b.buf, "%010d 00000 n \n", off)
		} else {
			b.buf.WriteString("0000000000 65535 f \n")
		}
	}

	fmt.Fprintf(&b.buf, "trailer\n<< /Size %d /Root %d 0 R", maxNum+1, rootNum)
	for key, value := range b.trailer {
		fmt.Fprintf(&b.buf, " /%s %s", key, value)
	}
	fmt.Fprintf(&b.buf, " >>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	return b.buf.Bytes()
}

// buildObjStmDoc returns a PDF 1.5 document whose page tree objects live
// inside an object stream addressed through a cross-reference stream.
func buildObjStmDoc(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")

	offsets := make(map[int]int64)

	// Object 1: the catalog, stored uncompressed.
	offsets[1] = int64(buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	// Object 6: an ObjStm holding objects 2 (pages root) and 3 (page).
	obj2 := "<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 300 400] >>"
	obj3 := "<< /Type /Page /Parent 2 0 R >>"
	header := fmt.Sprintf("2 0 3 %d\n", len(obj2)+1)
	stmData := header + obj2 + " " + obj3
	offsets[6] = int64(buf.Len())
	fmt.Fprintf(&buf, "6 0 obj\n<< /Type /ObjStm /N 2 /First %d /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		len(header), len(stmData), stmData)

	// Object 7: the cross-reference stream, W [1 2 1], Size 8.
	offsets[7] = int64(buf.Len())
	entry := func(typ byte, f2 int64, f3 byte) []byte {
		return []byte{typ, byte(f2 >> 8), byte(f2), f3}
	}
	var xref []byte
	xref = append(xref, entry(0, 0, 0xFF)...)          // 0: free
	xref = append(xref, entry(1, offsets[1], 0)...)    // 1: catalog
	xref = append(xref, entry(2, 6, 0)...)             // 2: in stream 6, index 0
	xref = append(xref, entry(2, 6, 1)...)             // 3: in stream 6, index 1
	xref = append(xref, entry(0, 0, 0)...)             // 4: free
	xref = append(xref, entry(0, 0, 0)...)             // 5: free
	xref = append(xref, entry(1, offsets[6], 0)...)    // 6: the ObjStm
	xref = append(xref, entry(1, offsets[7], 0)...)    // 7: this stream
	fmt.Fprintf(&buf, "7 0 obj\n<< /Type /XRef /Size 8 /W [1 2 1] /Root 1 0 R /Length %d >>\nstream\n", len(xref))
	buf.Write(xref)
	buf.WriteString("\nendstream\nendobj\n")

	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", offsets[7])
	return buf.Bytes()
}

// buildTwoPageDoc returns a document with a catalog, info, a two-page
// tree with inherited MediaBox, a font, and simple content streams.
func buildTwoPageDoc() []byte {
	b := newPDFBuilder("1.6")

	b.addObject(1, `<< /Type /Catalog /Pages 2 0 R /Outlines 9 0 R >>`)
	b.addObject(2, `<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 /MediaBox [0 0 612 792] /Resources << /Font << /F1 7 0 R >> >> >>`)
	b.addObject(3, `<< /Type /Page /Parent 2 0 R /Contents 5 0 R /Annots [11 0 R] >>`)
	b.addObject(4, `<< /Type /Page /Parent 2 0 R /Contents 6 0 R /MediaBox [0 0 200 200] >>`)
	b.addStream(5, "", []byte("BT /F1 12 Tf 72 720 Td (Page one text) Tj ET"))
	b.addStream(6, "", []byte("BT /F1 10 Tf (Second) Tj ET"))
	b.addObject(7, `<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>`)
	b.addObject(8, `<< /Title (Example Document) /Author (vellum) >>`)
	b.addObject(9, `<< /Type /Outlines /First 10 0 R /Count 1 >>`)
	b.addObject(10, `<< /Title (Start of Document) >>`)
	b.addObject(11, `<< /Type /Annot /Subtype /Text /Subj (Text Box) /Rect [0 0 50 50] >>`)
	b.setTrailer("Info", "8 0 R")

	return b.finish(1)
}
