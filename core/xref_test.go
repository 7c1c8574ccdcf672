package core

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// buildClassicXRef assembles a minimal file body with one classic xref
// section and returns it with the section's offset.
func buildClassicXRef(t *testing.T, entries string, trailer string) (*bytes.Buffer, int64) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offset := int64(buf.Len())
	buf.WriteString("xref\n")
	buf.WriteString(entries)
	buf.WriteString("trailer\n")
	buf.WriteString(trailer)
	buf.WriteString("\nstartxref\n")
	fmt.Fprintf(&buf, "%d\n", offset)
	buf.WriteString("%%EOF\n")
	return &buf, offset
}

// TestFindXRef locates the startxref pointer in the trailing window.
func TestFindXRef(t *testing.T) {
	buf, offset := buildClassicXRef(t,
		"0 1\n0000000000 65535 f \n",
		"<< /Size 1 /Root 1 0 R >>")

	parser := NewXRefParser(bytes.NewReader(buf.Bytes()))
	got, err := parser.FindXRef()
	if err != nil {
		t.Fatalf("FindXRef() error = %v", err)
	}
	if got != offset {
		t.Errorf("offset = %d, want %d", got, offset)
	}
}

// TestFindXRefMissing reports ErrXRefNotFound.
func TestFindXRefMissing(t *testing.T) {
	parser := NewXRefParser(strings.NewReader("%PDF-1.4\nno pointer here\n%%EOF"))
	_, err := parser.FindXRef()
	if err != ErrXRefNotFound {
		t.Errorf("err = %v, want ErrXRefNotFound", err)
	}
}

// TestParseClassicXRef parses subsections, free entries, and the trailer.
func TestParseClassicXRef(t *testing.T) {
	buf, offset := buildClassicXRef(t,
		"0 3\n0000000000 65535 f \n0000000017 00000 n \n0000000081 00000 n \n",
		"<< /Size 3 /Root 1 0 R >>")

	parser := NewXRefParser(bytes.NewReader(buf.Bytes()))
	table, err := parser.ParseXRef(offset)
	if err != nil {
		t.Fatalf("ParseXRef() error = %v", err)
	}

	if table.Size() != 3 {
		t.Errorf("Size() = %d, want 3", table.Size())
	}
	if table.IsStream {
		t.Error("IsStream = true for a classic table")
	}

	free, ok := table.Get(0)
	if !ok || free.InUse || free.Type != XRefEntryFree {
		t.Errorf("entry 0 = %+v, want free", free)
	}
	one, ok := table.Get(1)
	if !ok || !one.InUse || one.Offset != 17 {
		t.Errorf("entry 1 = %+v, want in-use at 17", one)
	}

	if size, _ := table.Trailer.GetInt("Size"); size != 3 {
		t.Errorf("trailer Size = %d", size)
	}
	if root, ok := table.Trailer.GetIndirectRef("Root"); !ok || root.Number != 1 {
		t.Errorf("trailer Root = %v", table.Trailer.Get("Root"))
	}
}

// TestXRefMergePrecedence verifies that when two sections define the same
// object, the newer section's entry prevails.
func TestXRefMergePrecedence(t *testing.T) {
	older := NewXRefTable()
	older.Set(1, &XRefEntry{Type: XRefEntryUncompressed, Offset: 100, InUse: true})
	older.Set(2, &XRefEntry{Type: XRefEntryUncompressed, Offset: 200, InUse: true})
	older.Trailer = Dict{"Size": Int(3), "Root": IndirectRef{Number: 1}}

	newer := NewXRefTable()
	newer.Set(2, &XRefEntry{Type: XRefEntryUncompressed, Offset: 999, InUse: true})
	newer.Trailer = Dict{"Size": Int(3)}

	merged := MergeXRefTables(older, newer)

	if e, _ := merged.Get(1); e == nil || e.Offset != 100 {
		t.Errorf("object 1 = %+v, want older entry at 100", e)
	}
	if e, _ := merged.Get(2); e == nil || e.Offset != 999 {
		t.Errorf("object 2 = %+v, want newer entry at 999", e)
	}
	// The newer trailer wins, with older keys preserved when absent.
	if root, ok := merged.Trailer.GetIndirectRef("Root"); !ok || root.Number != 1 {
		t.Errorf("merged trailer Root = %v", merged.Trailer.Get("Root"))
	}
}

// TestParseAllXRefsPrevChain builds two chained sections and checks
// oldest-first ordering plus merged precedence.
func TestParseAllXRefsPrevChain(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	oldOffset := int64(buf.Len())
	buf.WriteString("xref\n0 2\n0000000000 65535 f \n0000000100 00000 n \n")
	buf.WriteString("trailer\n<< /Size 2 /Root 1 0 R >>\n")

	newOffset := int64(buf.Len())
	buf.WriteString("xref\n1 1\n0000000555 00000 n \n")
	fmt.Fprintf(&buf, "trailer\n<< /Size 2 /Prev %d >>\n", oldOffset)

	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", newOffset)

	parser := NewXRefParser(bytes.NewReader(buf.Bytes()))
	tables, err := parser.ParseAllXRefs()
	if err != nil {
		t.Fatalf("ParseAllXRefs() error = %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("len(tables) = %d, want 2", len(tables))
	}

	merged := MergeXRefTables(tables...)
	if e, _ := merged.Get(1); e == nil || e.Offset != 555 {
		t.Errorf("object 1 = %+v, want newest offset 555", e)
	}
	if root, ok := merged.Trailer.GetIndirectRef("Root"); !ok || root.Number != 1 {
		t.Errorf("merged trailer lost Root: %v", merged.Trailer.Get("Root"))
	}
}
