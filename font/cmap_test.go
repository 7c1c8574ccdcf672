package font

import (
	"strings"
	"testing"
)

const sampleToUnicode = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<00> <FF>
endcodespacerange
2 beginbfchar
<41> <0041>
<42> <00660066>
endbfchar
1 beginbfrange
<61> <7A> <0061>
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end`

// TestParseCMapBasics parses codespaces, bfchar, and bfrange entries.
func TestParseCMapBasics(t *testing.T) {
	cm, err := ParseCMap([]byte(sampleToUnicode))
	if err != nil {
		t.Fatalf("ParseCMap() error = %v", err)
	}

	if cm.Name() != "Adobe-Identity-UCS" {
		t.Errorf("Name() = %q", cm.Name())
	}
	registry, ordering, _ := cm.CIDSystemInfo()
	if registry != "Adobe" || ordering != "UCS" {
		t.Errorf("CIDSystemInfo() = %q %q", registry, ordering)
	}

	tests := []struct {
		code uint32
		want string
	}{
		{0x41, "A"},
		{0x42, "ff"}, // multi-scalar destination
		{0x61, "a"},
		{0x6D, "m"},
		{0x7A, "z"},
	}
	for _, tt := range tests {
		got, ok := cm.Lookup(tt.code, 1)
		if !ok || got != tt.want {
			t.Errorf("Lookup(%#x) = %q %v, want %q", tt.code, got, ok, tt.want)
		}
	}

	if _, ok := cm.Lookup(0x05, 1); ok {
		t.Error("Lookup(0x05) succeeded for an unmapped code")
	}
}

// TestParseCMapRangeArray handles per-code array destinations.
func TestParseCMapRangeArray(t *testing.T) {
	src := `1 begincodespacerange
<00> <FF>
endcodespacerange
1 beginbfrange
<10> <12> [<0058> <0059> <005A>]
endbfrange`

	cm, err := ParseCMap([]byte(src))
	if err != nil {
		t.Fatalf("ParseCMap() error = %v", err)
	}

	for i, want := range []string{"X", "Y", "Z"} {
		got, ok := cm.Lookup(uint32(0x10+i), 1)
		if !ok || got != want {
			t.Errorf("Lookup(%#x) = %q %v, want %q", 0x10+i, got, ok, want)
		}
	}
}

// TestParseCMapTwoByte handles composite-font codespaces and scanning.
func TestParseCMapTwoByte(t *testing.T) {
	src := `1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 beginbfrange
<0041> <005A> <0041>
endbfrange`

	cm, err := ParseCMap([]byte(src))
	if err != nil {
		t.Fatalf("ParseCMap() error = %v", err)
	}

	code, size, ok := cm.NextCode([]byte{0x00, 0x41, 0x00, 0x42})
	if !ok || code != 0x41 || size != 2 {
		t.Fatalf("NextCode = %#x size %d ok %v, want 0x41 size 2", code, size, ok)
	}

	got, ok := cm.Lookup(0x0041, 2)
	if !ok || got != "A" {
		t.Errorf("Lookup(0x0041, 2) = %q %v", got, ok)
	}

	// A one-byte lookup must not alias the two-byte mapping.
	if _, ok := cm.Lookup(0x41, 1); ok {
		t.Error("one-byte lookup aliased a two-byte code")
	}
}

// TestParseCMapGreedyMatch prefers the longest codespace match.
func TestParseCMapGreedyMatch(t *testing.T) {
	src := `2 begincodespacerange
<00> <7F>
<8000> <FFFF>
endcodespacerange`

	cm, err := ParseCMap([]byte(src))
	if err != nil {
		t.Fatalf("ParseCMap() error = %v", err)
	}

	// 0x80 0x01 falls only in the two-byte space.
	code, size, ok := cm.NextCode([]byte{0x80, 0x01})
	if !ok || size != 2 || code != 0x8001 {
		t.Errorf("NextCode(8001) = %#x size %d ok %v", code, size, ok)
	}

	// 0x41 falls in the one-byte space.
	code, size, ok = cm.NextCode([]byte{0x41, 0x42})
	if !ok || size != 1 || code != 0x41 {
		t.Errorf("NextCode(41) = %#x size %d ok %v", code, size, ok)
	}
}

// TestParseCMapOverlapRejected rejects overlapping ranges at parse time.
func TestParseCMapOverlapRejected(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "overlapping codespaces",
			src: `2 begincodespacerange
<00> <7F>
<40> <8F>
endcodespacerange`,
		},
		{
			name: "overlapping bfranges",
			src: `1 begincodespacerange
<00> <FF>
endcodespacerange
2 beginbfrange
<40> <5F> <0041>
<50> <6F> <0061>
endbfrange`,
		},
		{
			name: "overlapping cidranges",
			src: `1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 begincidrange
<0000> <00FF> 0
<0080> <01FF> 256
endcidrange`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCMap([]byte(tt.src))
			if err == nil {
				t.Fatal("expected overlap rejection, got nil error")
			}
			if !strings.Contains(err.Error(), "overlap") {
				t.Errorf("error = %v, want overlap report", err)
			}
		})
	}
}

// TestParseCMapCID covers cidchar and cidrange lookups.
func TestParseCMapCID(t *testing.T) {
	src := `1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 begincidchar
<0020> 1
endcidchar
1 begincidrange
<0041> <005A> 34
endcidrange`

	cm, err := ParseCMap([]byte(src))
	if err != nil {
		t.Fatalf("ParseCMap() error = %v", err)
	}

	if cid, ok := cm.LookupCID(0x20, 2); !ok || cid != 1 {
		t.Errorf("LookupCID(0x20) = %d %v", cid, ok)
	}
	if cid, ok := cm.LookupCID(0x42, 2); !ok || cid != 35 {
		t.Errorf("LookupCID(0x42) = %d %v, want 35", cid, ok)
	}
}

// TestParseCMapWMode reads the writing mode.
func TestParseCMapWMode(t *testing.T) {
	cm, err := ParseCMap([]byte("/WMode 1 def"))
	if err != nil {
		t.Fatalf("ParseCMap() error = %v", err)
	}
	if cm.WMode() != 1 {
		t.Errorf("WMode() = %d, want 1", cm.WMode())
	}
}

// TestIdentityCMap scans two-byte codes over the full range.
func TestIdentityCMap(t *testing.T) {
	cm := NewIdentityCMap(false)

	code, size, ok := cm.NextCode([]byte{0x12, 0x34})
	if !ok || code != 0x1234 || size != 2 {
		t.Errorf("NextCode = %#x size %d ok %v", code, size, ok)
	}
	if cid, ok := cm.LookupCID(0x1234, 2); !ok || cid != 0x1234 {
		t.Errorf("LookupCID = %d %v", cid, ok)
	}

	vertical := NewIdentityCMap(true)
	if vertical.WMode() != 1 || vertical.Name() != "Identity-V" {
		t.Errorf("vertical identity = %q wmode %d", vertical.Name(), vertical.WMode())
	}
}

// TestSurrogateDestinations decodes UTF-16 surrogate pairs in bfchar.
func TestSurrogateDestinations(t *testing.T) {
	src := `1 begincodespacerange
<00> <FF>
endcodespacerange
1 beginbfchar
<01> <D835DC00>
endbfchar`

	cm, err := ParseCMap([]byte(src))
	if err != nil {
		t.Fatalf("ParseCMap() error = %v", err)
	}
	got, ok := cm.Lookup(0x01, 1)
	if !ok || got != "\U0001D400" {
		t.Errorf("Lookup(0x01) = %q %v, want mathematical bold A", got, ok)
	}
}
