package reader

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/vellum/core"
)

func openTestDoc(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := NewReaderFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReaderFrom() error = %v", err)
	}
	return r
}

// TestHeaderVersion parses the %PDF-1.6 signature.
func TestHeaderVersion(t *testing.T) {
	r := openTestDoc(t, buildTwoPageDoc())
	if got := r.Version().String(); got != "1.6" {
		t.Errorf("Version() = %q, want 1.6", got)
	}
}

// TestMalformedHeader is fatal at open.
func TestMalformedHeader(t *testing.T) {
	data := []byte("not a pdf at all, definitely not")
	_, err := NewReaderFrom(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("err = %v, want ErrMalformedHeader", err)
	}
}

// TestEncryptedRefused refuses documents with an /Encrypt dictionary.
func TestEncryptedRefused(t *testing.T) {
	b := newPDFBuilder("1.6")
	b.addObject(1, `<< /Type /Catalog /Pages 2 0 R >>`)
	b.addObject(2, `<< /Type /Pages /Kids [] /Count 0 >>`)
	b.addObject(3, `<< /Filter /Standard /V 1 >>`)
	b.setTrailer("Encrypt", "3 0 R")
	data := b.finish(1)

	_, err := NewReaderFrom(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrEncrypted) {
		t.Errorf("err = %v, want ErrEncrypted", err)
	}
}

// TestCatalogAndPages loads the typed views.
func TestCatalogAndPages(t *testing.T) {
	r := openTestDoc(t, buildTwoPageDoc())

	catalog, err := r.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if catalog.Type() != "Catalog" {
		t.Errorf("catalog Type = %q", catalog.Type())
	}

	count, err := r.PageCount()
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("PageCount() = %d", count)
	}

	page, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0) error = %v", err)
	}

	// MediaBox is inherited from the pages root.
	box, err := page.MediaBox()
	if err != nil {
		t.Fatalf("MediaBox() error = %v", err)
	}
	if diff := cmp.Diff([]float64{0, 0, 612, 792}, box); diff != "" {
		t.Errorf("MediaBox mismatch:\n%s", diff)
	}

	// The second page declares its own.
	page2, _ := r.GetPage(1)
	box2, _ := page2.MediaBox()
	if box2[2] != 200 {
		t.Errorf("page 2 MediaBox = %v", box2)
	}

	// Annotations resolve through the reader.
	annots, err := page.Annots()
	if err != nil {
		t.Fatalf("Annots() error = %v", err)
	}
	if len(annots) != 1 || string(annots[0].Subj()) != "Text Box" {
		t.Errorf("annots = %v", annots)
	}

	// Outline title through the catalog.
	outlines, err := catalog.Outlines()
	if err != nil {
		t.Fatalf("Outlines() error = %v", err)
	}
	first, err := outlines.First()
	if err != nil || first == nil {
		t.Fatalf("First() = %v %v", first, err)
	}
	if string(first.Title()) != "Start of Document" {
		t.Errorf("outline title = %q", first.Title())
	}
}

// TestInfoDictionary reads trailer /Info.
func TestInfoDictionary(t *testing.T) {
	r := openTestDoc(t, buildTwoPageDoc())
	info, err := r.Info()
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if title, _ := info.GetString("Title"); title.Text() != "Example Document" {
		t.Errorf("Title = %q", title.Text())
	}
}

// TestObjectCaching verifies referential transparency: repeated
// resolution returns the identical cached value.
func TestObjectCaching(t *testing.T) {
	r := openTestDoc(t, buildTwoPageDoc())

	ref := core.IndirectRef{Number: 2}
	first, err := r.ResolveReference(ref)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.ResolveReference(ref)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	firstDict, ok1 := first.(core.Dict)
	secondDict, ok2 := second.(core.Dict)
	if !ok1 || !ok2 {
		t.Fatalf("resolved types: %T %T", first, second)
	}
	// Same underlying map, not merely equal content.
	firstDict["probe"] = core.Int(1)
	if !secondDict.Has("probe") {
		t.Error("repeated resolution returned a different value")
	}
	delete(firstDict, "probe")

	if r.CacheSize() == 0 {
		t.Error("CacheSize() = 0 after resolutions")
	}
	r.ClearCache()
	if r.CacheSize() != 0 {
		t.Error("ClearCache() left entries")
	}
}

// TestMissingObjectResolvesToNull warns and yields Null.
func TestMissingObjectResolvesToNull(t *testing.T) {
	r := openTestDoc(t, buildTwoPageDoc())

	got, err := r.ResolveReference(core.IndirectRef{Number: 999})
	if err != nil {
		t.Fatalf("ResolveReference() error = %v", err)
	}
	if _, ok := got.(core.Null); !ok {
		t.Errorf("resolved = %T, want Null", got)
	}

	warnings := r.Warnings()
	if len(warnings) == 0 || warnings[len(warnings)-1].Category != WarnMissing {
		t.Errorf("warnings = %v, want a missing-object warning", warnings)
	}
}

// TestStreamLengthExact verifies the raw payload honors /Length
// (property: len(raw) == Length before filtering).
func TestStreamLengthExact(t *testing.T) {
	r := openTestDoc(t, buildTwoPageDoc())

	obj, err := r.GetObject(5)
	if err != nil {
		t.Fatalf("GetObject(5) error = %v", err)
	}
	stream, ok := obj.(*core.Stream)
	if !ok {
		t.Fatalf("object 5 = %T", obj)
	}
	length, _ := stream.Dict.GetInt("Length")
	if int(length) != len(stream.Data) {
		t.Errorf("len(Data) = %d, /Length = %d", len(stream.Data), length)
	}
}

// TestCompressedObjects loads objects stored in an object stream through
// an xref stream (type 2 entries).
func TestCompressedObjects(t *testing.T) {
	data := buildObjStmDoc(t)
	r, err := NewReaderFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReaderFrom() error = %v", err)
	}

	count, err := r.PageCount()
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("PageCount() = %d", count)
	}

	page, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0) error = %v", err)
	}
	box, err := page.MediaBox()
	if err != nil {
		t.Fatalf("MediaBox() error = %v", err)
	}
	if box[2] != 300 {
		t.Errorf("MediaBox = %v", box)
	}

	if r.ObjectStreamCacheSize() != 1 {
		t.Errorf("ObjectStreamCacheSize() = %d, want 1", r.ObjectStreamCacheSize())
	}
}

// TestExtractPageImages decodes an image XObject.
func TestExtractPageImages(t *testing.T) {
	b := newPDFBuilder("1.5")
	b.addObject(1, `<< /Type /Catalog /Pages 2 0 R >>`)
	b.addObject(2, `<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 100 100] >>`)
	b.addObject(3, `<< /Type /Page /Parent 2 0 R /Resources << /XObject << /Im1 4 0 R >> >> >>`)
	b.addStream(4, `/Type /XObject /Subtype /Image /Width 2 /Height 2 /BitsPerComponent 8 /ColorSpace /DeviceGray /Filter /ASCIIHexDecode`,
		[]byte("00FF80C0>"))
	data := b.finish(1)

	r, err := NewReaderFrom(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReaderFrom() error = %v", err)
	}
	page, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0) error = %v", err)
	}

	images, err := r.ExtractPageImages(page)
	if err != nil {
		t.Fatalf("ExtractPageImages() error = %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("len(images) = %d", len(images))
	}

	img := images[0]
	if img.Width != 2 || img.Height != 2 || img.ColorSpace != "DeviceGray" {
		t.Errorf("image = %+v", img)
	}
	if !bytes.Equal(img.Data, []byte{0x00, 0xFF, 0x80, 0xC0}) {
		t.Errorf("decoded data = % X", img.Data)
	}

	pngData, err := img.ToPNG()
	if err != nil {
		t.Fatalf("ToPNG() error = %v", err)
	}
	if len(pngData) == 0 || !bytes.HasPrefix(pngData, []byte{0x89, 'P', 'N', 'G'}) {
		t.Errorf("ToPNG() = % X...", pngData[:min(8, len(pngData))])
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
