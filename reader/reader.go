package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/tsawler/vellum/core"
	"github.com/tsawler/vellum/pages"
	"github.com/tsawler/vellum/resolver"
)

// ErrMalformedHeader reports a missing %PDF- signature. Fatal at open.
var ErrMalformedHeader = errors.New("malformed PDF header")

// ErrEncrypted reports a document with an /Encrypt dictionary. The engine
// recognizes encryption and refuses; it does not decrypt.
var ErrEncrypted = errors.New("document is encrypted")

// MissingObjectError reports an indirect object absent from the merged
// cross-reference table. Resolution returns the null object alongside it.
type MissingObjectError struct {
	Ref core.IndirectRef
}

func (e *MissingObjectError) Error() string {
	return fmt.Sprintf("missing object %s", e.Ref.String())
}

// PDFVersion is a parsed header version.
type PDFVersion struct {
	Major int
	Minor int
}

// String formats the version as "1.7".
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// objKey identifies a cached object.
type objKey struct {
	num, gen int
}

// ByteSource is the seekable, byte-addressable view the Reader consumes:
// random reads at any offset plus cursor-based reads for scanning.
// os.File and bytes.Reader both satisfy it.
type ByteSource interface {
	io.ReaderAt
	io.ReadSeeker
}

// Reader is a single PDF file open for reading. It is not safe for
// concurrent use: the object cache and the underlying file cursor are
// shared mutable state. Independent Readers over distinct files may run
// in parallel.
type Reader struct {
	file      ByteSource
	closer    io.Closer
	xrefTable *core.XRefTable
	trailer   core.Dict
	version   PDFVersion
	fileSize  int64

	objCache     map[objKey]core.Object
	objStmCache  map[int]*core.ObjectStream
	pageTree     *pages.PageTree
	deepResolver *resolver.ObjectResolver
	warnings     []Warning
}

// Ensure Reader satisfies the typed-view resolver interfaces.
var _ pages.ObjectResolver = (*Reader)(nil)
var _ core.ReferenceResolver = (*Reader)(nil)

// Open opens a PDF file by name.
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	r, err := NewReaderFrom(file, fileSizeOf(file))
	if err != nil {
		file.Close()
		return nil, err
	}
	r.closer = file
	return r, nil
}

func fileSizeOf(file *os.File) int64 {
	if info, err := file.Stat(); err == nil {
		return info.Size()
	}
	return 0
}

// NewReader opens a PDF from an already-open file.
func NewReader(file *os.File) (*Reader, error) {
	return NewReaderFrom(file, fileSizeOf(file))
}

// NewReaderFrom opens a PDF from any seekable byte source of the given
// size. The source is borrowed for the Reader's lifetime and must remain
// open and seekable.
func NewReaderFrom(src ByteSource, size int64) (*Reader, error) {
	if size <= 0 {
		size, _ = src.Seek(0, io.SeekEnd)
	}
	r := &Reader{
		file:        src,
		fileSize:    size,
		objCache:    make(map[objKey]core.Object),
		objStmCache: make(map[int]*core.ObjectStream),
	}

	version, err := r.parseHeader()
	if err != nil {
		return nil, err
	}
	r.version = version

	xrefTable, err := r.loadXRef()
	if err != nil {
		return nil, fmt.Errorf("load xref: %w", err)
	}
	r.xrefTable = xrefTable
	r.trailer = xrefTable.Trailer

	if r.trailer.Has("Encrypt") {
		return nil, ErrEncrypted
	}

	return r, nil
}

// Close closes the underlying file when the Reader opened it.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Warn records a non-fatal finding.
func (r *Reader) Warn(category WarningCategory, format string, args ...interface{}) {
	r.warnings = append(r.warnings, Warning{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnings returns the findings accumulated so far.
func (r *Reader) Warnings() []Warning {
	return r.warnings
}

var headerPattern = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)

// parseHeader parses the %PDF-x.y signature from the first line.
func (r *Reader) parseHeader() (PDFVersion, error) {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return PDFVersion{}, fmt.Errorf("seek to start: %w", err)
	}

	header := make([]byte, 16)
	n, err := r.file.Read(header)
	if err != nil && err != io.EOF {
		return PDFVersion{}, fmt.Errorf("read header: %w", err)
	}

	matches := headerPattern.FindSubmatch(header[:n])
	if matches == nil {
		return PDFVersion{}, ErrMalformedHeader
	}

	major, _ := strconv.Atoi(string(matches[1]))
	minor, _ := strconv.Atoi(string(matches[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

// loadXRef parses the newest cross-reference section and merges the /Prev
// chain, newer entries winning.
func (r *Reader) loadXRef() (*core.XRefTable, error) {
	xrefParser := core.NewXRefParser(r.file)

	tables, err := xrefParser.ParseAllXRefs()
	if err != nil {
		return nil, err
	}
	if len(tables) == 1 {
		return tables[0], nil
	}
	return core.MergeXRefTables(tables...), nil
}

// Version returns the header version.
func (r *Reader) Version() PDFVersion { return r.version }

// Trailer returns the merged trailer dictionary.
func (r *Reader) Trailer() core.Dict { return r.trailer }

// FileSize returns the source size in bytes.
func (r *Reader) FileSize() int64 { return r.fileSize }

// XRefTable returns the merged cross-reference table.
func (r *Reader) XRefTable() *core.XRefTable { return r.xrefTable }

// GetObject loads the object with the given number, caching the result.
// Objects compressed into object streams load through their stream.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	return r.getObject(objNum, -1)
}

func (r *Reader) getObject(objNum, gen int) (core.Object, error) {
	entry, ok := r.xrefTable.Get(objNum)
	if !ok {
		return nil, &MissingObjectError{Ref: core.IndirectRef{Number: objNum, Generation: maxInt(gen, 0)}}
	}
	if !entry.InUse {
		return nil, &MissingObjectError{Ref: core.IndirectRef{Number: objNum, Generation: maxInt(gen, 0)}}
	}

	key := objKey{num: objNum, gen: entry.Generation}
	if entry.Type == core.XRefEntryCompressed {
		key.gen = 0
	}
	if obj, ok := r.objCache[key]; ok {
		return obj, nil
	}

	var obj core.Object
	var err error
	switch entry.Type {
	case core.XRefEntryCompressed:
		obj, err = r.loadCompressedObject(objNum, entry)
	default:
		obj, err = r.loadUncompressedObject(objNum, entry)
	}
	if err != nil {
		return nil, err
	}

	r.objCache[key] = obj
	return obj, nil
}

// loadUncompressedObject parses one indirect object at the entry's
// offset. The parse runs over its own section view so that nested
// resolution (an indirect /Length) cannot disturb it.
func (r *Reader) loadUncompressedObject(objNum int, entry *core.XRefEntry) (core.Object, error) {
	section := io.NewSectionReader(r.file, entry.Offset, r.fileSize-entry.Offset)

	parser := core.NewParserAt(section, entry.Offset)
	parser.SetReferenceResolver(r)
	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("parse object %d: %w", objNum, err)
	}
	for _, w := range parser.Warnings() {
		r.Warn(WarnSyntax, "object %d: %s", objNum, w)
	}

	if indObj.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, indObj.Ref.Number)
	}
	return indObj.Object, nil
}

// loadCompressedObject extracts the object from its /ObjStm container,
// loading and caching the container on demand and following /Extends
// chains.
func (r *Reader) loadCompressedObject(objNum int, entry *core.XRefEntry) (core.Object, error) {
	stmNum := entry.StreamObjectNumber()

	const maxExtends = 32
	for hop := 0; hop < maxExtends; hop++ {
		objStm, err := r.objectStream(stmNum)
		if err != nil {
			return nil, err
		}

		if ok, err := objStm.ContainsObject(objNum); err != nil {
			return nil, err
		} else if ok {
			obj, _, err := objStm.GetObjectByNumber(objNum)
			if err != nil {
				return nil, fmt.Errorf("extract object %d from stream %d: %w", objNum, stmNum, err)
			}
			return obj, nil
		}

		ext := objStm.Extends()
		if ext == nil {
			break
		}
		stmNum = ext.Number
	}
	return nil, fmt.Errorf("object %d not found in object stream %d", objNum, entry.StreamObjectNumber())
}

// objectStream loads and caches the /ObjStm with the given object number.
func (r *Reader) objectStream(stmNum int) (*core.ObjectStream, error) {
	if objStm, ok := r.objStmCache[stmNum]; ok {
		return objStm, nil
	}

	stmObj, err := r.GetObject(stmNum)
	if err != nil {
		return nil, fmt.Errorf("load object stream %d: %w", stmNum, err)
	}
	stream, ok := stmObj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("object %d is %T, expected object stream", stmNum, stmObj)
	}
	objStm, err := core.NewObjectStream(stream)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", stmNum, err)
	}

	r.objStmCache[stmNum] = objStm
	return objStm, nil
}

// ObjectStreamCacheSize returns the number of cached object streams.
func (r *Reader) ObjectStreamCacheSize() int {
	return len(r.objStmCache)
}

// ResolveReference resolves one indirect reference. A missing object
// yields the null object and a warning, per the engine's error policy.
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	obj, err := r.getObject(ref.Number, ref.Generation)
	var missing *MissingObjectError
	if errors.As(err, &missing) {
		r.Warn(WarnMissing, "%s resolves to null", ref.String())
		return core.Null{}, nil
	}
	return obj, err
}

// Resolve resolves obj when it is an indirect reference, otherwise
// returns it unchanged.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return r.ResolveReference(ref)
	}
	return obj, nil
}

// ResolveDeep recursively resolves every reference reachable from obj,
// with the resolver package's cycle detection guarding the walk.
func (r *Reader) ResolveDeep(obj core.Object) (core.Object, error) {
	if r.deepResolver == nil {
		r.deepResolver = resolver.NewResolver(r)
	}
	return r.deepResolver.ResolveDeep(obj)
}

// ClearCache drops all cached objects and object streams.
func (r *Reader) ClearCache() {
	r.objCache = make(map[objKey]core.Object)
	r.objStmCache = make(map[int]*core.ObjectStream)
}

// CacheSize returns the number of cached objects.
func (r *Reader) CacheSize() int {
	return len(r.objCache)
}

// Catalog returns the document catalog view.
func (r *Reader) Catalog() (*pages.Catalog, error) {
	rootRef := r.trailer.Get("Root")
	if rootRef == nil {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	rootObj, err := r.Resolve(rootRef)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog: %w", err)
	}
	catalog, ok := rootObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is %T, expected dictionary", rootObj)
	}
	return pages.NewCatalog(catalog, r), nil
}

// Info returns the document info dictionary, or nil when absent.
func (r *Reader) Info() (core.Dict, error) {
	infoRef := r.trailer.Get("Info")
	if infoRef == nil {
		return nil, nil
	}
	infoObj, err := r.Resolve(infoRef)
	if err != nil {
		return nil, fmt.Errorf("resolve info: %w", err)
	}
	info, ok := infoObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("info is %T, expected dictionary", infoObj)
	}
	return info, nil
}

// NumObjects returns the trailer /Size entry.
func (r *Reader) NumObjects() int {
	if size, ok := r.trailer.GetInt("Size"); ok {
		return int(size)
	}
	return 0
}

// PageCount returns the number of pages.
func (r *Reader) PageCount() (int, error) {
	if err := r.ensurePageTree(); err != nil {
		return 0, err
	}
	return r.pageTree.Count()
}

// GetPage returns the page at a 0-based index.
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.GetPage(index)
}

// Pages returns every page in preorder.
func (r *Reader) Pages() ([]*pages.Page, error) {
	if err := r.ensurePageTree(); err != nil {
		return nil, err
	}
	return r.pageTree.Pages()
}

// ensurePageTree builds the page tree view once.
func (r *Reader) ensurePageTree() error {
	if r.pageTree != nil {
		return nil
	}

	catalog, err := r.Catalog()
	if err != nil {
		return fmt.Errorf("get catalog: %w", err)
	}
	pagesDict, err := catalog.Pages()
	if err != nil {
		return fmt.Errorf("get pages root: %w", err)
	}
	r.pageTree = pages.NewPageTree(pagesDict, r)
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
