package pages

import (
	"fmt"

	"github.com/tsawler/vellum/core"
)

// ObjectResolver resolves indirect references for the typed views.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// Catalog is a typed view over the document's root dictionary
// (/Type /Catalog).
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog creates a catalog view.
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Dict returns the underlying dictionary.
func (c *Catalog) Dict() core.Dict { return c.dict }

// Type returns the catalog's /Type entry, normally "Catalog".
func (c *Catalog) Type() string {
	name, _ := c.dict.GetName("Type")
	return string(name)
}

// Get resolves and returns an arbitrary catalog entry.
func (c *Catalog) Get(key string) (core.Object, error) {
	obj := c.dict.Get(key)
	if obj == nil {
		return nil, nil
	}
	return c.resolver.Resolve(obj)
}

// Pages returns the page tree root dictionary.
func (c *Catalog) Pages() (core.Dict, error) {
	pagesRef := c.dict.Get("Pages")
	if pagesRef == nil {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}
	pagesObj, err := c.resolver.Resolve(pagesRef)
	if err != nil {
		return nil, fmt.Errorf("resolve /Pages: %w", err)
	}
	pagesDict, ok := pagesObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid /Pages type: %T", pagesObj)
	}
	return pagesDict, nil
}

// Metadata returns the metadata stream, or nil when absent.
func (c *Catalog) Metadata() (*core.Stream, error) {
	metadataRef := c.dict.Get("Metadata")
	if metadataRef == nil {
		return nil, nil
	}
	metadataObj, err := c.resolver.Resolve(metadataRef)
	if err != nil {
		return nil, fmt.Errorf("resolve /Metadata: %w", err)
	}
	stream, ok := metadataObj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("invalid /Metadata type: %T", metadataObj)
	}
	return stream, nil
}

// Outlines returns the document outline view, or nil when the document has
// none.
func (c *Catalog) Outlines() (*Outlines, error) {
	outlinesRef := c.dict.Get("Outlines")
	if outlinesRef == nil {
		return nil, nil
	}
	outlinesObj, err := c.resolver.Resolve(outlinesRef)
	if err != nil {
		return nil, fmt.Errorf("resolve /Outlines: %w", err)
	}
	dict, ok := outlinesObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid /Outlines type: %T", outlinesObj)
	}
	return &Outlines{dict: dict, resolver: c.resolver}, nil
}

// Version returns the catalog /Version entry if present.
func (c *Catalog) Version() string {
	name, _ := c.dict.GetName("Version")
	return string(name)
}

// PageTree walks the page tree rooted at a /Type /Pages dictionary.
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page // flattened preorder page list, built lazily
}

// NewPageTree creates a page tree over the root pages dictionary.
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the total page count from the root /Count entry.
func (t *PageTree) Count() (int, error) {
	count, ok := t.root.GetInt("Count")
	if !ok {
		return 0, fmt.Errorf("page tree missing /Count entry")
	}
	return int(count), nil
}

// GetPage returns the page at a 0-based index in preorder.
func (t *PageTree) GetPage(index int) (*Page, error) {
	if t.pages == nil {
		if err := t.loadPages(); err != nil {
			return nil, err
		}
	}
	if index < 0 || index >= len(t.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(t.pages))
	}
	return t.pages[index], nil
}

// Pages returns all pages in preorder.
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages == nil {
		if err := t.loadPages(); err != nil {
			return nil, err
		}
	}
	return t.pages, nil
}

// loadPages flattens the tree by preorder traversal.
func (t *PageTree) loadPages() error {
	t.pages = make([]*Page, 0)
	if err := t.traverse(t.root, nil, 0); err != nil {
		return fmt.Errorf("traverse page tree: %w", err)
	}
	return nil
}

const maxTreeDepth = 64

// traverse walks one node. ancestors holds the chain of Pages dictionaries
// from the root down to (and excluding) node, for attribute inheritance.
func (t *PageTree) traverse(node core.Dict, ancestors []core.Dict, depth int) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
	}

	typeName, ok := node.GetName("Type")
	if !ok {
		return fmt.Errorf("page tree node missing /Type entry")
	}

	switch string(typeName) {
	case "Pages":
		kidsObj := node.Get("Kids")
		if kidsObj == nil {
			return fmt.Errorf("Pages node missing /Kids entry")
		}
		kidsResolved, err := t.resolver.Resolve(kidsObj)
		if err != nil {
			return fmt.Errorf("resolve /Kids: %w", err)
		}
		kids, ok := kidsResolved.(core.Array)
		if !ok {
			return fmt.Errorf("invalid /Kids type: %T", kidsResolved)
		}

		chain := append(append([]core.Dict(nil), ancestors...), node)
		for i, kidObj := range kids {
			kidResolved, err := t.resolver.Resolve(kidObj)
			if err != nil {
				return fmt.Errorf("resolve kid %d: %w", i, err)
			}
			kidDict, ok := kidResolved.(core.Dict)
			if !ok {
				return fmt.Errorf("invalid kid type: %T", kidResolved)
			}
			if err := t.traverse(kidDict, chain, depth+1); err != nil {
				return err
			}
		}

	case "Page":
		t.pages = append(t.pages, NewPage(node, ancestors, t.resolver))

	default:
		return fmt.Errorf("unexpected page tree node type %q", typeName)
	}

	return nil
}

// Page is a typed view over a /Type /Page dictionary with inheritance
// applied through its ancestor chain.
type Page struct {
	dict      core.Dict
	ancestors []core.Dict // root first, immediate parent last
	resolver  ObjectResolver
}

// NewPage creates a page view. ancestors lists the Pages dictionaries from
// the tree root down to the page's immediate parent.
func NewPage(dict core.Dict, ancestors []core.Dict, resolver ObjectResolver) *Page {
	return &Page{dict: dict, ancestors: ancestors, resolver: resolver}
}

// Dict returns the underlying dictionary.
func (p *Page) Dict() core.Dict { return p.dict }

// Type returns the page's /Type entry, normally "Page".
func (p *Page) Type() string {
	name, _ := p.dict.GetName("Type")
	return string(name)
}

// Get resolves and returns an arbitrary page entry without inheritance.
func (p *Page) Get(key string) (core.Object, error) {
	obj := p.dict.Get(key)
	if obj == nil {
		return nil, nil
	}
	return p.resolver.Resolve(obj)
}

// Parent returns the immediate parent Pages dictionary, or nil at the
// root.
func (p *Page) Parent() core.Dict {
	if len(p.ancestors) == 0 {
		return nil
	}
	return p.ancestors[len(p.ancestors)-1]
}

// findInherited returns the nearest definition of an inheritable key,
// searching the page first and then the ancestors leaf-to-root.
func (p *Page) findInherited(key string) core.Object {
	if obj := p.dict.Get(key); obj != nil {
		return obj
	}
	for i := len(p.ancestors) - 1; i >= 0; i-- {
		if obj := p.ancestors[i].Get(key); obj != nil {
			return obj
		}
	}
	return nil
}

// MediaBox returns the page media box [x1 y1 x2 y2], inherited.
func (p *Page) MediaBox() ([]float64, error) {
	return p.getBox("MediaBox")
}

// CropBox returns the crop box, defaulting to MediaBox when absent.
func (p *Page) CropBox() ([]float64, error) {
	box, err := p.getBox("CropBox")
	if err != nil {
		return p.MediaBox()
	}
	return box, nil
}

// getBox retrieves an inheritable rectangle attribute.
func (p *Page) getBox(name string) ([]float64, error) {
	boxObj := p.findInherited(name)
	if boxObj == nil {
		return nil, fmt.Errorf("%s not found", name)
	}

	boxResolved, err := p.resolver.Resolve(boxObj)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", name, err)
	}
	boxArr, ok := boxResolved.(core.Array)
	if !ok {
		return nil, fmt.Errorf("invalid %s type: %T", name, boxResolved)
	}
	if len(boxArr) != 4 {
		return nil, fmt.Errorf("invalid %s length: %d (expected 4)", name, len(boxArr))
	}

	box := make([]float64, 4)
	for i := range boxArr {
		elemResolved, err := p.resolver.Resolve(boxArr[i])
		if err != nil {
			return nil, fmt.Errorf("resolve %s element: %w", name, err)
		}
		switch v := elemResolved.(type) {
		case core.Int:
			box[i] = float64(v)
		case core.Real:
			box[i] = float64(v)
		default:
			return nil, fmt.Errorf("invalid %s element type: %T", name, elemResolved)
		}
	}
	return box, nil
}

// Resources returns the page's effective resources: the merge of every
// inherited /Resources dictionary along the ancestor chain from root to
// leaf, descendants overriding. The result is always a defined dictionary,
// possibly empty.
func (p *Page) Resources() (core.Dict, error) {
	merged := make(core.Dict)

	apply := func(owner core.Dict) error {
		resObj := owner.Get("Resources")
		if resObj == nil {
			return nil
		}
		resolved, err := p.resolver.Resolve(resObj)
		if err != nil {
			return fmt.Errorf("resolve Resources: %w", err)
		}
		resDict, ok := resolved.(core.Dict)
		if !ok {
			return fmt.Errorf("invalid Resources type: %T", resolved)
		}
		merged = core.Merge(merged, resDict)
		return nil
	}

	for _, ancestor := range p.ancestors {
		if err := apply(ancestor); err != nil {
			return nil, err
		}
	}
	if err := apply(p.dict); err != nil {
		return nil, err
	}

	return merged, nil
}

// Contents returns the page's content stream or streams in order.
func (p *Page) Contents() ([]*core.Stream, error) {
	contentsObj := p.dict.Get("Contents")
	if contentsObj == nil {
		return nil, nil
	}

	contentsResolved, err := p.resolver.Resolve(contentsObj)
	if err != nil {
		return nil, fmt.Errorf("resolve Contents: %w", err)
	}

	switch v := contentsResolved.(type) {
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			resolved, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("resolve contents[%d]: %w", i, err)
			}
			stream, ok := resolved.(*core.Stream)
			if !ok {
				return nil, fmt.Errorf("contents[%d] is %T, expected stream", i, resolved)
			}
			streams = append(streams, stream)
		}
		return streams, nil
	default:
		return nil, fmt.Errorf("invalid Contents type: %T", contentsResolved)
	}
}

// Rotate returns the inherited page rotation (0, 90, 180, or 270).
func (p *Page) Rotate() int {
	rotateObj := p.findInherited("Rotate")
	if rotateObj == nil {
		return 0
	}
	if resolved, err := p.resolver.Resolve(rotateObj); err == nil {
		if rotate, ok := resolved.(core.Int); ok {
			return int(rotate)
		}
	}
	return 0
}

// Width returns the MediaBox width.
func (p *Page) Width() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[2] - box[0], nil
}

// Height returns the MediaBox height.
func (p *Page) Height() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[3] - box[1], nil
}
