package pages

import (
	"fmt"

	"github.com/tsawler/vellum/core"
)

// Annotation is a typed view over an annotation dictionary from a page's
// /Annots array.
type Annotation struct {
	dict     core.Dict
	resolver ObjectResolver
}

// Dict returns the underlying dictionary.
func (a *Annotation) Dict() core.Dict { return a.dict }

// Subtype returns the annotation subtype (Text, Link, Widget, ...).
func (a *Annotation) Subtype() string {
	name, _ := a.dict.GetName("Subtype")
	return string(name)
}

// Subj returns the /Subj entry's raw bytes, or nil when absent.
func (a *Annotation) Subj() []byte {
	if s, ok := a.dict.GetString("Subj"); ok {
		return s.Value
	}
	return nil
}

// Contents returns the annotation's text content, or "".
func (a *Annotation) Contents() string {
	if s, ok := a.dict.GetString("Contents"); ok {
		return string(s.Value)
	}
	return ""
}

// Rect returns the annotation rectangle [x1 y1 x2 y2].
func (a *Annotation) Rect() ([]float64, error) {
	rectObj := a.dict.Get("Rect")
	if rectObj == nil {
		return nil, fmt.Errorf("annotation missing /Rect")
	}
	resolved, err := a.resolver.Resolve(rectObj)
	if err != nil {
		return nil, fmt.Errorf("resolve /Rect: %w", err)
	}
	arr, ok := resolved.(core.Array)
	if !ok || len(arr) != 4 {
		return nil, fmt.Errorf("invalid /Rect: %v", resolved)
	}
	rect := make([]float64, 4)
	for i := range arr {
		v, ok := arr.GetNumber(i)
		if !ok {
			return nil, fmt.Errorf("invalid /Rect element %d", i)
		}
		rect[i] = v
	}
	return rect, nil
}

// Get resolves and returns an arbitrary annotation entry.
func (a *Annotation) Get(key string) (core.Object, error) {
	obj := a.dict.Get(key)
	if obj == nil {
		return nil, nil
	}
	return a.resolver.Resolve(obj)
}

// Annots returns the page's annotations in array order. Pages without
// /Annots yield an empty slice.
func (p *Page) Annots() ([]*Annotation, error) {
	annotsObj := p.dict.Get("Annots")
	if annotsObj == nil {
		return nil, nil
	}

	resolved, err := p.resolver.Resolve(annotsObj)
	if err != nil {
		return nil, fmt.Errorf("resolve /Annots: %w", err)
	}
	arr, ok := resolved.(core.Array)
	if !ok {
		return nil, fmt.Errorf("invalid /Annots type: %T", resolved)
	}

	annots := make([]*Annotation, 0, len(arr))
	for i, elem := range arr {
		elemResolved, err := p.resolver.Resolve(elem)
		if err != nil {
			return nil, fmt.Errorf("resolve annotation %d: %w", i, err)
		}
		dict, ok := elemResolved.(core.Dict)
		if !ok {
			continue
		}
		annots = append(annots, &Annotation{dict: dict, resolver: p.resolver})
	}
	return annots, nil
}
