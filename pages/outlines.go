package pages

import (
	"fmt"

	"github.com/tsawler/vellum/core"
)

// Outlines is a typed view over the document outline root
// (/Type /Outlines).
type Outlines struct {
	dict     core.Dict
	resolver ObjectResolver
}

// Dict returns the underlying dictionary.
func (o *Outlines) Dict() core.Dict { return o.dict }

// Count returns the number of visible outline items, when declared.
func (o *Outlines) Count() int {
	count, _ := o.dict.GetInt("Count")
	return int(count)
}

// First returns the first top-level outline item, or nil.
func (o *Outlines) First() (*OutlineItem, error) {
	return o.itemAt("First")
}

// Last returns the last top-level outline item, or nil.
func (o *Outlines) Last() (*OutlineItem, error) {
	return o.itemAt("Last")
}

func (o *Outlines) itemAt(key string) (*OutlineItem, error) {
	ref := o.dict.Get(key)
	if ref == nil {
		return nil, nil
	}
	resolved, err := o.resolver.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("resolve outline /%s: %w", key, err)
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid outline item type: %T", resolved)
	}
	return &OutlineItem{dict: dict, resolver: o.resolver}, nil
}

// OutlineItem is one bookmark in the outline tree. Items are linked via
// First/Last (children) and Next/Prev (siblings).
type OutlineItem struct {
	dict     core.Dict
	resolver ObjectResolver
}

// Dict returns the underlying dictionary.
func (i *OutlineItem) Dict() core.Dict { return i.dict }

// Title returns the item's title bytes.
func (i *OutlineItem) Title() []byte {
	if s, ok := i.dict.GetString("Title"); ok {
		return s.Value
	}
	return nil
}

// Next returns the next sibling, or nil.
func (i *OutlineItem) Next() (*OutlineItem, error) {
	return i.linked("Next")
}

// Prev returns the previous sibling, or nil.
func (i *OutlineItem) Prev() (*OutlineItem, error) {
	return i.linked("Prev")
}

// First returns the first child, or nil.
func (i *OutlineItem) First() (*OutlineItem, error) {
	return i.linked("First")
}

func (i *OutlineItem) linked(key string) (*OutlineItem, error) {
	ref := i.dict.Get(key)
	if ref == nil {
		return nil, nil
	}
	resolved, err := i.resolver.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("resolve outline /%s: %w", key, err)
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid outline item type: %T", resolved)
	}
	return &OutlineItem{dict: dict, resolver: i.resolver}, nil
}

// Walk visits the item and its descendants depth-first, calling fn with
// each item and its depth. Traversal is bounded to guard against cyclic
// Next chains.
func (i *OutlineItem) Walk(fn func(item *OutlineItem, depth int) error) error {
	return i.walk(fn, 0, map[string]bool{})
}

func (i *OutlineItem) walk(fn func(item *OutlineItem, depth int) error, depth int, seen map[string]bool) error {
	for item := i; item != nil; {
		key := fmt.Sprintf("%p", item.dict)
		if seen[key] {
			return nil
		}
		seen[key] = true

		if err := fn(item, depth); err != nil {
			return err
		}
		if child, err := item.First(); err == nil && child != nil {
			if err := child.walk(fn, depth+1, seen); err != nil {
				return err
			}
		}
		next, err := item.Next()
		if err != nil {
			return err
		}
		item = next
	}
	return nil
}
