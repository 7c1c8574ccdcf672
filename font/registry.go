package font

import (
	"fmt"

	"github.com/tsawler/vellum/core"
)

// Build constructs a Font from a font dictionary, dispatching on
// /Subtype. Unknown subtypes build as simple fonts, which covers their
// /Encoding and /ToUnicode entries.
func Build(name string, dict core.Dict, resolve ResolverFunc) (*Font, error) {
	subtype, ok := dict.GetName("Subtype")
	if !ok {
		return nil, fmt.Errorf("font %s missing /Subtype", name)
	}

	switch string(subtype) {
	case "Type0":
		return NewType0Font(name, dict, resolve)
	case "Type1", "MMType1":
		return NewType1Font(name, dict, resolve)
	case "TrueType":
		return NewTrueTypeFont(name, dict, resolve)
	case "Type3":
		return NewType3Font(name, dict, resolve)
	default:
		return NewSimpleFont(name, dict, resolve)
	}
}

// BuildFromResources constructs every font named in a resources
// dictionary's /Font entry. Fonts that fail to build are skipped; their
// errors are returned alongside the successfully built map.
func BuildFromResources(resources core.Dict, resolve ResolverFunc) (map[string]*Font, []error) {
	fonts := make(map[string]*Font)
	var errs []error

	fontDictObj := resources.Get("Font")
	if fontDictObj == nil {
		return fonts, nil
	}
	fontDictResolved, err := resolveIfRef(fontDictObj, resolve)
	if err != nil {
		return fonts, []error{fmt.Errorf("resolve font dictionary: %w", err)}
	}
	fontDicts, ok := fontDictResolved.(core.Dict)
	if !ok {
		return fonts, []error{fmt.Errorf("font resource is %T, expected dictionary", fontDictResolved)}
	}

	for name, fontObj := range fontDicts {
		fontResolved, err := resolveIfRef(fontObj, resolve)
		if err != nil {
			errs = append(errs, fmt.Errorf("font %s: %w", name, err))
			continue
		}
		fontDict, ok := fontResolved.(core.Dict)
		if !ok {
			errs = append(errs, fmt.Errorf("font %s is %T, expected dictionary", name, fontResolved))
			continue
		}
		built, err := Build(name, fontDict, resolve)
		if err != nil {
			errs = append(errs, fmt.Errorf("font %s: %w", name, err))
			continue
		}
		fonts[name] = built
	}

	return fonts, errs
}
