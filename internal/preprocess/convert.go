package preprocess

import (
	"fmt"
	"slices"

	"go.starlark.net/starlark"

	"github.com/StinkyLord/notice-builder/internal/model"
	"github.com/StinkyLord/notice-builder/internal/notice"
)

const (
	keyHeaders  = "headers"
	keyFindings = "findings"
	keyFooters  = "footers"
)

// documentValue converts doc into the mutable dict handed to the script.
// Components, licenses, and copyrights are inserted in sorted order.
func documentValue(doc notice.Document) *starlark.Dict {
	findings := starlark.NewDict(len(doc.Findings))
	for _, id := range doc.Components() {
		lf := doc.Findings[id]
		licenses := starlark.NewDict(len(lf))

		for _, license := range lf.Licenses() {
			_ = licenses.SetKey(starlark.String(license), stringList(lf[license].Sorted()))
		}

		_ = findings.SetKey(starlark.String(id.String()), licenses)
	}

	d := starlark.NewDict(3)
	_ = d.SetKey(starlark.String(keyHeaders), stringList(doc.Headers))
	_ = d.SetKey(starlark.String(keyFindings), findings)
	_ = d.SetKey(starlark.String(keyFooters), stringList(doc.Footers))

	return d
}

func stringList(items []string) *starlark.List {
	values := make([]starlark.Value, len(items))
	for i, s := range items {
		values[i] = starlark.String(s)
	}

	return starlark.NewList(values)
}

// toGo converts a Starlark value into plain Go values suitable for schema
// validation: map[string]any, []any, string, int64, float64, bool, nil.
func toGo(v starlark.Value) (any, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(v), nil
	case starlark.String:
		return string(v), nil
	case starlark.Int:
		i, ok := v.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s out of range", v)
		}

		return i, nil
	case starlark.Float:
		return float64(v), nil
	case *starlark.Dict:
		out := make(map[string]any, v.Len())
		for _, item := range v.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key %s is a %s, want string", item[0], item[0].Type())
			}

			val, err := toGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", string(key), err)
			}

			out[string(key)] = val
		}

		return out, nil
	case starlark.Indexable:
		out := make([]any, v.Len())
		for i := range v.Len() {
			val, err := toGo(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}

			out[i] = val
		}

		return out, nil
	case starlark.Iterable:
		var out []any

		iter := v.Iterate()
		defer iter.Done()

		var item starlark.Value
		for iter.Next(&item) {
			val, err := toGo(item)
			if err != nil {
				return nil, err
			}

			out = append(out, val)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", v.Type())
	}
}

// fromGo builds the returned document from a validated value. Keys the
// script left out keep the corresponding part of base.
func fromGo(value map[string]any, base notice.Document) (notice.Document, error) {
	doc := base.Clone()

	if raw, ok := value[keyHeaders]; ok {
		doc.Headers = stringsOf(raw)
	}

	if raw, ok := value[keyFooters]; ok {
		doc.Footers = stringsOf(raw)
	}

	raw, ok := value[keyFindings]
	if !ok {
		return doc, nil
	}

	components, _ := raw.(map[string]any)
	doc.Findings = make(map[model.Identifier]model.LicenseFindings, len(components))

	for key, licensesRaw := range components {
		id, err := model.ParseIdentifier(key)
		if err != nil {
			return notice.Document{}, fmt.Errorf("%w: findings: %w", ErrInvalidDocument, err)
		}

		licenses, _ := licensesRaw.(map[string]any)
		lf := make(model.LicenseFindings, len(licenses))

		for license, copyrights := range licenses {
			lf[license] = model.NewCopyrightSet(stringsOf(copyrights)...)
		}

		doc.Findings[id] = lf
	}

	return doc, nil
}

func stringsOf(raw any) []string {
	items, _ := raw.([]any)

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return slices.Clip(out)
}
