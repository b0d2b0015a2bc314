// Package dump prints tag trees from region files, .dat files and streams as JSON,
// optionally selecting sub-values and filtering on conditions.
package dump

import (
	"fmt"
	"io"

	"github.com/astei/anvilscan/nbt"
)

// Printer selects and renders one tree per call.
type Printer struct {
	// Gets are the paths to print. With one path the selected value is printed as
	// is; with several, an object keyed by path.
	Gets []string
	// Conditions must all hold for the tree to be printed.
	Conditions []nbt.Condition
	// SkipEmpty drops null, empty-object and empty-list results, both as the printed
	// value and as entries of a multi-path object.
	SkipEmpty bool
	Pretty    bool
}

// Print writes prefix and the JSON rendering of the selection from root as one line.
// It reports whether anything was written. Path errors are returned.
func (p *Printer) Print(w io.Writer, root nbt.Value, prefix string) (bool, error) {
	if root == nil {
		return false, nil
	}
	ok, err := nbt.Match(root, p.Conditions)
	if err != nil || !ok {
		return false, err
	}

	selected, err := p.selectFrom(root)
	if err != nil {
		return false, err
	}
	if p.SkipEmpty && nbt.IsEmpty(selected) {
		return false, nil
	}

	var raw []byte
	if p.Pretty {
		raw, err = nbt.MarshalJSONIndent(selected)
	} else {
		raw, err = nbt.MarshalJSON(selected)
	}
	if err != nil {
		return false, err
	}
	if _, err = fmt.Fprintf(w, "%s%s\n", prefix, raw); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Printer) selectFrom(root nbt.Value) (nbt.Value, error) {
	switch len(p.Gets) {
	case 0:
		return root, nil
	case 1:
		return nbt.Evaluate(root, p.Gets[0])
	}
	out := nbt.NewMap()
	for _, path := range p.Gets {
		v, err := nbt.Evaluate(root, path)
		if err != nil {
			return nil, err
		}
		if p.SkipEmpty && nbt.IsEmpty(v) {
			continue
		}
		out.Set(path, v)
	}
	return out, nil
}
