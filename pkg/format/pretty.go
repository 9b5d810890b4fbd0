package format

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/arthur-debert/lumen/pkg/highlight"
	"github.com/beevik/etree"
	"github.com/davecgh/go-spew/spew"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Pretty renders a record's arguments as a multi-line block suited to
// lang. A single argument is rendered on its own; several are rendered
// as a list.
func Pretty(args []any, lang string) string {
	var v any = args
	if len(args) == 1 {
		v = args[0]
	}
	switch strings.ToLower(lang) {
	case highlight.JSON:
		if s, ok := prettyJSON(v); ok {
			return s
		}
	case highlight.XML:
		if s, ok := prettyXML(v); ok {
			return s
		}
	}
	return strings.TrimRight(dumper.Sdump(v), "\n")
}

func textOf(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case json.RawMessage:
		return string(x), true
	}
	return "", false
}

func prettyJSON(v any) (string, bool) {
	if s, ok := textOf(v); ok {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
			return "", false
		}
		return buf.String(), true
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", false
	}
	return string(out), true
}

func prettyXML(v any) (string, bool) {
	var doc *etree.Document
	switch x := v.(type) {
	case *etree.Document:
		doc = x.Copy()
	case *etree.Element:
		doc = etree.NewDocument()
		doc.SetRoot(x.Copy())
	default:
		s, ok := textOf(v)
		if !ok {
			return "", false
		}
		doc = etree.NewDocument()
		if err := doc.ReadFromString(s); err != nil {
			return "", false
		}
	}
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return "", false
	}
	return strings.TrimRight(s, "\n"), true
}
