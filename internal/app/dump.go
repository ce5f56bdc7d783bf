package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/domkit/internal/dom"
	"github.com/dshills/domkit/internal/event"
)

// Dump renders the registry as JSON:
//
//	{
//	  "total": 2,
//	  "nodes": [
//	    {
//	      "node": "button#save.save",
//	      "path": "html > body > form#form > div.row > button#save.save",
//	      "events": {
//	        "click": [{"id": "...", "name": "...", "selector": "button"}]
//	      }
//	    }
//	  ]
//	}
//
// Nodes appear in first-registration order, event names sorted, records in
// registration order. Nodes whose tables are empty are omitted.
func Dump(reg *event.Registry) ([]byte, error) {
	data := []byte(`{"total":0,"nodes":[]}`)
	total := 0

	for n, table := range reg.All() {
		if table.Total() == 0 {
			continue
		}

		entry := []byte(`{}`)
		var err error
		if entry, err = sjson.SetBytes(entry, "node", n.String()); err != nil {
			return nil, err
		}
		if entry, err = sjson.SetBytes(entry, "path", nodePath(n)); err != nil {
			return nil, err
		}
		for _, name := range table.Names() {
			key := "events." + gjson.Escape(name)
			for _, rec := range table[name] {
				r := map[string]any{"id": rec.ID, "name": rec.Name}
				if rec.Delegated() {
					r["selector"] = rec.FilterSelector
				}
				if entry, err = sjson.SetBytes(entry, key+".-1", r); err != nil {
					return nil, fmt.Errorf("dump %s %s: %w", n, name, err)
				}
				total++
			}
		}

		if data, err = sjson.SetRawBytes(data, "nodes.-1", entry); err != nil {
			return nil, err
		}
	}

	return sjson.SetBytes(data, "total", total)
}

// SelectDump applies a gjson path to a dump and optionally pretty prints
// the result. An empty path selects the whole dump.
func SelectDump(data []byte, path string, pretty bool) ([]byte, error) {
	if path != "" {
		res := gjson.GetBytes(data, path)
		if !res.Exists() {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, path)
		}
		data = []byte(res.Raw)
	}
	if pretty {
		data = []byte(strings.TrimRight(gjson.GetBytes(data, "@pretty").Raw, "\n"))
	}
	return data, nil
}

// nodePath describes n by its element ancestry.
func nodePath(n *dom.Node) string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.IsElement() {
			parts = append(parts, cur.String())
		}
	}
	if len(parts) == 0 {
		return n.String()
	}
	slices.Reverse(parts)
	return strings.Join(parts, " > ")
}
