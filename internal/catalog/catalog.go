// Package catalog loads the static item dataset and answers free-text name
// lookups against it. The catalog is read once at startup; everything here
// is immutable afterwards.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/snowyfields/marketboard/internal/model"
)

// ErrNoCatalog means the dataset parsed but held no usable entries. This is
// the one condition the process must refuse to serve on.
var ErrNoCatalog = errors.New("catalog: no usable entries")

// record is one row of the array-form dataset.
type record struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	NameEN string `json:"name_en"`
}

// Load reads the catalog file plus an optional override map and normalizes
// both into one Item slice. The catalog file may be either an array of
// records or a direct {"<id>": "<name>"} map; the rest of the system never
// sees the difference. A missing override file is ignored, a malformed one
// is not.
func Load(catalogPath, overridePath string) ([]model.Item, error) {
	raw, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	overrides := map[int]string{}
	if overridePath != "" {
		if b, err := os.ReadFile(overridePath); err == nil {
			var m map[string]string
			if err := json.Unmarshal(b, &m); err != nil {
				return nil, fmt.Errorf("parse overrides: %w", err)
			}
			for k, v := range m {
				id, err := strconv.Atoi(k)
				if err != nil || id <= 0 || v == "" {
					continue
				}
				overrides[id] = v
			}
		}
	}

	return parse(raw, overrides)
}

func parse(raw []byte, overrides map[int]string) ([]model.Item, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, ErrNoCatalog
	}

	var items []model.Item
	switch trimmed[0] {
	case '[':
		var recs []record
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		for _, r := range recs {
			if r.ID <= 0 {
				continue
			}
			items = append(items, newItem(r.ID, r.Name, r.NameEN, overrides))
		}
	case '{':
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		for k, v := range m {
			id, err := strconv.Atoi(k)
			if err != nil || id <= 0 {
				continue
			}
			items = append(items, newItem(id, v, "", overrides))
		}
	default:
		return nil, fmt.Errorf("parse catalog: unrecognized format (want array or map)")
	}

	if len(items) == 0 {
		return nil, ErrNoCatalog
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func newItem(id int, primary, secondary string, overrides map[int]string) model.Item {
	name := overrides[id]
	if name == "" {
		name = primary
	}
	if name == "" {
		name = secondary
	}
	if name == "" {
		name = "ID:" + strconv.Itoa(id)
	}
	return model.Item{ID: id, Name: name, SearchKey: Normalize(name)}
}
