// Package dataset loads the enriched employee dataset used as the source of
// truth for verification answers.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sandevgo/verifid/internal/core"
)

type Dataset struct {
	records []core.Record
	byID    map[string]core.Record
}

// Load reads a JSON array of employee objects. Only string-valued attributes
// become record fields; list- and object-valued attributes are dropped since
// they cannot be asked as free-text questions. Numeric identifiers are
// stringified so lookup works regardless of how the id was encoded.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	ds := &Dataset{byID: make(map[string]core.Record, len(raw))}
	for _, entry := range raw {
		record := make(core.Record, len(entry))
		for field, value := range entry {
			switch v := value.(type) {
			case string:
				record[field] = v
			case float64:
				if field == core.FieldEmployeeID {
					record[field] = strconv.FormatFloat(v, 'f', -1, 64)
				}
			}
		}
		if id := record.UserID(); id != "" {
			ds.records = append(ds.records, record)
			ds.byID[id] = record
		}
	}

	return ds, nil
}

// Lookup matches by exact string equality on the trimmed employee id.
func (d *Dataset) Lookup(id string) (core.Record, error) {
	record, ok := d.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: employee id %q", core.ErrNotFound, id)
	}
	return record, nil
}

func (d *Dataset) Len() int {
	return len(d.records)
}
