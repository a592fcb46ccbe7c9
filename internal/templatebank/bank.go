package templatebank

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sandevgo/verifid/internal/core"
)

// Placeholder is the single substitution marker every template must carry.
const Placeholder = "{value}"

// Bank maps field names to their question templates. The source file is read
// lazily on first use and the result (success or failure) is cached for the
// process lifetime; editing the bank requires a restart.
type Bank struct {
	path string

	once      sync.Once
	templates map[string][]string
	err       error
}

func New(path string) *Bank {
	return &Bank{path: path}
}

// All returns the full field -> templates mapping. Callers must not mutate it.
func (b *Bank) All() (map[string][]string, error) {
	b.once.Do(func() {
		b.templates, b.err = load(b.path)
	})
	return b.templates, b.err
}

// Render substitutes the field value into a template.
func Render(template, value string) string {
	return strings.ReplaceAll(template, Placeholder, value)
}

func load(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrBankUnavailable, path, err)
	}

	var bank map[string][]string
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", core.ErrBankUnavailable, path, err)
	}

	for field, templates := range bank {
		for _, tpl := range templates {
			if strings.Count(tpl, Placeholder) != 1 {
				return nil, fmt.Errorf("%w: field %q: template %q must contain %s exactly once",
					core.ErrBankUnavailable, field, tpl, Placeholder)
			}
		}
	}

	return bank, nil
}
