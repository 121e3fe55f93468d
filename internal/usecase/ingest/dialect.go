package ingest

import (
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/Savit10/streamsense/internal/errs"
)

// Dialect maps one observed payload shape onto the canonical event fields.
// Producers disagree on field names (event_type/item_id vs action/page);
// normalization is table-driven so a new producer is a config edit.
type Dialect struct {
	Name      string `toml:"name"`
	TypeField string `toml:"type_field"`
	UserField string `toml:"user_field"`
	TimeField string `toml:"time_field"`
	// ItemField is empty for dialects that carry no item id.
	ItemField string `toml:"item_field"`
}

type dialectsFile struct {
	Dialects []Dialect `toml:"dialect"`
}

// DefaultDialects covers the two payload shapes seen in production.
func DefaultDialects() []Dialect {
	return []Dialect{
		{
			Name:      "canonical",
			TypeField: "event_type",
			UserField: "user_id",
			TimeField: "timestamp",
			ItemField: "item_id",
		},
		{
			Name:      "action",
			TypeField: "action",
			UserField: "user_id",
			TimeField: "timestamp",
		},
	}
}

// LoadDialects reads a [[dialect]] table file; an empty path keeps defaults.
func LoadDialects(path string) ([]Dialect, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return DefaultDialects(), nil
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, errs.Wrapf(err, "read dialects file %q", trimmed)
	}

	var file dialectsFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, errs.Wrapf(err, "parse dialects file %q", trimmed)
	}
	if len(file.Dialects) == 0 {
		return nil, errors.New("dialects file defines no dialect tables")
	}

	for _, d := range file.Dialects {
		if d.Name == "" || d.TypeField == "" || d.UserField == "" || d.TimeField == "" {
			return nil, errors.New("dialect requires name, type_field, user_field and time_field")
		}
	}

	return file.Dialects, nil
}
