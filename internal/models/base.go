// internal/models/base.go
package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// JSONValue marshals v for storage in a JSON/JSONB column.
func JSONValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ScanJSON unmarshals a JSON/JSONB column into dst. Drivers hand the column
// over either as []byte or string; NULL leaves dst untouched.
func ScanJSON(src interface{}, dst interface{}, typeName string) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("%s: expected []byte or string, got %T", typeName, src)
	}
}
