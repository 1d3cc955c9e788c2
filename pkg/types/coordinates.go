package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Coordinates is a latitude/longitude pair persisted as JSONB. Use a
// *Coordinates field where the location may be unknown; a missing location
// is a distinct state from (0,0).
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Value serializes the pair to JSON.
func (c Coordinates) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan decodes JSONB into the pair.
func (c *Coordinates) Scan(value interface{}) error {
	if value == nil {
		*c = Coordinates{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("coordinates: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, c)
}
