package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONBMap is a custom type for PostgreSQL JSONB columns that maps to map[string]interface{}
type JSONBMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONBMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*j = make(JSONBMap)
		return nil
	}

	if len(bytes) == 0 {
		*j = make(JSONBMap)
		return nil
	}

	result := make(JSONBMap)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// JSONBRaw is a JSONB column holding an arbitrary document (object, array, or
// even a quoted JSON string, which legacy rows contain). Kept raw so callers
// can discriminate the shape themselves.
type JSONBRaw json.RawMessage

// Value implements driver.Valuer interface
func (j JSONBRaw) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface
func (j *JSONBRaw) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		buf := make([]byte, len(v))
		copy(buf, v)
		*j = buf
	case string:
		*j = []byte(v)
	default:
		*j = nil
	}
	return nil
}

// MarshalJSON passes the raw document through unchanged.
func (j JSONBRaw) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores the raw document unchanged.
func (j *JSONBRaw) UnmarshalJSON(data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	*j = buf
	return nil
}

// Decode unmarshals the raw document into a generic value.
func (j JSONBRaw) Decode() (interface{}, error) {
	if len(j) == 0 {
		return nil, nil
	}
	var value interface{}
	if err := json.Unmarshal(j, &value); err != nil {
		return nil, err
	}
	return value, nil
}
