package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a discord snowflake. Numeric IDs are persisted as json numbers,
// both numbers and strings are accepted on load.
type ID string

// String implementation
func (id ID) String() string {
	return string(id)
}

// Valid returns true if id is a numeric snowflake in canonical form
func (id ID) Valid() bool {
	n, err := strconv.ParseUint(string(id), 10, 64)

	return err == nil && strconv.FormatUint(n, 10) == string(id)
}

// MarshalJSON implementation
func (id ID) MarshalJSON() ([]byte, error) {
	if id.Valid() {
		return []byte(id), nil
	}

	return json.Marshal(string(id))
}

// UnmarshalJSON implementation
func (id *ID) UnmarshalJSON(bs []byte) error {
	if len(bs) > 0 && bs[0] == '"' {
		var s string

		err := json.Unmarshal(bs, &s)
		if err != nil {
			return err
		}

		*id = ID(s)

		return nil
	}

	if string(bs) == "null" {
		*id = ""

		return nil
	}

	*id = ID(bs)

	if !id.Valid() {
		*id = ""

		return fmt.Errorf("invalid id %s", bs)
	}

	return nil
}

// IDs converts strings to IDs
func IDs(ss ...string) []ID {
	ids := make([]ID, 0, len(ss))

	for _, s := range ss {
		ids = append(ids, ID(s))
	}

	return ids
}
