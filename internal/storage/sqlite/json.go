package sqlite

import "encoding/json"

// unmarshalJSONSlice decodes a JSON array column into dst, treating an empty
// string as an empty slice rather than an error.
func unmarshalJSONSlice(raw string, dst *[]string) error {
	if raw == "" {
		*dst = nil
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
