package api

import (
	"bytes"
	"encoding/json"
)

// list decodes either a bare JSON array or a paginated
// {"results": [...]} envelope.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Results []T `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return err
		}
		*l = page.Results
		return nil
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	*l = items
	return nil
}
