package dto

import (
	"encoding/json"
	"strings"
)

// ClosedFlag is the production sign-off sent by clients. JSON true, 1 and
// the strings "true", "yes" and "1" (any case) mean Yes; any other value
// means No.
type ClosedFlag bool

func (f *ClosedFlag) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var text string
	switch v := raw.(type) {
	case bool:
		*f = ClosedFlag(v)
		return nil
	case string:
		text = v
	case float64:
		text = strings.TrimSpace(string(data))
	}
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Yes reports whether the flag signs the work order off.
func (f *ClosedFlag) Yes() bool {
	return f != nil && bool(*f)
}
