package provider

import (
	"encoding/json"
	"fmt"
)

// stringifyContent renders the second-round payload as text for the model.
// Tool output arrives as a string; anything structured (a decoded decision
// array, for instance) is JSON-encoded so the model sees valid syntax.
func stringifyContent(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
