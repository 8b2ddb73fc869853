package output

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format implements FormatProvider.
func (f *JSONFormatter) Format() OutputFormat { return FormatJSON }

// ContentType implements FormatProvider.
func (f *JSONFormatter) ContentType() string { return "application/json" }

// FormatSummary formats a summary as JSON
func (f *JSONFormatter) FormatSummary(s *Summary) ([]byte, error) {
	return f.marshal(s)
}

// FormatResponse formats a response body as JSON
func (f *JSONFormatter) FormatResponse(r *Response) ([]byte, error) {
	return f.marshal(r)
}

func (f *JSONFormatter) marshal(v interface{}) ([]byte, error) {
	var out []byte
	var err error
	if f.Pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return out, nil
}
