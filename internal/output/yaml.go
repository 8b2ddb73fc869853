package output

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML
type YAMLFormatter struct{}

// Format implements FormatProvider.
func (f *YAMLFormatter) Format() OutputFormat { return FormatYAML }

// ContentType implements FormatProvider.
func (f *YAMLFormatter) ContentType() string { return "application/yaml" }

// FormatSummary formats a summary as YAML
func (f *YAMLFormatter) FormatSummary(s *Summary) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return out, nil
}

// FormatResponse formats a response body as YAML
func (f *YAMLFormatter) FormatResponse(r *Response) ([]byte, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return out, nil
}
