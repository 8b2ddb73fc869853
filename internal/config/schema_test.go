package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"empty object", `{}`, false},
		{"full document", `{"host":"0.0.0.0","port":8080,"delay":"10-20","format":"yaml","run":true,
			"dashboard":{"disabled":true,"recentEntries":5},"log":{"level":"warn","maxSize":10}}`, false},
		{"integer delay", `{"delay":75}`, false},
		{"fractional port", `{"port":80.5}`, true},
		{"negative buffer", `{"eventBuffer":0}`, true},
		{"nested unknown field", `{"dashboard":{"theme":"dark"}}`, true},
		{"not an object", `[1,2,3]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSchema([]byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err), "want validation error, got %T: %v", err, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateSchema_MalformedJSON(t *testing.T) {
	err := validateSchema([]byte(`{"port":`))
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "invalid JSON")
}
