// internal/common/validation/schema_test.go
package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantValid  bool
		wantFields []string
	}{
		{
			name: "valid profile",
			raw: `{"age": 29, "maritalStatus": "single", "educationLevel": "bachelor",
				"languages": {"first": {"language": "english", "reading": 9, "writing": 8, "speaking": 9, "listening": 9}},
				"canadianWorkYears": 2, "foreignWorkYears": 3}`,
			wantValid: true,
		},
		{
			name:      "absent fields default to zero",
			raw:       `{"provincialNomination": true, "languages": {"first": {"reading": 0}}}`,
			wantValid: true,
		},
		{
			name:      "age has no upper bound",
			raw:       `{"age": 131, "educationLevel": "doctoral"}`,
			wantValid: true,
		},
		{
			name:       "negative age",
			raw:        `{"age": -1}`,
			wantFields: []string{"age"},
		},
		{
			name:       "wrong types",
			raw:        `{"age": "thirty", "educationLevel": "bachelor", "canadianWorkYears": 1.5}`,
			wantFields: []string{"age", "canadianWorkYears"},
		},
		{
			name: "clb out of range",
			raw: `{"age": 30, "educationLevel": "master",
				"languages": {"first": {"language": "english", "reading": 13, "writing": 8, "speaking": 9, "listening": 9}}}`,
			wantFields: []string{"languages.first.reading"},
		},
		{
			name: "unsupported language",
			raw: `{"age": 30, "educationLevel": "master",
				"languages": {"first": {"language": "spanish"}}}`,
			wantFields: []string{"languages.first.language"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateProfile(decode(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid, res.GetErrorMessages())
			for _, f := range tt.wantFields {
				assert.True(t, res.HasErrors(f), "expected error on %s, got %v", f, res.GetErrorMessages())
			}
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
}

func TestValidateContact(t *testing.T) {
	assert.True(t, ValidateEmail("amira@example.ca"))
	assert.False(t, ValidateEmail("amira@"))
	assert.True(t, ValidatePhone("+14165550199"))
	assert.False(t, ValidatePhone("416-555-0199"))
}
