package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named struct {
	Name string `json:"name"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"plain", `{"name": "Identity Check"}`, "Identity Check"},
		{"fenced", "```json\n{\"name\": \"Refunds\"}\n```", "Refunds"},
		{"prose around", `Sure! Here it is: {"name": "Greeting"} Hope that helps.`, "Greeting"},
		{"nested", `{"name": "Lookup", "extra": {"a": 1}}`, "Lookup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON[named](tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestParseJSON_Errors(t *testing.T) {
	_, err := ParseJSON[named]("no object here")
	assert.ErrorIs(t, err, ErrNoJSONObject)

	_, err = ParseJSON[named]("} backwards {")
	assert.ErrorIs(t, err, ErrNoJSONObject)

	_, err = ParseJSON[named](`{"name": 3}`)
	assert.ErrorContains(t, err, "failed to unmarshal JSON")
}
