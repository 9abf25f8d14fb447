package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateETag(t *testing.T) {
	first, err := GenerateETag(map[string]int{"a": 1})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	same, err := GenerateETag(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, first, same, "equal payloads hash identically")

	other, err := GenerateETag(map[string]int{"a": 2})
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestSendJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONError(rec, "something broke", 422)

	assert.Equal(t, 422, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "something broke", payload["error"])
}

func TestAbsInt(t *testing.T) {
	assert.Equal(t, 3, AbsInt(3))
	assert.Equal(t, 3, AbsInt(-3))
	assert.Equal(t, 0, AbsInt(0))
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 7.5, RoundFloat(7.5, 2))
	assert.Equal(t, 3.33, RoundFloat(10.0/3.0, 2))
	assert.Equal(t, 2.67, RoundFloat(8.0/3.0, 2))
}
