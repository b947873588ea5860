package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "om-commercial-key-12345"

func TestSecretString_Formatting(t *testing.T) {
	s := SecretString(testSecret)

	assert.Equal(t, redactedPlaceholder, s.String())
	assert.NotContains(t, fmt.Sprintf("key=%s", s), testSecret)
	assert.NotContains(t, fmt.Sprintf("key=%v", s), testSecret)
}

func TestSecretString_MarshalJSON(t *testing.T) {
	payload := struct {
		Key SecretString `json:"key"`
	}{Key: SecretString(testSecret)}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"***REDACTED***"}`, string(data))
}

func TestSecretString_SlogRedacts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logger.Info("configured", "api_key", SecretString(testSecret))

	assert.NotContains(t, buf.String(), testSecret)
	assert.Contains(t, buf.String(), redactedPlaceholder)
}

func TestSecretString_UnmaskAndIsSet(t *testing.T) {
	assert.Equal(t, testSecret, SecretString(testSecret).Unmask())
	assert.True(t, SecretString(testSecret).IsSet())
	assert.False(t, SecretString("").IsSet())
}
