package realtime

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDAcceptsNumbersAndStrings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want UserID
	}{
		{"number", `{"type":"message","receiverId":42}`, 42},
		{"string", `{"type":"message","receiverId":"42"}`, 42},
		{"null", `{"type":"message","receiverId":null}`, 0},
		{"absent", `{"type":"message"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in Inbound
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &in))
			assert.Equal(t, tt.want, in.ReceiverID)
		})
	}
}

func TestUserIDRejectsGarbage(t *testing.T) {
	for _, raw := range []string{`{"userId":"abc"}`, `{"userId":-1}`, `{"userId":1.5}`, `{"userId":true}`} {
		var in Inbound
		assert.Error(t, json.Unmarshal([]byte(raw), &in), raw)
	}
}

func TestOutboundFrameShape(t *testing.T) {
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(encode(MessagesRead{Type: TypeMessagesRead, UserID: 3}), &got))
	assert.Equal(t, map[string]interface{}{"type": "messagesRead", "userId": float64(3)}, got)

	require.NoError(t, json.Unmarshal(errorFrame("boom"), &got))
	assert.Equal(t, "error", got["type"])
	assert.Equal(t, "boom", got["message"])
}
