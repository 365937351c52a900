package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"national mobile gets country code", "11999998888", "5511999998888"},
		{"national landline gets country code", "1133334444", "551133334444"},
		{"already international kept as is", "5511999998888", "5511999998888"},
		{"formatting stripped", "+55 (11) 99999-8888", "5511999998888"},
		{"empty input", "", ""},
		{"no digits", "abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestFromRemoteJID(t *testing.T) {
	assert.Equal(t, "5511999998888", FromRemoteJID("5511999998888@s.whatsapp.net"))
	assert.Equal(t, "", FromRemoteJID("status@broadcast"))
	assert.Equal(t, "5511999998888", FromRemoteJID("11999998888"))
}
