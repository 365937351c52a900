package phone

import "strings"

// Normalize reduces input to a canonical international digit string.
// Brazilian national numbers (10 or 11 digits) get the 55 country code
// prefixed; anything already carrying a country code is kept as is.
// Returns "" when no digits remain.
func Normalize(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}

// FromRemoteJID extracts the canonical phone from a WhatsApp remote JID
// such as "5511999998888@s.whatsapp.net".
func FromRemoteJID(remoteJID string) string {
	bare, _, _ := strings.Cut(remoteJID, "@")
	return Normalize(bare)
}
