//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseRecipientID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseRecipientID(f *testing.F) {
	f.Add("")
	f.Add("+15551234567")
	f.Add("'; DROP TABLE recipient_identities;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add(" padded ")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseRecipientID(input)
		if err == nil {
			roundTrip, err2 := ParseRecipientID(id.String())
			if err2 != nil {
				t.Errorf("Valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("Round-trip changed ID value")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("Non-UTF8 input was accepted")
		}
	})
}
