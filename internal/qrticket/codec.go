// Package qrticket encodes ticket identity into the opaque payload
// embedded in a scannable code. Pure and deterministic; rendering the
// actual image is left to the client.
package qrticket

import (
	"encoding/base64"
	"encoding/json"
)

type Claims struct {
	TicketNumber string `json:"ticketNumber"`
	EventID      string `json:"eventId"`
	UserID       string `json:"userId"`
	EventTitle   string `json:"eventTitle"`
}

func Encode(claims Claims) string {
	data, _ := json.Marshal(claims)
	return base64.URLEncoding.EncodeToString(data)
}

// Decode returns nil on any malformed payload, never an error or panic.
func Decode(payload string) *Claims {
	data, err := base64.URLEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	var claims Claims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil
	}
	if claims.TicketNumber == "" {
		return nil
	}
	return &claims
}

// Verify reports whether the payload decodes to the given ticket number.
func Verify(payload, ticketNumber string) bool {
	claims := Decode(payload)
	return claims != nil && claims.TicketNumber == ticketNumber
}
