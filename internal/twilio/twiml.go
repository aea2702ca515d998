// Package twilio adapts the bot to Twilio's WhatsApp messaging API: it
// parses inbound webhook forms, renders inline TwiML replies, and sends
// proactive messages through the REST API.
package twilio

import (
	"encoding/xml"
	"fmt"
	"net/http"
)

// twimlResponse is the envelope Twilio expects as the webhook's HTTP
// response body.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// TwiML renders a message as a TwiML response document. The body is
// XML-escaped by the encoder.
func TwiML(body string) ([]byte, error) {
	out, err := xml.Marshal(twimlResponse{Message: body})
	if err != nil {
		return nil, fmt.Errorf("failed to encode twiml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// WriteTwiML writes a TwiML message reply to the webhook response.
func WriteTwiML(w http.ResponseWriter, body string) error {
	payload, err := TwiML(body)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(payload)
	return err
}

// ParseWebhook extracts the sender and message body from an inbound
// Twilio webhook request.
func ParseWebhook(r *http.Request) (senderID, text string, err error) {
	if parseErr := r.ParseForm(); parseErr != nil {
		return "", "", fmt.Errorf("failed to parse webhook form: %w", parseErr)
	}

	senderID = r.PostForm.Get("From")
	text = r.PostForm.Get("Body")
	if senderID == "" {
		return "", "", fmt.Errorf("webhook request missing From field")
	}
	return senderID, text, nil
}
