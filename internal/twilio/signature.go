package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// ComputeSignature builds the X-Twilio-Signature value for a webhook: the
// base64 HMAC-SHA1 of the full request URL concatenated with every POST
// parameter name and value, names sorted alphabetically.
func ComputeSignature(authToken, requestURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(requestURL)
	for _, k := range keys {
		for _, v := range form[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature checks an inbound webhook's X-Twilio-Signature header.
func ValidateSignature(authToken, requestURL string, form url.Values, signature string) bool {
	expected := ComputeSignature(authToken, requestURL, form)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
