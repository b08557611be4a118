package aicrypto

import (
	"encoding/json"

	"github.com/gowebpki/jcs"
	"golang.org/x/text/unicode/norm"
)

// CanonicalJSON returns the RFC 8785 canonical JSON encoding of v, used
// wherever a structured value (action content, capability constraints) is
// embedded in a signed preimage. Using the real JCS transform instead of a
// hand-rolled key sort removes number- and escaping-format drift between
// implementations that both claim to produce "canonical JSON".
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}

// NormalizeName applies Unicode NFC normalization to a free-text string.
// No preimage builder in this module calls it: identity names and
// capability descriptions enter signed preimages exactly as given, so two
// byte-distinct but visually identical strings hash differently.
func NormalizeName(s string) string {
	return norm.NFC.String(s)
}
