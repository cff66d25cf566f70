// Package signature verifies GitHub webhook payload signatures.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/m-mizutani/ci-preview/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Prefix is the required prefix of the X-Hub-Signature-256 header value
const Prefix = "sha256="

// Verify checks header against HMAC-SHA256(secret, body). It returns
// false on mismatch and fails with types.ErrMalformedSignature only
// when header is not a prefixed hex digest.
func Verify(body []byte, secret, header string) (bool, error) {
	encoded, ok := strings.CutPrefix(header, Prefix)
	if !ok {
		return false, goerr.Wrap(types.ErrMalformedSignature, "signature prefix is missing")
	}

	provided, err := hex.DecodeString(encoded)
	if err != nil {
		return false, goerr.Wrap(types.ErrMalformedSignature, "signature hex is invalid", goerr.V("cause", err.Error()))
	}

	return subtle.ConstantTimeCompare(Sign(body, secret), provided) == 1, nil
}

// Sign returns the raw HMAC-SHA256 digest of body
func Sign(body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// Header returns the X-Hub-Signature-256 header value for body
func Header(body []byte, secret string) string {
	return Prefix + hex.EncodeToString(Sign(body, secret))
}
