package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Request-malformed errors
var (
	ErrInvalidBody     = goerr.New("invalid body")
	ErrInvalidHeader   = goerr.New("X-GitHub-Event header is invalid")
	ErrDeserialization = goerr.New("encountered error during json deserialization")
)

// Authentication errors
var (
	ErrInvalidRepository      = goerr.New("repository is missing or invalid")
	ErrInvalidConfig          = goerr.New("no config found")
	ErrMissingSignatureHeader = goerr.New("X-Hub-Signature-256 header is missing")
	ErrMalformedSignature     = goerr.New("signature is malformed")
	ErrInvalidSignature       = goerr.New("invalid signature")
)

// Upstream lookup errors
var (
	ErrFailedToGetRepoConfig = goerr.New("unable to get repository config")
	ErrFailedToUnwrapValue   = goerr.New("failed to unwrap value")
)

// Correlation and downstream errors
var (
	ErrCannotFindMessage   = goerr.New("cannot find message")
	ErrFailedToSendMessage = goerr.New("failed to send message")
	ErrFailedToFindEmoji   = goerr.New("failed to find application emoji")
)

// IsClientError reports whether err was caused by the request itself
// (bad headers, bad payload, failed authentication) rather than by an
// upstream or downstream system.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidBody,
		ErrInvalidHeader,
		ErrDeserialization,
		ErrInvalidRepository,
		ErrInvalidConfig,
		ErrMissingSignatureHeader,
		ErrMalformedSignature,
		ErrInvalidSignature,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
