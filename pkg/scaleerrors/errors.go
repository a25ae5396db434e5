package scaleerrors

import "errors"

// Job interface/metadata failures, grounded on scale/job/seed/exceptions.py.
var (
	// ErrInvalidManifest indicates a job type's Seed manifest is malformed.
	ErrInvalidManifest = errors.New("invalid seed manifest")
	// ErrInvalidMetadata indicates job or execution metadata could not be
	// resolved or was malformed (missing input file, bad catalog lookup,
	// malformed job data property).
	ErrInvalidMetadata = errors.New("invalid metadata")
)

// Secrets/vault failures, grounded on scale/vault/exceptions.py.
var (
	// ErrInvalidSecretsAuthorization indicates the caller's credentials for
	// a secrets request were rejected.
	ErrInvalidSecretsAuthorization = errors.New("invalid secrets authorization")
	// ErrInvalidSecretsConfiguration indicates the secrets backend itself is
	// not properly configured (missing address, bad mount point).
	ErrInvalidSecretsConfiguration = errors.New("invalid secrets configuration")
	// ErrInvalidSecretsRequest indicates a malformed request to the secrets
	// backend (bad path, unsupported operation).
	ErrInvalidSecretsRequest = errors.New("invalid secrets request")
	// ErrInvalidSecretsToken indicates the secrets backend rejected the
	// caller's token.
	ErrInvalidSecretsToken = errors.New("invalid secrets token")
	// ErrInvalidSecretsValue indicates a secret's stored value could not be
	// decrypted or parsed.
	ErrInvalidSecretsValue = errors.New("invalid secrets value")
)
