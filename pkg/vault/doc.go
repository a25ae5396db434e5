// Package vault defines the secrets-provider boundary the execution
// configurator calls against when resolving job-type and interface
// secrets, plus a reference implementation backed by the same
// AES-256-GCM-at-rest scheme warren's pkg/security uses for cluster
// secrets.
//
// The credential vault's own storage/rotation internals are out of
// scope; this package exists to give SecretsProvider a concrete,
// exercised implementation rather than leaving it a bare interface.
package vault
