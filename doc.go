// Package auth implements the Unilink user-account and authentication
// backend: signup and login with JWT access/refresh tokens, email
// verification and password reset via emailed 6-digit codes, and
// role-gated CRUD on user records.
//
// The package is transport-thin: fiber controllers bind and validate
// payloads, an AuthService sequences the flows, and collaborators
// (persistence, mail, clock, config) are injected so the core stays
// testable with fakes. Tokens are stateless; there is no revocation
// store, so role changes only take effect when a token expires or is
// refreshed.
package auth
