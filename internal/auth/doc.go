// Package auth provides authentication and authorisation for the smart-home core.
//
// It implements a two-role model (user, admin) with:
//   - Argon2id password hashing, with transparent upgrade of legacy bcrypt hashes
//   - HS256 JWT access tokens carrying the user ID (sub) and role
//   - A user repository over the shared database package
//   - Authenticator, which resolves a bearer token to a live user record
//
// There is no refresh flow or revocation list: tokens stay valid until they
// expire. A token whose user has been removed no longer authenticates.
package auth
