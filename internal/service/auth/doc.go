// Package auth issues and verifies the bearer tokens that carry a caller's
// identity and roles, and hashes and checks passwords. Token verification is
// purely cryptographic and never touches persistent state.
package auth
