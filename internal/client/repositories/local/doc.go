// Package local implements the dashboard repositories over the encrypted
// local store. It is the fallback used when the backend is unreachable or
// the user has no access token.
package local
