// Package sanitizer normalizes free-text input before it is validated or sent
// to the API.
//
// All functions are idempotent and return an empty string rather than an
// error for input they cannot make sense of.
package sanitizer
