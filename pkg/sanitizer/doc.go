// Package sanitizer provides input normalization for reservation data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Free text (requester names, purposes): collapse whitespace, trim
//   - Contacts: phone numbers to E.164, everything else trimmed
//   - Categories and locations: lowercase with collapsed separators
//   - Slices: remove duplicates and empty values after normalization
//   - Numbers: clamp to valid ranges
package sanitizer
