// Package redact masks matched secret and PII text before it is published in
// reports, PR comments or annotations.
//
// Masking keeps a short prefix and suffix so a reviewer can still tell which
// value was flagged without the value itself being reposted.
package redact
