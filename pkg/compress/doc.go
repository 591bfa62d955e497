// Package compress negotiates response body compression against the
// client's Accept-Encoding header.
//
// Gzip is preferred, deflate is the fallback, and a compressed form is
// only chosen when it is strictly smaller than the original payload.
// Negotiation never fails; any problem degrades to sending the payload
// uncompressed.
package compress
