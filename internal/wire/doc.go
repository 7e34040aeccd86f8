// Package wire implements the tagged-union envelope used on both event
// streams. Each message is a single-key JSON object whose key names the
// event kind; Decode turns raw bytes into a typed Event and Encode does
// the reverse.
package wire
