package hx

import "github.com/pthm/ccpricing/hx/encoding"

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// Encodable is implemented by props that pick their own wire format.
type Encodable = encoding.Encodable

// Decodable is the counterpart of Encodable.
type Decodable = encoding.Decodable

// NewEncoder creates a new encoder with the given key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}
