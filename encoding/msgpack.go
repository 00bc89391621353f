// Package encoding provides centralized serialization for classification
// snapshots. ALL msgpack operations MUST go through this package so that
// recorded baselines decode the same way they were written.
//
// Thread Safety: Marshal and Unmarshal are safe for concurrent use.
//
// Type Preservation: When decoding into interface{}, msgpack strings decode as
// Go strings (not []byte), so loosely typed snapshot fields compare equal to
// freshly produced ones.
package encoding

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Marshal encodes a value to msgpack format.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes msgpack data using loose interface decoding.
func Unmarshal(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	// []byte becomes string when the target is interface{}
	dec.UseLooseInterfaceDecoding(true)

	return dec.Decode(v)
}
