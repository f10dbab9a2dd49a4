// Package wire implements the MessagePack encodings used for group and
// couple metadata and for the opaque request/response envelope.
package wire

import (
	"bytes"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

var handle = &codec.MsgpackHandle{}

// Marshal encodes v as MessagePack.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, handle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack bytes into v.
func Unmarshal(data []byte, v any) error {
	dec := codec.NewDecoder(bytes.NewReader(data), handle)
	return dec.Decode(v)
}

// isArray reports whether the leading MessagePack format byte encodes
// an array (fixarray, array16 or array32).
func isArray(b byte) bool {
	return (b >= 0x90 && b <= 0x9f) || b == 0xdc || b == 0xdd
}
