package domain

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"sort"
)

// ErrCorruptPrivateInputs is returned when a private input blob cannot be parsed back
var ErrCorruptPrivateInputs = errors.New("corrupt private inputs blob")

// EncodePrivateInputs packs field name/value pairs into the transport blob
// consumed by the prover bridge: length-prefixed pairs in field name order,
// base64 encoded to survive the bridge boundary. The ordering is
// deterministic so identical inputs produce identical blobs.
func EncodePrivateInputs(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf []byte
	var scratch [binary.MaxVarintLen64]byte
	appendChunk := func(s string) {
		n := binary.PutUvarint(scratch[:], uint64(len(s)))
		buf = append(buf, scratch[:n]...)
		buf = append(buf, s...)
	}
	for _, name := range names {
		appendChunk(name)
		appendChunk(fields[name])
	}
	encoded := base64.StdEncoding.EncodeToString(buf)
	for i := range buf {
		buf[i] = 0
	}
	return encoded
}

// DecodePrivateInputs unpacks a blob produced by EncodePrivateInputs. The
// raw intermediate buffer is wiped before returning.
func DecodePrivateInputs(blob string) (map[string]string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ErrCorruptPrivateInputs
	}
	orig := raw
	defer func() {
		for i := range orig {
			orig[i] = 0
		}
	}()

	fields := make(map[string]string)
	for len(raw) > 0 {
		name, rest, err := readChunk(raw)
		if err != nil {
			return nil, err
		}
		value, rest, err := readChunk(rest)
		if err != nil {
			return nil, err
		}
		fields[name] = value
		raw = rest
	}
	return fields, nil
}

func readChunk(raw []byte) (string, []byte, error) {
	length, n := binary.Uvarint(raw)
	if n <= 0 || uint64(len(raw)-n) < length {
		return "", nil, ErrCorruptPrivateInputs
	}
	return string(raw[n : n+int(length)]), raw[n+int(length):], nil
}
