// Package textenc reads text files whose encoding is not guaranteed.
// Benchmark description CSVs and question files come from many upstream
// sources; some carry a UTF-8 BOM, others are Windows-1252 or Latin-1.
package textenc

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile reads a file and returns its contents as UTF-8, trying UTF-8
// (with or without BOM) first, then Windows-1252, then Latin-1. The legacy
// single-byte decodings cannot fail, so a readable file always decodes.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode converts raw bytes to UTF-8 using the fallback chain.
func Decode(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}

	for _, cm := range []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1} {
		decoded, err := cm.NewDecoder().Bytes(data)
		if err == nil {
			return decoded, nil
		}
	}
	return nil, fmt.Errorf("undecodable text input")
}
