package buffer

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the on-disk character encoding of a buffer.
type Encoding string

const (
	// EncodingUTF8 is UTF-8 without a byte order mark.
	EncodingUTF8 Encoding = "utf-8"

	// EncodingUTF8BOM is UTF-8 with a leading byte order mark.
	EncodingUTF8BOM Encoding = "utf-8-bom"

	// EncodingUTF16LE is little-endian UTF-16 with a byte order mark.
	EncodingUTF16LE Encoding = "utf-16le"

	// EncodingUTF16BE is big-endian UTF-16 with a byte order mark.
	EncodingUTF16BE Encoding = "utf-16be"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding inspects the byte order mark of content. Content without
// a BOM is assumed to be UTF-8.
func DetectEncoding(content []byte) Encoding {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(content, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(content, bomUTF16BE):
		return EncodingUTF16BE
	}
	return EncodingUTF8
}

// Decode converts file bytes to text, reporting the encoding it found.
// It fails with ErrEncoding when the bytes are not valid text.
func Decode(content []byte) (string, Encoding, error) {
	enc := DetectEncoding(content)
	var text []byte
	switch enc {
	case EncodingUTF8BOM:
		text = content[len(bomUTF8):]
	case EncodingUTF16LE, EncodingUTF16BE:
		// The decoder replaces broken surrogates with U+FFFD instead of
		// failing, so check the code units first.
		if !wellFormedUTF16(content[2:], byteOrder(enc)) {
			return "", enc, ErrEncoding
		}
		out, err := utf16(enc, unicode.ExpectBOM).NewDecoder().Bytes(content)
		if err != nil {
			return "", enc, ErrEncoding
		}
		text = out
	default:
		text = content
	}
	if !utf8.Valid(text) {
		return "", enc, ErrEncoding
	}
	return string(text), enc, nil
}

// Encode converts text to file bytes in the given encoding.
func Encode(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingUTF8BOM:
		out := make([]byte, 0, len(bomUTF8)+len(text))
		return append(append(out, bomUTF8...), text...), nil
	case EncodingUTF16LE, EncodingUTF16BE:
		return utf16(enc, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	}
	return []byte(text), nil
}

func utf16(enc Encoding, bom unicode.BOMPolicy) encoding.Encoding {
	if enc == EncodingUTF16BE {
		return unicode.UTF16(unicode.BigEndian, bom)
	}
	return unicode.UTF16(unicode.LittleEndian, bom)
}

func byteOrder(enc Encoding) binary.ByteOrder {
	if enc == EncodingUTF16BE {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// wellFormedUTF16 reports whether data has whole code units and pairs
// every surrogate.
func wellFormedUTF16(data []byte, order binary.ByteOrder) bool {
	if len(data)%2 != 0 {
		return false
	}
	for i := 0; i < len(data); i += 2 {
		u := order.Uint16(data[i:])
		switch {
		case u >= 0xD800 && u < 0xDC00:
			if i+2 >= len(data) {
				return false
			}
			if lo := order.Uint16(data[i+2:]); lo < 0xDC00 || lo > 0xDFFF {
				return false
			}
			i += 2
		case u >= 0xDC00 && u <= 0xDFFF:
			return false
		}
	}
	return true
}
