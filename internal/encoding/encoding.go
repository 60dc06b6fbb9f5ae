// Package encoding normalizes raw generator output to plain UTF-8 before the
// core passes run. Generated files occasionally arrive with a byte order
// mark or as UTF-16; the repair and transpilation passes assume neither.
package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"ebook-markup/internal/logger"
	"ebook-markup/internal/types"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Normalize returns data as a UTF-8 string with any byte order mark removed,
// transcoding UTF-16 input when its BOM identifies it. Bytes that are not
// valid UTF-8 after BOM handling are an error; the core must never see a
// malformed buffer.
func Normalize(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		logger.Debug("stripped UTF-8 BOM")
		data = data[len(bomUTF8):]

	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", types.NewAppError(types.ErrEncoding, "failed to decode UTF-16 input", err)
		}
		logger.Debug("transcoded UTF-16 input", logger.Int("bytes", len(data)))
		data = decoded
	}

	if !utf8.Valid(data) {
		return "", types.NewAppError(types.ErrEncoding, "input is not valid UTF-8", nil)
	}
	return string(data), nil
}
