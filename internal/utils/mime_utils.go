package utils

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

var headerDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

// charsetReader converts charsets the mime package does not know natively
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(strings.ToLower(charset))
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// DecodeHeader decodes RFC 2047 encoded words. Undecodable input is returned unchanged.
func (tp *TextProcessor) DecodeHeader(text string) string {
	if !strings.Contains(text, "=?") {
		return text
	}

	decoded, err := headerDecoder.DecodeHeader(text)
	if err != nil {
		tp.logger.Debug("Failed to decode header", zap.String("header", text), zap.Error(err))
		return text
	}
	return decoded
}
