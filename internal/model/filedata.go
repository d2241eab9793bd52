package model

import (
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// File payloads are stored as data URIs, the same shape a browser's
// FileReader.readAsDataURL produces:
//
//	data:<media-type>;base64,<base64 bytes>
//
// The payload is self-describing — the media type travels with the bytes —
// which lets the store stay a plain text column and lets a download handler
// set Content-Type without guessing.

const fallbackMediaType = "application/octet-stream"

// EncodeFileData wraps raw file bytes into a data-URI payload. The media
// type is derived from the file name's extension, falling back to
// application/octet-stream for unknown extensions.
func EncodeFileData(fileName string, content []byte) string {
	mediaType := mime.TypeByExtension(filepath.Ext(fileName))
	if mediaType == "" {
		mediaType = fallbackMediaType
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// DecodeFileData splits a data-URI payload back into its media type and raw
// bytes. It rejects payloads that don't carry the expected prefix.
func DecodeFileData(payload string) (mediaType string, content []byte, err error) {
	rest, ok := strings.CutPrefix(payload, "data:")
	if !ok {
		return "", nil, fmt.Errorf("model: file payload is not a data URI")
	}
	mediaType, encoded, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("model: file payload is not base64-encoded")
	}
	if mediaType == "" {
		mediaType = fallbackMediaType
	}
	content, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("model: decoding file payload: %w", err)
	}
	return mediaType, content, nil
}
