// Package record implements the fixed-length row codec.
//
// EDUCATIONAL NOTES:
// ------------------
// A fixed-slot store only works if every row occupies exactly the same
// number of bytes. Variable-width text is therefore canonicalized before it
// is encoded: long values are cut at the column cap, short values are
// right-padded with spaces. The result is that a row's position on disk can
// be computed with plain arithmetic, with no slot directory at all.
//
// Row Layout (307 bytes, little-endian):
// +-----------------------------+
// | ID (4)                      |
// | Username length (8) = 32    |
// | Username (32, space padded) |
// | Email length (8) = 255      |
// | Email (255, space padded)   |
// +-----------------------------+

package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// UsernameSize is the maximum number of bytes stored for a username.
	UsernameSize = 32

	// EmailSize is the maximum number of bytes stored for an email.
	EmailSize = 255

	idSize     = 4
	headerSize = 8

	// Size is the encoded length of every record.
	Size = idSize + headerSize + UsernameSize + headerSize + EmailSize

	usernameOffset = idSize + headerSize
	emailHeader    = usernameOffset + UsernameSize
	emailOffset    = emailHeader + headerSize

	padByte = ' '
)

// ErrDecode is returned when a byte block is not a valid encoded record.
var ErrDecode = errors.New("decode error")

// Record is one logical row.
type Record struct {
	ID       uint32 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// String renders the record the way the command loop prints it.
func (r Record) String() string {
	return fmt.Sprintf("(%d, %s, %s)", r.ID, r.Username, r.Email)
}

// Canonical returns the view of r that survives an encode/decode cycle:
// text fields truncated to their caps and stripped of trailing padding.
func Canonical(r Record) Record {
	return Record{
		ID:       r.ID,
		Username: strings.TrimRight(truncate(r.Username, UsernameSize), string(padByte)),
		Email:    strings.TrimRight(truncate(r.Email, EmailSize), string(padByte)),
	}
}

// Encode converts r into its fixed-length block. It never fails:
// text is truncated or padded to the column cap first.
func Encode(r Record) []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint32(buf[0:idSize], r.ID)
	putField(buf[idSize:emailHeader], r.Username, UsernameSize)
	putField(buf[emailHeader:], r.Email, EmailSize)
	return buf
}

// Decode converts a fixed-length block back into a record.
// Text fields come back without their padding.
func Decode(buf []byte) (Record, error) {
	if len(buf) != Size {
		return Record{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrDecode, Size, len(buf))
	}

	username, err := getField(buf[idSize:emailHeader], UsernameSize)
	if err != nil {
		return Record{}, fmt.Errorf("username: %w", err)
	}
	email, err := getField(buf[emailHeader:], EmailSize)
	if err != nil {
		return Record{}, fmt.Errorf("email: %w", err)
	}

	return Record{
		ID:       binary.LittleEndian.Uint32(buf[0:idSize]),
		Username: username,
		Email:    email,
	}, nil
}

// putField writes an 8-byte length header followed by the padded payload.
func putField(dst []byte, s string, size int) {
	binary.LittleEndian.PutUint64(dst[0:headerSize], uint64(size))
	payload := dst[headerSize : headerSize+size]
	n := copy(payload, truncate(s, size))
	for i := n; i < size; i++ {
		payload[i] = padByte
	}
}

// getField reads a length-prefixed field. A zero header belongs to a slot
// that was never written and decodes as the empty string.
func getField(src []byte, size int) (string, error) {
	n := binary.LittleEndian.Uint64(src[0:headerSize])
	if n > uint64(size) {
		return "", fmt.Errorf("%w: field length %d exceeds %d", ErrDecode, n, size)
	}
	payload := src[headerSize : headerSize+int(n)]
	return strings.TrimRight(string(payload), string(padByte)), nil
}

// truncate cuts s to at most size bytes without splitting a UTF-8 sequence.
func truncate(s string, size int) string {
	if len(s) <= size {
		return s
	}
	cut := size
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
