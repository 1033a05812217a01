// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ihex loads Intel HEX files into a Flash image.
package ihex

import (
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Record types
const (
	TypeData       uint8 = 0x00
	TypeEOF        uint8 = 0x01
	TypeExtSegment uint8 = 0x02
	TypeStartSeg   uint8 = 0x03
	TypeExtLinear  uint8 = 0x04
	TypeStartLin   uint8 = 0x05
)

var (
	ErrMarker    = errors.New("line does not start with ':'")
	ErrShortLine = errors.New("line too short")
	ErrLongLine  = errors.New("line too long")
	ErrHexDigit  = errors.New("invalid hexadecimal digit")
	ErrChecksum  = errors.New("checksum mismatch")
)

// minLen is the length of the shortest valid record: ':', LL, AAAA, TT, CC.
const minLen = 11

// maxLen limits the scanned line length. The longest record (255 data bytes)
// takes 521 characters, the rest is left for the trailing white space.
const maxLen = 4096

// Record is a decoded Intel HEX record.
type Record struct {
	Type uint8
	Addr uint16
	Data []byte
	Sum  uint8 // checksum byte as read from the line
}

// Checksum computes the two's complement checksum of the record fields.
func (r *Record) Checksum() uint8 {
	sum := uint8(len(r.Data)) + uint8(r.Addr>>8) + uint8(r.Addr) + r.Type
	for _, b := range r.Data {
		sum += b
	}
	return -sum
}

// Valid reports whether the Sum field matches the record content.
func (r *Record) Valid() bool {
	return r.Checksum() == r.Sum
}

// ParseRecord decodes a single line of the Intel HEX file. Trailing white
// space is ignored. The checksum is decoded but not verified (see Valid).
func ParseRecord(line string) (r Record, err error) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	n, err := parseHeader(line, &r)
	if err != nil {
		return
	}
	err = parseBody(line, n, &r)
	return
}

// parseHeader decodes the length, address and type fields and checks that the
// line is long enough to hold the data bytes and the checksum.
func parseHeader(line string, r *Record) (n int, err error) {
	if len(line) == 0 || line[0] != ':' {
		return 0, ErrMarker
	}
	if len(line) < minLen {
		return 0, ErrShortLine
	}
	var hdr [4]byte
	if _, err = hex.Decode(hdr[:], []byte(line[1:9])); err != nil {
		return 0, ErrHexDigit
	}
	n = int(hdr[0])
	if len(line) < minLen+2*n {
		return 0, ErrShortLine
	}
	r.Addr = uint16(hdr[1])<<8 | uint16(hdr[2])
	r.Type = hdr[3]
	return n, nil
}

func parseBody(line string, n int, r *Record) error {
	body := make([]byte, n+1)
	if _, err := hex.Decode(body, []byte(line[9:minLen+2*n])); err != nil {
		return ErrHexDigit
	}
	r.Data = body[:n:n]
	r.Sum = body[n]
	return nil
}
