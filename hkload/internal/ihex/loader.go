// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ihex

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/embeddedgo/halfkay/hkload/internal/flash"
	"github.com/pkg/errors"
)

// ErrOverflow is returned for data outside the flash.Image address space.
var ErrOverflow = flash.ErrOverflow

// ParseError describes the line that stopped the loading.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ihex: line %d: %s", e.Line, e.Err)
}

// Relocation describes the address window [Base, Base+Size) that extended
// linear address records are moved down from by Base. The zero value
// describes no relocation.
type Relocation struct {
	Base uint32
	Size uint32
}

// FlexSPIBase is the address the large Flash devices are linked at.
const FlexSPIBase = 0x6000_0000

// RelocationFor returns the relocation required by the device with the given
// code and block size. HEX files for the devices with more than 1 MiB of
// Flash and 1 KiB blocks (Teensy 4.x) carry the FlexSPI base address.
func RelocationFor(codeSize, blockSize int) Relocation {
	if codeSize > 1024*1024 && blockSize >= 1024 {
		return Relocation{FlexSPIBase, uint32(codeSize)}
	}
	return Relocation{}
}

// Apply returns the relocated address.
func (r Relocation) Apply(addr uint32) uint32 {
	if r.Size != 0 && addr >= r.Base && addr-r.Base < r.Size {
		addr -= r.Base
	}
	return addr
}

// Loader loads Intel HEX records into a flash.Image.
type Loader struct {
	img   *flash.Image
	reloc Relocation
	ext   uint32
	eof   bool
	n     int
}

// NewLoader returns a loader that writes to img and applies reloc to the
// extended linear addresses.
func NewLoader(img *flash.Image, reloc Relocation) *Loader {
	return &Loader{img: img, reloc: reloc}
}

// Load resets the image and loads the Intel HEX data read from r into it. It
// stops at the first end of file record or at the first invalid line and
// returns the number of data bytes loaded. The lines before the invalid one
// remain in the image.
func (l *Loader) Load(r io.Reader) (n int, err error) {
	l.img.Reset()
	l.ext = 0
	l.eof = false
	l.n = 0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024), maxLen)
	lineno := 0
	for !l.eof && sc.Scan() {
		lineno++
		if err = l.parseLine(sc.Text()); err != nil {
			return l.n, &ParseError{lineno, err}
		}
	}
	err = sc.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		err = &ParseError{lineno + 1, ErrLongLine}
	}
	return l.n, err
}

// ExtAddr returns the current extended address.
func (l *Loader) ExtAddr() uint32 {
	return l.ext
}

func (l *Loader) parseLine(line string) error {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	if line == "" {
		return nil
	}
	var r Record
	n, err := parseHeader(line, &r)
	if err != nil {
		return err
	}
	if r.Type == TypeExtSegment || r.Type == TypeExtLinear {
		// A malformed extended address record is skipped, not rejected.
		if n != 2 || parseBody(line, n, &r) != nil || !r.Valid() {
			return nil
		}
		v := uint32(r.Data[0])<<8 | uint32(r.Data[1])
		if r.Type == TypeExtSegment {
			l.ext = v << 4
		} else {
			l.ext = l.reloc.Apply(v << 16)
		}
		return nil
	}
	if err = parseBody(line, n, &r); err != nil {
		return err
	}
	if !r.Valid() {
		return errors.Wrapf(ErrChecksum, "got %02X, want %02X", r.Sum, r.Checksum())
	}
	switch r.Type {
	case TypeData:
		addr := uint64(r.Addr) + uint64(l.ext)
		if addr+uint64(n) > flash.MaxSize {
			return errors.Wrapf(ErrOverflow, "%d bytes at %#x", n, addr)
		}
		if err = l.img.Write(int(addr), r.Data); err != nil {
			return err
		}
		l.n += n
	case TypeEOF:
		l.eof = true
	}
	return nil
}
