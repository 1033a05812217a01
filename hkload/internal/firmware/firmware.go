// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package firmware loads program files (Intel HEX or ELF) into Flash images.
package firmware

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/embeddedgo/halfkay/hkload/internal/flash"
	"github.com/embeddedgo/halfkay/hkload/internal/ihex"
	"github.com/embeddedgo/halfkay/hkload/internal/util"
	"github.com/pkg/errors"
)

// FileError is returned if the program file cannot be read.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func (e *FileError) Error() string {
	return "firmware: " + e.Name + ": " + e.Err.Error()
}

// IsELF reports whether the name refers to an ELF file.
func IsELF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".elf")
}

// Load resets img and loads the program file into it. Files with the .elf
// extension are read as ELF executables, all others as Intel HEX. The reloc
// is applied to the extended linear addresses of the HEX records and to the
// physical addresses of the ELF sections. Load returns the number of loaded
// bytes. Errors in the HEX content are reported as *ihex.ParseError, all
// others as *FileError.
func Load(img *flash.Image, name string, reloc ihex.Relocation) (int, error) {
	if IsELF(name) {
		ss, err := util.ReadELF(name)
		if err != nil {
			return 0, &FileError{name, err}
		}
		img.Reset()
		if err = AddSections(img, ss, reloc); err != nil {
			return 0, &FileError{name, err}
		}
		return ss.Size(), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return 0, &FileError{name, err}
	}
	defer f.Close()
	n, err := ihex.NewLoader(img, reloc).Load(f)
	if err != nil {
		var pe *ihex.ParseError
		if !errors.As(err, &pe) {
			err = &FileError{name, err}
		}
	}
	return n, err
}

// AddSections writes the sections to img at their relocated physical
// addresses.
func AddSections(img *flash.Image, ss util.Sections, reloc ihex.Relocation) error {
	for _, s := range ss {
		if s.Paddr > 0xffff_ffff {
			return errors.Wrapf(flash.ErrOverflow, "section %s at %#x", s.Name, s.Paddr)
		}
		addr := reloc.Apply(uint32(s.Paddr))
		if err := img.Write(int(addr), s.Data); err != nil {
			return errors.Wrapf(err, "section %s", s.Name)
		}
	}
	return nil
}
