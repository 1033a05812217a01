// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package firmware

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/embeddedgo/halfkay/hkload/internal/flash"
	"github.com/embeddedgo/halfkay/hkload/internal/ihex"
	"github.com/embeddedgo/halfkay/hkload/internal/util"
	"github.com/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o666); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadHex(t *testing.T) {
	name := writeFile(t, "blink.hex",
		":020000040000FA\r\n"+
			":10000000214601360121470136007EFE09D2190141\r\n"+
			":00000001FF\r\n",
	)
	img := flash.New()
	n, err := Load(img, name, ihex.Relocation{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 || img.Len() != 16 {
		t.Errorf("n=%d len=%d, want 16", n, img.Len())
	}
}

func TestLoadMissingFile(t *testing.T) {
	for _, name := range []string{"missing.hex", "missing.elf"} {
		_, err := Load(flash.New(), filepath.Join(t.TempDir(), name), ihex.Relocation{})
		var fe *FileError
		if !errors.As(err, &fe) {
			t.Errorf("%s: got %v, want FileError", name, err)
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("%s: got %v, want ErrNotExist", name, err)
		}
	}
}

func TestLoadParseErrorIsNotFileError(t *testing.T) {
	tests := []struct {
		content string
		err     error
	}{
		{":10000000214601360121470136007EFE09D2190142\n", ihex.ErrChecksum},
		{":" + strings.Repeat("0", 70000) + "\n", ihex.ErrLongLine},
	}
	for _, tc := range tests {
		name := writeFile(t, "bad.hex", tc.content)
		_, err := Load(flash.New(), name, ihex.Relocation{})
		var fe *FileError
		if errors.As(err, &fe) {
			t.Errorf("got FileError: %v", err)
			continue
		}
		var pe *ihex.ParseError
		if !errors.As(err, &pe) || !errors.Is(err, tc.err) {
			t.Errorf("got %v, want ParseError: %v", err, tc.err)
		}
	}
}

func TestAddSections(t *testing.T) {
	img := flash.New()
	ss := util.Sections{
		{Name: ".text", Paddr: ihex.FlexSPIBase, Data: []byte{1, 2, 3}},
		{Name: ".data", Paddr: ihex.FlexSPIBase + 0x100, Data: []byte{4}},
	}
	if err := AddSections(img, ss, ihex.RelocationFor(2031616, 1024)); err != nil {
		t.Fatal(err)
	}
	if !img.Written(0) || !img.Written(2) || !img.Written(0x100) || img.Len() != 4 {
		t.Errorf("sections not relocated: %d bytes", img.Len())
	}
	err := AddSections(img, util.Sections{{Name: ".big", Paddr: 1 << 32, Data: []byte{0}}}, ihex.Relocation{})
	if !errors.Is(err, flash.ErrOverflow) {
		t.Errorf("got %v, want ErrOverflow", err)
	}
	err = AddSections(img, ss, ihex.Relocation{})
	if !errors.Is(err, flash.ErrOverflow) {
		t.Errorf("unrelocated FlexSPI section: got %v, want ErrOverflow", err)
	}
}
