// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/embeddedgo/halfkay/hkload/internal/firmware"
	"github.com/embeddedgo/halfkay/hkload/internal/flash"
	"github.com/embeddedgo/halfkay/hkload/internal/ihex"
	"github.com/embeddedgo/halfkay/hkload/internal/mcu"
	"github.com/embeddedgo/halfkay/hkload/internal/util"
	"github.com/marcinbor85/gohex"
)

const (
	DescrBin = "convert a HEX/ELF file to the Flash image binary"
	DescrHex = "convert a HEX/ELF file to the Intel HEX format as seen by the loader"
)

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] [HEX|ELF [%s]]\nOptions:\n",
			cmd, strings.ToUpper(cmd),
		)
		fs.PrintDefaults()
	}
	mcuName := fs.String(
		"mcu", "",
		"relocate addresses as the loader does for the `MCU`",
	)
	inc := fs.String(
		"inc", "",
		"binary files to be included BIN1:ADDR1[,BIN2:ADDR2[,...]]",
	)
	var pad uint
	lineLen := 16
	if cmd == "bin" {
		fs.UintVar(&pad, "pad", flash.Blank, "pad `byte` used to fill gaps")
	} else {
		fs.IntVar(&lineLen, "line", lineLen, "number of data bytes per HEX `record`")
	}
	fs.Parse(args)
	if fs.NArg() > 2 {
		fs.Usage()
		os.Exit(1)
	}
	in, out := util.InOutFiles(fs.Arg(0), ".hex", fs.Arg(1), "."+cmd)
	if in == out {
		util.Fatal("%s: input and output are the same file", cmd)
	}
	var reloc ihex.Relocation
	if *mcuName != "" {
		m, err := mcu.Lookup(*mcuName)
		util.FatalErr("", err)
		reloc = ihex.RelocationFor(m.CodeSize, m.BlockSize)
	}
	img := flash.New()
	_, err := firmware.Load(img, in, reloc)
	util.FatalErr("", err)
	if *inc != "" {
		isec, err := util.ReadBins(*inc)
		util.FatalErr("readbins", err)
		util.FatalErr("include", firmware.AddSections(img, isec, reloc))
	}
	of, err := os.Create(out)
	util.FatalErr("", err)
	defer of.Close()
	if cmd == "bin" {
		err = writeBin(of, img, byte(pad))
		util.FatalErr("bin", err)
		return
	}
	util.FatalErr("hex", writeHex(of, img, lineLen))
}

// writeHex writes the loaded parts of the image in the Intel HEX format with
// lineLen data bytes per record.
func writeHex(w io.Writer, img *flash.Image, lineLen int) error {
	mem := gohex.NewMemory()
	for _, s := range img.Segments() {
		if err := mem.AddBinary(uint32(s.Addr), s.Data); err != nil {
			return err
		}
	}
	return mem.DumpIntelHex(w, byte(lineLen))
}

// writeBin writes the image from address 0 to its last loaded byte, filling
// the gaps with pad.
func writeBin(w io.Writer, img *flash.Image, pad byte) error {
	var padCache []byte
	addr := 0
	for _, s := range img.Segments() {
		if s.Addr > addr {
			if _, err := w.Write(util.PadBytes(&padCache, s.Addr-addr, pad)); err != nil {
				return err
			}
		}
		if _, err := w.Write(s.Data); err != nil {
			return err
		}
		addr = s.Addr + len(s.Data)
	}
	return nil
}
