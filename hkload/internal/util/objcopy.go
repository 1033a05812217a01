// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"debug/elf"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Section struct {
	Name  string
	Paddr uint64 // phisical location of the section in the Flash/ROM
	Data  []byte // section data
}

type Sections []*Section

// ReadELF reads the loadable sections of the program and returns them sorted
// by the physical address.
func ReadELF(name string) (Sections, error) {
	f, err := elf.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ss := make(Sections, 0, 16)
	for _, s := range f.Sections {
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_ALLOC == 0 {
			continue
		}
		paddr, ok := physAddr(f, s)
		if !ok {
			Warn("readelf: skipping section '%s' outside of any segment", s.Name)
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, errors.Wrapf(err, "section %s", s.Name)
		}
		if len(data) == 0 {
			continue
		}
		ss = append(ss, &Section{s.Name, paddr, data})
	}
	ss.SortByPaddr()
	return ss, nil
}

// physAddr finds the load address of the section using the program headers.
func physAddr(f *elf.File, s *elf.Section) (uint64, bool) {
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if p.Off <= s.Offset && s.Offset < p.Off+p.Filesz {
			return p.Paddr + s.Offset - p.Off, true
		}
	}
	return 0, false
}

// ReadBins reads binary files acording to the description
// BIN1:ADDR1[,BIN2:ADDR2[,...]] and returns them as a slice of sections.
func ReadBins(descr string) (Sections, error) {
	bins := strings.Split(descr, ",")
	ss := make(Sections, len(bins))
	for k, ba := range bins {
		i := strings.LastIndexByte(ba, ':')
		if i <= 0 {
			return nil, errors.Errorf("bad '%s' in the -inc option", ba)
		}
		bin, addr := ba[:i], ba[i+1:]
		s := &Section{Name: bin}
		var err error
		s.Paddr, err = strconv.ParseUint(addr, 0, 64)
		if err != nil {
			return nil, errors.Errorf("bad address in '%s': %s", addr, err)
		}
		s.Data, err = os.ReadFile(bin)
		if err != nil {
			return nil, err
		}
		ss[k] = s
	}
	return ss, nil
}

// SortByPaddr sorts sections according to the Paddr field.
func (ss Sections) SortByPaddr() {
	sort.Slice(
		ss,
		func(i, j int) bool {
			return ss[i].Paddr < ss[j].Paddr
		},
	)
}

// Size returns the total number of data bytes in all sections.
func (ss Sections) Size() int {
	n := 0
	for _, s := range ss {
		n += len(s.Data)
	}
	return n
}

// PadBytes returns the slice containing n bytes equal b.
func PadBytes(cache *[]byte, n int, b byte) []byte {
	var buf []byte
	if cache != nil {
		buf = *cache
	}
	if len(buf) < n {
		buf = make([]byte, n)
		for i := range buf {
			buf[i] = b
		}
		if cache != nil {
			*cache = buf
		}
	}
	return buf[:n]
}
