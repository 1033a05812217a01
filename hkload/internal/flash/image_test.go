// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flash

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func TestUnwrittenReadsBlank(t *testing.T) {
	m := New()
	if err := m.Write(0x100, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	p := make([]byte, 0x200)
	m.Read(p, 0)
	for a, b := range p {
		switch {
		case a >= 0x100 && a < 0x103:
			if want := byte(a - 0xff); b != want {
				t.Errorf("%#x: got %#x, want %#x", a, b, want)
			}
		case b != Blank:
			t.Errorf("%#x: got %#x, want %#x", a, b, Blank)
		}
	}
	m.Read(p[:16], MaxSize-8)
	if !bytes.Equal(p[:16], bytes.Repeat([]byte{Blank}, 16)) {
		t.Errorf("out of range read: %x", p[:16])
	}
}

func TestWriteZeroIsNotBlank(t *testing.T) {
	m := New()
	if err := m.Write(4, []byte{0}); err != nil {
		t.Fatal(err)
	}
	var p [8]byte
	m.Read(p[:], 0)
	want := [8]byte{0xff, 0xff, 0xff, 0xff, 0, 0xff, 0xff, 0xff}
	if p != want {
		t.Errorf("got %x, want %x", p, want)
	}
}

func TestHasData(t *testing.T) {
	m := New()
	if m.HasData(0, 1023) {
		t.Fatal("empty image has data")
	}
	if err := m.Write(700, []byte{0xff}); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		begin, end int
		want       bool
	}{
		{0, 1023, true},
		{700, 700, true},
		{0, 699, false},
		{701, 2000, false},
		{-1, 1023, false},
		{0, MaxSize, false},
	}
	for _, tc := range tests {
		if got := m.HasData(tc.begin, tc.end); got != tc.want {
			t.Errorf("HasData(%d, %d) = %v, want %v", tc.begin, tc.end, got, tc.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	m := New()
	if !m.IsBlank(0, 1024) {
		t.Error("untouched range is not blank")
	}
	m.Write(1024, bytes.Repeat([]byte{0xff}, 100))
	if !m.IsBlank(1024, 1024) {
		t.Error("range written with 0xff is not blank")
	}
	m.Write(2047, []byte{0xfe})
	if m.IsBlank(1024, 1024) {
		t.Error("range with 0xfe is blank")
	}
	if !m.IsBlank(2048, 1024) {
		t.Error("range after the data is not blank")
	}
}

func TestWriteOverflow(t *testing.T) {
	m := New()
	err := m.Write(MaxSize-2, []byte{1, 2, 3})
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
	if m.Len() != 0 {
		t.Errorf("failed write modified the image: %d bytes", m.Len())
	}
	if err := m.Write(MaxSize-3, []byte{1, 2, 3}); err != nil {
		t.Errorf("write at the end of the address space: %v", err)
	}
}

func TestResetAndSegments(t *testing.T) {
	m := New()
	m.Write(0, []byte{1, 2})
	m.Write(2, []byte{3})
	m.Write(10, []byte{4, 5})
	want := []Segment{
		{0, []byte{1, 2, 3}},
		{10, []byte{4, 5}},
	}
	got := m.Segments()
	ok := len(got) == len(want)
	for i := 0; ok && i < len(got); i++ {
		ok = got[i].Addr == want[i].Addr && bytes.Equal(got[i].Data, want[i].Data)
	}
	if !ok {
		t.Errorf("got:\n%s\nwant:\n%s", spew.Sdump(got), spew.Sdump(want))
	}
	if n := m.Len(); n != 5 {
		t.Errorf("Len() = %d, want 5", n)
	}
	if e := m.End(); e != 12 {
		t.Errorf("End() = %d, want 12", e)
	}
	m.Reset()
	if m.Len() != 0 || m.HasData(0, 100) || m.End() != 0 || len(m.Segments()) != 0 {
		t.Error("Reset left data in the image")
	}
	var p [1]byte
	m.Read(p[:], 0)
	if p[0] != Blank {
		t.Errorf("after Reset: got %#x", p[0])
	}
}
