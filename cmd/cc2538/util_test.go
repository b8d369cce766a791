package main

import (
	"testing"

	"github.com/meshfield/go-cc2538/cc2538"
)

func TestParseWords(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want []uint32
	}{
		{"empty", "", []uint32{}},
		{"nibble", "4", []uint32{4}},
		{"word", "deadbeef", []uint32{0xdeadbeef}},
		{"carry", "0100000000", []uint32{0, 1}},
		{"prefix", "0xff", []uint32{0xff}},
		{"two words", "000000ff000000ff", []uint32{0xff, 0xff}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseWords(tc.in)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("%d words, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("word %d: %#x != %#x", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestWordsToBig(t *testing.T) {
	v := wordsToBig([]uint32{0x000000ff, 0, 1})
	if got, want := v.Text(16), "100000000000000ff"; got != want {
		t.Errorf("%q != %q", got, want)
	}

	w := bigToWords(v, 4)
	want := []uint32{0xff, 0, 1, 0}
	for i := range w {
		if w[i] != want[i] {
			t.Errorf("word %d: %#x != %#x", i, w[i], want[i])
		}
	}
}

func TestKeyMaterial(t *testing.T) {
	if _, err := keyMaterial("aabb", 0); err == nil {
		t.Error("expected error for a 2 byte key")
	}
	if _, err := keyMaterial("zz", 0); err == nil {
		t.Error("expected error for bad hex")
	}

	km, err := keyMaterial("000102030405060708090a0b0c0d0e0f", 2)
	if err != nil {
		t.Fatal(err)
	}
	if km.Size() != cc2538.Key128 {
		t.Errorf("%v != %v", km.Size(), cc2538.Key128)
	}
	if km.Slots() != 1<<2 {
		t.Errorf("slots %#x != %#x", km.Slots(), 1<<2)
	}
}
