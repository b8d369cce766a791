package cc2538

import (
	"fmt"
	"testing"
)

func TestHexDump(t *testing.T) {
	want := "h -> 00000000  66 6f 6f 62 61 72                                 |foobar| <- h"
	got := fmt.Sprintf("h -> %s <- h", hexDump([]byte("foobar")))
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
