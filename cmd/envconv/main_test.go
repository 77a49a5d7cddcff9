package main

import "testing"

func TestSizeFlag(t *testing.T) {
	cases := []struct {
		flag  string
		width int
		want  int
	}{
		{"25%", 4096, 1024},
		{"25%", 3000, 512},
		{"512px", 100, 512},
		{"300px", 100, 256},
		{"0px", 100, 0},
	}
	for _, c := range cases {
		var sz size
		if err := sz.Set(c.flag); err != nil {
			t.Fatalf("%q: %v", c.flag, err)
		}
		if got := sz.Calc(c.width); got != c.want {
			t.Errorf("%q of %d should be %d but was %d", c.flag, c.width, c.want, got)
		}
		if sz.String() != c.flag {
			t.Errorf("%q should print as itself, got %q", c.flag, sz.String())
		}
	}

	var sz size
	if err := sz.Set("512"); err == nil {
		t.Error("a size without unit should be rejected")
	}
}
