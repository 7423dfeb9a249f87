package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestKeysFor(t *testing.T) {
	src := []byte(`
text := import("text")
if frame == 1 {
	press("b")
	press("space")
}
if frame % 2 == 0 && frame > 0 {
	press(text.to_upper("m"))
}
`)
	in, err := Compile("inline", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cases := []struct {
		frame int
		want  string
	}{
		{0, ""},
		{1, "b "},
		{2, "M"},
		{3, ""},
		{4, "M"},
	}
	for _, c := range cases {
		got, err := in.KeysFor(c.frame)
		if err != nil {
			t.Fatalf("frame %d: %v", c.frame, err)
		}
		if string(got) != c.want {
			t.Fatalf("frame %d: expected %q, got %q", c.frame, c.want, string(got))
		}
	}
}

func TestBadKey(t *testing.T) {
	in, err := Compile("bad", []byte(`press("nope")`))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := in.KeysFor(0); !errors.Is(err, ErrBadKey) {
		t.Fatalf("expected ErrBadKey, got %v", err)
	}
}

func TestCompileError(t *testing.T) {
	if _, err := Compile("broken", []byte(`if {`)); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestLoadEmbeddedDemo(t *testing.T) {
	in, err := Load("demo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pressed := map[byte]int{}
	for frame := 0; frame < 100; frame++ {
		keys, err := in.KeysFor(frame)
		if err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		for _, k := range keys {
			pressed[k]++
		}
	}
	if pressed['C'] != 1 || pressed['Z'] != 10 || pressed[' '] != 1 {
		t.Fatalf("unexpected key counts %v", pressed)
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.tengo")
	if err := os.WriteFile(path, []byte(`press("K")`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	in, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	keys, err := in.KeysFor(7)
	if err != nil || string(keys) != "K" {
		t.Fatalf("expected K, got %q (%v)", keys, err)
	}
}

func TestNilInput(t *testing.T) {
	var in *Input
	keys, err := in.KeysFor(3)
	if err != nil || keys != nil {
		t.Fatalf("nil input should press nothing, got %v %v", keys, err)
	}
}
