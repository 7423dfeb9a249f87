package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

var ErrBadKey = errors.New("script: key must be a single character or a key name")

// keyNames maps readable names to the key bytes the command table uses.
var keyNames = map[string]byte{
	"space": ' ',
	"enter": '\r',
}

// Input is a compiled input script. Each call to KeysFor runs the script
// once with the global `frame` set; the script queues keys with press(key).
type Input struct {
	name     string
	compiled *tengo.Compiled
	pressed  []byte
	err      error
}

// Load compiles a script by disk path or embedded name.
func Load(name string) (*Input, error) {
	src, err := Source(name)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", name, err)
	}
	return Compile(name, src)
}

// Compile builds an Input from source.
func Compile(name string, src []byte) (*Input, error) {
	in := &Input{name: name}
	s := tengo.NewScript(src)
	_ = s.Add("frame", 0)
	_ = s.Add("press", &tengo.UserFunction{Name: "press", Value: in.press})
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	in.compiled = compiled
	return in, nil
}

func (in *Input) Name() string { return in.name }

func (in *Input) press(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	s, ok := tengo.ToString(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "key", Expected: "string", Found: args[0].TypeName()}
	}
	key, err := parseKey(s)
	if err != nil {
		in.err = err
		return tengo.FalseValue, nil
	}
	in.pressed = append(in.pressed, key)
	return tengo.TrueValue, nil
}

func parseKey(s string) (byte, error) {
	if b, ok := keyNames[strings.ToLower(s)]; ok {
		return b, nil
	}
	if len(s) == 1 {
		return s[0], nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadKey, s)
}

// KeysFor runs the script for one frame and returns the keys it pressed, in
// order.
func (in *Input) KeysFor(frame int) ([]byte, error) {
	if in == nil || in.compiled == nil {
		return nil, nil
	}
	in.pressed = in.pressed[:0]
	in.err = nil
	if err := in.compiled.Set("frame", frame); err != nil {
		return nil, err
	}
	if err := in.compiled.Run(); err != nil {
		return nil, fmt.Errorf("script: %s frame %d: %w", in.name, frame, err)
	}
	if in.err != nil {
		return nil, fmt.Errorf("script: %s frame %d: %w", in.name, frame, in.err)
	}
	return append([]byte(nil), in.pressed...), nil
}
