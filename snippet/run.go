package snippet

import (
	"context"
	"errors"
	"log"

	"github.com/milk9111/hellosnippet/script"
)

// DefaultFrames is the length of a headless run.
const DefaultFrames = 100

// Run initializes a non-interactive world, steps it frames times and cleans
// up. When input is non-nil it is asked for key presses before each step.
// The context is checked between steps.
func (d *Demo) Run(ctx context.Context, frames int, input *script.Input) (err error) {
	if err := d.InitPhysics(false); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, d.CleanupPhysics())
	}()

	camera := d.Camera()
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		keys, err := input.KeysFor(i)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if _, err := d.KeyPress(k, camera); err != nil {
				log.Printf("snippet: frame %d: %v", i, err)
			}
		}
		if err := d.StepPhysics(); err != nil {
			return err
		}
	}
	return nil
}
