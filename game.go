package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/hellosnippet/config"
	"github.com/milk9111/hellosnippet/physics"
	"github.com/milk9111/hellosnippet/render"
	"github.com/milk9111/hellosnippet/snippet"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	zoom        = 6.0
	lookAhead   = 50.0
	cameraSpeed = 0.5
	cameraTurn  = 0.02
)

var errQuit = errors.New("quit")

// commandKeys binds window keys to the demo's key table.
var commandKeys = map[ebiten.Key]byte{
	ebiten.KeyB:     'B',
	ebiten.KeySpace: ' ',
	ebiten.KeyM:     'M',
	ebiten.KeyN:     'N',
	ebiten.KeyR:     'R',
	ebiten.KeyC:     'C',
	ebiten.KeyZ:     'Z',
	ebiten.KeyX:     'X',
	ebiten.KeyK:     'K',
}

type Game struct {
	frames int

	demo    *snippet.Demo
	watcher *config.Watcher
	camera  physics.Pose

	help     *ebitenui.UI
	showHelp bool
}

func NewGame(demo *snippet.Demo, watcher *config.Watcher) *Game {
	g := &Game{
		demo:    demo,
		watcher: watcher,
		camera:  demo.Camera(),
	}
	g.help = NewHelpUI(g)
	return g
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHelp = !g.showHelp
	}
	if g.showHelp {
		g.help.Update()
	}

	g.applyConfig()
	g.moveCamera()

	for key, b := range commandKeys {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		if _, err := g.demo.KeyPress(b, g.camera); err != nil {
			log.Printf("game: %v", err)
		}
	}

	return g.demo.StepPhysics()
}

func (g *Game) moveCamera() {
	var d mgl64.Vec2
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		d[0] -= cameraSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		d[0] += cameraSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		d[1] += cameraSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		d[1] -= cameraSpeed
	}
	g.camera = g.camera.Translate(d)
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		g.camera.Angle += cameraTurn
	}
	if ebiten.IsKeyPressed(ebiten.KeyE) {
		g.camera.Angle -= cameraTurn
	}
}

// applyConfig drains pending reloads. Only gravity and the shared material
// change on a live scene.
func (g *Game) applyConfig() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case cfg, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			gr := cfg.Physics.Gravity
			if err := g.demo.Scene().SetGravity(mgl64.Vec2{gr[0], gr[1]}); err != nil {
				log.Printf("game: reload gravity: %v", err)
			}
			m := cfg.Material
			g.demo.Material().Set(m.StaticFriction, m.DynamicFriction, m.Restitution)
			log.Printf("game: config reloaded")
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("game: config reload: %v", err)
		default:
			return
		}
	}
}

func (g *Game) forward() mgl64.Vec2 {
	f := g.demo.Config().Camera.Forward
	return g.camera.Rotate(mgl64.Vec2{f[0], f[1]}.Normalize())
}

func (g *Game) Draw(screen *ebiten.Image) {
	view := render.View{
		Center: physics.Pose{P: g.camera.P.Add(g.forward().Mul(lookAhead)), Angle: g.camera.Angle},
		Zoom:   zoom,
		Width:  baseWidth,
		Height: baseHeight,
	}
	render.DrawScene(screen, g.demo.Scene(), view)

	cx, cy := view.ToScreen(g.camera.P.X(), g.camera.P.Y())
	tip := g.camera.P.Add(g.forward().Mul(5))
	tx, ty := view.ToScreen(tip.X(), tip.Y())
	ebitenutil.DrawLine(screen, cx, cy, tx, ty, colornames.White)

	scene := g.demo.Scene()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    Actors: %d    Visualizer: %v    H: help",
		scene.Frames(), ebiten.ActualFPS(), len(scene.Actors()), g.demo.Visualizer().IsConnected()))

	if g.showHelp {
		g.help.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
