package main

import (
	"image/color"
	"log/slog"
	"math"

	"github.com/ushitora-anqou/gameform/audio"
	"github.com/ushitora-anqou/gameform/constant"
	"github.com/ushitora-anqou/gameform/formdata"
	"github.com/ushitora-anqou/gameform/game"
	"github.com/ushitora-anqou/gameform/input"
	"github.com/ushitora-anqou/gameform/joypad"
	"github.com/ushitora-anqou/gameform/render"
	"github.com/ushitora-anqou/gameform/util"
	"github.com/ushitora-anqou/gameform/vector"
)

const (
	shotClip     = "shot"
	shotSpeed    = 6
	turnPerMilli = 0.2
	volumeStep   = 5
	drag         = 0.98
	brake        = 0.8
)

var (
	background = color.RGBA{0x10, 0x10, 0x20, 0xff}
	shipColor  = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	noseColor  = color.RGBA{0xff, 0x60, 0x40, 0xff}
	shotColor  = color.RGBA{0xff, 0xff, 0x80, 0xff}
)

// Demo is a small ship game. The pad thrusts and turns the ship, A fires and
// B brakes. Ctrl+R recenters the ship, a left click moves it and the wheel
// changes the volume.
type Demo struct {
	canvas *render.Canvas
	pad    *joypad.Pad
	mixer  *audio.Mixer
	logger *slog.Logger

	ship   *game.Object
	shots  []*game.Object
	thrust float32
	fired  int
}

func NewDemo(canvas *render.Canvas, pad *joypad.Pad, mixer *audio.Mixer, forms *formdata.Reader) (*Demo, error) {
	d := &Demo{
		canvas: canvas,
		pad:    pad,
		mixer:  mixer,
		logger: slog.Default().With("component", "demo"),
		thrust: 0.005,
	}
	if forms != nil {
		d.applyForm(forms)
	}

	ship, err := game.NewObject("ship", game.DrawerFunc(drawShip))
	if err != nil {
		return nil, err
	}
	w, h := canvas.Size()
	ship.Position = vector.New(float32(w)/2, float32(h)/2)
	ship.Rotation = -90
	d.ship = ship
	return d, nil
}

func (d *Demo) applyForm(forms *formdata.Reader) {
	info, err := forms.Lookup("demo", "thrust")
	if err != nil {
		d.logger.Debug("No thrust in form data", "error", err)
		return
	}
	thrust, err := info.Float()
	if err != nil {
		d.logger.Warn("Ignoring invalid thrust", "value", info.Value, "error", err)
		return
	}
	d.thrust = float32(thrust)
}

func (d *Demo) Fired() int {
	return d.fired
}

// Attach adds the demo's objects to g.
func (d *Demo) Attach(g *game.Game) error {
	return g.Add(d.ship)
}

func (d *Demo) Update(g *game.Game, elapsedMillis float64) {
	in := g.Input()
	d.pad.Poll(in)
	dir, act := d.pad.Direction(), d.pad.Action()
	_, pressed := d.pad.Pressed()

	turn := float32(elapsedMillis) * turnPerMilli
	if dir&(1<<constant.DIR_LEFT) != 0 {
		d.ship.Rotation -= turn
	}
	if dir&(1<<constant.DIR_RIGHT) != 0 {
		d.ship.Rotation += turn
	}
	heading := headingOf(d.ship.Rotation)
	d.ship.Acceleration = vector.Zero
	if dir&(1<<constant.DIR_UP) != 0 {
		d.ship.Acceleration = heading.Mul(d.thrust)
	}
	d.ship.Velocity = d.ship.Velocity.Mul(drag)

	if pressed&(1<<constant.ACT_A) != 0 {
		d.fire(g, heading)
	}
	if act&(1<<constant.ACT_B) != 0 {
		d.ship.Velocity = d.ship.Velocity.Mul(brake)
	}
	if in.IsTriggered(input.Letter('r') | input.Control) {
		w, h := d.canvas.Size()
		d.ship.Position = vector.New(float32(w)/2, float32(h)/2)
		d.ship.Velocity = vector.Zero
	}

	if in.IsButtonTriggered(input.MouseLeft) {
		x, y := in.MousePosition()
		d.ship.Position = vector.New(float32(x), float32(y))
	}
	if delta := in.WheelDelta(); delta != 0 {
		d.mixer.SetVolume(d.mixer.Volume() + delta/120*volumeStep)
		util.Trace("Volume changed", "volume", d.mixer.Volume())
	}

	d.wrap(d.ship)
	d.pruneShots(g)
}

func (d *Demo) fire(g *game.Game, heading vector.Vector) {
	shot, err := game.NewObject("shot", game.DrawerFunc(drawShot))
	if err != nil {
		return
	}
	shot.Position = d.ship.Position.Add(heading.Mul(8))
	shot.Velocity = d.ship.Velocity.Add(heading.Mul(shotSpeed))
	shot.Rotation = d.ship.Rotation
	if err := g.Add(shot); err != nil {
		d.logger.Warn("Failed to add shot", "error", err)
		return
	}
	d.shots = append(d.shots, shot)
	d.fired++

	if d.mixer.Has(shotClip) {
		if _, err := d.mixer.Play(shotClip); err != nil {
			d.logger.Warn("Failed to play sound", "clip", shotClip, "error", err)
		}
	}
}

func (d *Demo) pruneShots(g *game.Game) {
	w, h := d.canvas.Size()
	kept := d.shots[:0]
	for _, s := range d.shots {
		if s.Position.X < 0 || s.Position.Y < 0 || s.Position.X >= float32(w) || s.Position.Y >= float32(h) {
			g.Remove(s)
			continue
		}
		kept = append(kept, s)
	}
	d.shots = kept
}

func (d *Demo) wrap(o *game.Object) {
	w, h := d.canvas.Size()
	o.Position.X = float32(math.Mod(float64(o.Position.X)+float64(w), float64(w)))
	o.Position.Y = float32(math.Mod(float64(o.Position.Y)+float64(h), float64(h)))
}

func (d *Demo) Draw(g *game.Game) {
	c := d.canvas
	c.Identity()
	c.Clear(background)
	g.DrawObjects(c)
}

func headingOf(degrees float32) vector.Vector {
	sin, cos := math.Sincos(float64(degrees) * math.Pi / 180)
	return vector.New(float32(cos), float32(sin))
}

func drawShip(c game.Canvas, o *game.Object) {
	c.FillRect(-4, -4, 8, 8, shipColor)
	c.FillRect(4, -1, 4, 2, noseColor)
}

func drawShot(c game.Canvas, o *game.Object) {
	c.FillRect(-1, -1, 3, 2, shotColor)
}

// beep synthesizes a short decaying square wave.
func beep(freq float64, millis int) *audio.Clip {
	frames := constant.AUDIO_FREQ * millis / 1000
	samples := make([]float32, 0, frames*constant.CHANNELS)
	for i := range frames {
		phase := math.Mod(float64(i)*freq/constant.AUDIO_FREQ, 1)
		v := float32(0.25 * (1 - float64(i)/float64(frames)))
		if phase >= 0.5 {
			v = -v
		}
		samples = append(samples, v, v)
	}
	return audio.NewClip(samples)
}
