// Package game ties a loop scheduler, an input tracker and a set of kinematic
// objects to a host that supplies the game logic.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ushitora-anqou/gameform/input"
	"github.com/ushitora-anqou/gameform/loop"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Host receives the callbacks of a Game. Both run on the loop goroutine.
type Host interface {
	// Update runs once per simulate tick after the objects are integrated.
	Update(g *Game, elapsedMillis float64)
	// Draw runs once per render tick before surfaces are invalidated.
	Draw(g *Game)
}

type Game struct {
	host   Host
	input  *input.Tracker
	sched  *loop.Scheduler
	logger *slog.Logger

	mtxObjects sync.Mutex
	objects    []*Object
}

func New(cfg loop.Config, src input.EventSource, host Host, opts ...loop.Option) (*Game, error) {
	if host == nil {
		return nil, fmt.Errorf("%w: nil host", ErrInvalidArgument)
	}
	tracker, err := input.NewTracker(src)
	if err != nil {
		return nil, fmt.Errorf("create input tracker: %w", err)
	}

	g := &Game{
		host:   host,
		input:  tracker,
		logger: slog.Default().With("component", "game"),
	}
	opts = append(slices.Clone(opts), loop.WithAdvancer(tracker))
	g.sched, err = loop.New(cfg, g.simulate, g.render, opts...)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return g, nil
}

func (g *Game) Input() *input.Tracker {
	return g.input
}

func (g *Game) Scheduler() *loop.Scheduler {
	return g.sched
}

// Add appends o to the objects integrated and drawn by the game. Adding an
// object twice is a no-op.
func (g *Game) Add(o *Object) error {
	if o == nil {
		return fmt.Errorf("%w: nil object", ErrInvalidArgument)
	}
	g.mtxObjects.Lock()
	defer g.mtxObjects.Unlock()
	if slices.Contains(g.objects, o) {
		return nil
	}
	g.objects = append(g.objects, o)
	return nil
}

func (g *Game) Remove(o *Object) bool {
	g.mtxObjects.Lock()
	defer g.mtxObjects.Unlock()
	i := slices.Index(g.objects, o)
	if i < 0 {
		return false
	}
	g.objects = slices.Delete(g.objects, i, i+1)
	return true
}

// Objects returns the objects in insertion order.
func (g *Game) Objects() []*Object {
	g.mtxObjects.Lock()
	defer g.mtxObjects.Unlock()
	return slices.Clone(g.objects)
}

// DrawObjects draws every object in insertion order, each translated to
// its position.
func (g *Game) DrawObjects(c Canvas) {
	for _, o := range g.Objects() {
		c.Push()
		c.Translate(float64(o.Position.X), float64(o.Position.Y))
		o.Draw(c)
		c.Pop()
	}
}

func (g *Game) RegisterSurface(sf loop.Surface) error {
	return g.sched.Register(sf)
}

func (g *Game) UnregisterSurface(sf loop.Surface) {
	g.sched.Unregister(sf)
}

func (g *Game) Start(ctx context.Context) error {
	return g.sched.Start(ctx)
}

func (g *Game) Run(ctx context.Context) error {
	return g.sched.Run(ctx)
}

// Close stops the loop and waits for it until ctx expires. Call it when the
// host window closes.
func (g *Game) Close(ctx context.Context) error {
	err := g.sched.Stop(ctx)
	if err != nil {
		g.logger.Warn("Game loop ended with error", "error", err)
	}
	return err
}

func (g *Game) simulate(elapsedMillis float64) {
	for _, o := range g.Objects() {
		o.Update(float32(elapsedMillis))
	}
	g.host.Update(g, elapsedMillis)
}

func (g *Game) render() {
	g.host.Draw(g)
}
