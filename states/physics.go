package states

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/statestack/camera"
	"github.com/milk9111/statestack/ecs"
	"github.com/milk9111/statestack/ecs/component"
	"github.com/milk9111/statestack/prefabs"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeBall
)

// Ball is a dynamic circle owned by the physics system.
type Ball struct {
	Body   *cp.Body
	Shape  *cp.Shape
	Radius float64
	Color  color.Color
}

var BallComponent = component.NewComponent[Ball]("ball")

// EventBounce is pushed with the ball entity as Data when a ball hits a wall.
const EventBounce = "bounce"

// Physics steps a chipmunk space for every Ball in the world.
type Physics struct {
	space   *cp.Space
	width   float64
	height  float64
	walls   []*cp.Shape
	shapes  map[*cp.Shape]ecs.Entity
	bounced []ecs.Entity
}

var (
	_ ecs.System    = (*Physics)(nil)
	_ ecs.Destroyer = (*Physics)(nil)
)

func NewPhysics(spec prefabs.PhysicsSpec, width, height float64) *Physics {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: spec.Gravity})

	ps := &Physics{
		space:  space,
		width:  width,
		height: height,
		shapes: make(map[*cp.Shape]ecs.Entity),
	}
	ps.buildWalls()
	ps.setupHandlers()
	return ps
}

func (ps *Physics) setupHandlers() {
	h := ps.space.NewCollisionHandler(collisionTypeBall, collisionTypeSolid)
	h.UserData = ps
	h.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*Physics)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		e, ok := sys.shapes[shapeA]
		if !ok {
			e, ok = sys.shapes[shapeB]
		}
		if ok {
			sys.bounced = append(sys.bounced, e)
		}
		return true
	}
}

func (ps *Physics) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *Physics) buildWalls() {
	w, h := ps.width, ps.height
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: w, Y: 0}},
		{a: cp.Vector{X: 0, Y: h}, b: cp.Vector{X: w, Y: h}},
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: h}},
		{a: cp.Vector{X: w, Y: 0}, b: cp.Vector{X: w, Y: h}},
	}
	for _, seg := range segments {
		shape := cp.NewSegment(ps.space.StaticBody, seg.a, seg.b, 1)
		shape.SetFriction(0.8)
		shape.SetElasticity(1)
		shape.SetCollisionType(collisionTypeSolid)
		ps.space.AddShape(shape)
		ps.walls = append(ps.walls, shape)
	}
}

// Spawn adds a ball centred at x, y.
func (ps *Physics) Spawn(w *ecs.World, x, y, radius, elasticity float64, clr color.Color) (ecs.Entity, error) {
	mass := 1.0
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	body.SetPosition(cp.Vector{X: x, Y: y})

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(0.4)
	shape.SetElasticity(elasticity)
	shape.SetCollisionType(collisionTypeBall)

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	e := w.CreateEntity()
	if err := ecs.Add(w, e, BallComponent, &Ball{Body: body, Shape: shape, Radius: radius, Color: clr}); err != nil {
		ps.space.RemoveShape(shape)
		ps.space.RemoveBody(body)
		return 0, err
	}
	ps.shapes[shape] = e
	return e, nil
}

// Impulse pushes every ball by (x, y).
func (ps *Physics) Impulse(w *ecs.World, x, y float64) {
	ecs.ForEach(w, BallComponent, func(_ ecs.Entity, b *Ball) {
		b.Body.ApplyImpulseAtLocalPoint(cp.Vector{X: x, Y: y}, cp.Vector{})
	})
}

func (ps *Physics) Update(w *ecs.World, elapsed float64) {
	if ps.space == nil || elapsed <= 0 {
		return
	}
	ps.space.Step(elapsed)
	for _, e := range ps.bounced {
		w.Events().Push(ecs.Event{Type: EventBounce, Data: e})
	}
	ps.bounced = ps.bounced[:0]
}

// Centroid averages every ball position.
func (ps *Physics) Centroid(w *ecs.World) (float64, float64, bool) {
	var sx, sy float64
	n := 0
	ecs.ForEach(w, BallComponent, func(_ ecs.Entity, b *Ball) {
		p := b.Body.Position()
		sx += p.X
		sy += p.Y
		n++
	})
	if n == 0 {
		return 0, 0, false
	}
	return sx / float64(n), sy / float64(n), true
}

// Destroy releases every body the system added to its space.
func (ps *Physics) Destroy(w *ecs.World) {
	if ps.space == nil {
		return
	}
	ecs.ForEach(w, BallComponent, func(_ ecs.Entity, b *Ball) {
		ps.space.RemoveShape(b.Shape)
		ps.space.RemoveBody(b.Body)
	})
	for _, shape := range ps.walls {
		ps.space.RemoveShape(shape)
	}
	ps.walls = nil
	ps.shapes = nil
	ps.space = nil
}

// BallRenderer draws balls through the camera.
type BallRenderer struct {
	Camera *camera.Camera
}

func (r BallRenderer) Draw(w *ecs.World, screen *ebiten.Image) {
	if screen == nil {
		return
	}
	zoom := 1.0
	if r.Camera != nil {
		zoom = r.Camera.Zoom()
	}
	ecs.ForEach(w, BallComponent, func(_ ecs.Entity, b *Ball) {
		p := b.Body.Position()
		x, y := p.X, p.Y
		if r.Camera != nil {
			x, y = r.Camera.WorldToScreen(x, y)
		}
		vector.FillCircle(screen, float32(x), float32(y), float32(b.Radius*zoom), b.Color, true)
	})
}
