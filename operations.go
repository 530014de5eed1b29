package gmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// composite is implemented by shapes that own child objects. Composites
// blend their children's colors and forward material bindings; their own
// material binding is never consulted for color lookups.
type composite interface {
	Shape
	colorAt(p ms3.Vec) Color
	setMaterial(m *Material)
}

// colorSnapDistance short-circuits composite color blending to the nearest
// child when the point effectively lies on its surface.
const colorSnapDistance = 10 * epstol

// childList carries the shared child bookkeeping of all composites.
type childList struct {
	children []*Object
}

func (c *childList) setMaterial(m *Material) {
	for _, child := range c.children {
		child.SetMaterial(m)
	}
}

// colorAt returns the distance-weighted blend of the children's colors at a
// point in the composite's local frame. Weights fall off as 1/d^0.9.
func (c *childList) colorAt(p ms3.Vec) Color {
	sum := Black
	var weight float32
	for _, child := range c.children {
		d := absf(child.TransformedDistance(p))
		col := child.ColorAt(p)
		if d < colorSnapDistance {
			return col
		}
		w := 1 / math32.Pow(d, 0.9)
		weight += w
		sum = sum.Add(col.Scale(w))
	}
	return sum.Scale(1 / weight)
}

func (bld *Builder) gatherChildren(op string, objs []*Object) childList {
	if len(objs) == 0 {
		bld.shapeErrorf("%s requires at least 1 child", op)
	}
	for i, o := range objs {
		if o == nil {
			bld.shapeErrorf("nil child %d in %s", i, op)
		}
	}
	return childList{children: objs}
}

type union struct {
	childList
}

// Union joins the shapes of one or more objects into one. Is exact.
func (bld *Builder) Union(objs ...*Object) *Object {
	return newObject(&union{bld.gatherChildren("Union", objs)})
}

func (u *union) Distance(p ms3.Vec) float32 {
	min := float32(largenum)
	for _, child := range u.children {
		min = minf(min, child.TransformedDistance(p))
	}
	return min
}

type intersection struct {
	childList
}

// Intersection keeps only the region common to every child.
//
// The fold is seeded at 0, not -inf: a point inside all children reports
// distance 0 rather than the true interior signed distance. Surface and
// exterior queries are unaffected, which is all the tracer needs.
func (bld *Builder) Intersection(objs ...*Object) *Object {
	return newObject(&intersection{bld.gatherChildren("Intersection", objs)})
}

func (s *intersection) Distance(p ms3.Vec) float32 {
	var max float32
	for _, child := range s.children {
		max = maxf(max, child.TransformedDistance(p))
	}
	return max
}

type difference struct {
	childList
}

// Difference subtracts every child after the first from the first.
func (bld *Builder) Difference(objs ...*Object) *Object {
	return newObject(&difference{bld.gatherChildren("Difference", objs)})
}

func (s *difference) Distance(p ms3.Vec) float32 {
	max := s.children[0].TransformedDistance(p)
	for _, child := range s.children[1:] {
		max = maxf(max, -child.TransformedDistance(p))
	}
	return max
}

type smoothUnion struct {
	childList
	k float32
}

// SmoothUnion joins children like Union but rounds the creases where
// surfaces meet. k controls the blend radius.
func (bld *Builder) SmoothUnion(k float32, objs ...*Object) *Object {
	if k <= 0 {
		bld.shapeErrorf("smooth union blend radius must be positive")
		k = 1
	}
	return newObject(&smoothUnion{childList: bld.gatherChildren("SmoothUnion", objs), k: k})
}

func smoothUnionf(d1, d2, k float32) float32 {
	h := maxf(k-absf(d1-d2), 0) / k
	return minf(d1, d2) - h*h*h*k*(1.0/6.0)
}

func (s *smoothUnion) Distance(p ms3.Vec) float32 {
	min := s.children[0].TransformedDistance(p)
	for _, child := range s.children[1:] {
		min = smoothUnionf(min, child.TransformedDistance(p), s.k)
	}
	return min
}

type blend struct {
	childList
	k float32
}

// Blend interpolates between consecutive children: the integer part of k
// selects the child pair, the fractional part the mix between them. Both
// distance and color are interpolated. k must be non-negative; indices past
// the last child contribute a far distance and black.
func (bld *Builder) Blend(k float32, objs ...*Object) *Object {
	if k < 0 {
		bld.shapeErrorf("negative blend position")
		k = 0
	}
	return newObject(&blend{childList: bld.gatherChildren("Blend", objs), k: k})
}

func (s *blend) pair() (lo, hi, frac float32) {
	f := math32.Floor(s.k)
	return f, f + 1, s.k - f
}

func (s *blend) Distance(p ms3.Vec) float32 {
	lo, hi, frac := s.pair()
	d0 := float32(largenum)
	if int(lo) < len(s.children) {
		d0 = s.children[int(lo)].TransformedDistance(p)
	}
	d1 := float32(largenum)
	if int(hi) < len(s.children) {
		d1 = s.children[int(hi)].TransformedDistance(p)
	}
	return mixf(d0, d1, frac)
}

func (s *blend) colorAt(p ms3.Vec) Color {
	lo, hi, frac := s.pair()
	c0 := Black
	if int(lo) < len(s.children) {
		c0 = s.children[int(lo)].ColorAt(p)
	}
	c1 := Black
	if int(hi) < len(s.children) {
		c1 = s.children[int(hi)].ColorAt(p)
	}
	return LerpColor(c0, c1, frac)
}
