package body

import "github.com/rigid2d/engine/math2"

// MassData is the local mass, centroid and rotational inertia a Shape
// contributes to a fixture at a given density. Computing it is the
// responsibility of the geometry library; this engine only consumes it.
type MassData struct {
	Mass    float64
	Center  math2.Vector2
	Inertia float64 // About the local centroid.
}

// Shape is the minimal contract this engine requires from an externally
// supplied convex-geometry library: the ability to compute mass properties
// and a world-space bounding box for a given placement. Narrow-phase
// detection, clipping and GJK/EPA all live outside this package.
type Shape interface {
	ComputeMass(density float64) MassData
	ComputeAABB(xf *math2.Transform) AABB
}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min math2.Vector2
	Max math2.Vector2
}

// Overlaps reports whether two AABBs intersect, inclusive of touching edges.
func (a AABB) Overlaps(other AABB) bool {

	return a.Max.X >= other.Min.X && a.Min.X <= other.Max.X &&
		a.Max.Y >= other.Min.Y && a.Min.Y <= other.Max.Y
}

// Filter determines whether two fixtures are allowed to collide.
type Filter struct {
	Group    int16 // Bodies sharing a nonzero group always collide (positive) or never collide (negative), overriding Category/Mask.
	Category uint16
	Mask     uint16
}

// DefaultFilter is the permissive filter assigned to new fixtures.
func DefaultFilter() Filter {

	return Filter{Group: 0, Category: 0x0001, Mask: 0xFFFF}
}

// ShouldCollide applies the standard group/category/mask resolution.
func (f Filter) ShouldCollide(other Filter) bool {

	if f.Group != 0 && f.Group == other.Group {
		return f.Group > 0
	}
	return f.Category&other.Mask != 0 && other.Category&f.Mask != 0
}
