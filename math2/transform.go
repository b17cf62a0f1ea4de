package math2

// Transform combines a translation and a rotation, in that order, mapping
// local-frame coordinates to world-frame coordinates.
type Transform struct {
	Position Vector2
	Rotation Rot
}

// NewTransform creates a new identity Transform.
func NewTransform() *Transform {

	return &Transform{Rotation: Rot{Cos: 1, Sin: 0}}
}

// SetIdentity resets this transform to the identity. Returns the pointer to this transform.
func (t *Transform) SetIdentity() *Transform {

	t.Position.Zero()
	t.Rotation.SetIdentity()
	return t
}

// Copy copies src into this transform. Returns the pointer to this transform.
func (t *Transform) Copy(src *Transform) *Transform {

	t.Position = src.Position
	t.Rotation = src.Rotation
	return t
}

// TransformPoint maps a local point to world space.
func (t *Transform) TransformPoint(local *Vector2) *Vector2 {

	return t.Rotation.RotateVector(local).Add(&t.Position)
}

// InvTransformPoint maps a world point to local space.
func (t *Transform) InvTransformPoint(world *Vector2) *Vector2 {

	d := NewVec2().SubVectors(world, &t.Position)
	return t.Rotation.InvRotateVector(d)
}

// TransformVector rotates (but does not translate) a local vector to world space.
func (t *Transform) TransformVector(local *Vector2) *Vector2 {

	return t.Rotation.RotateVector(local)
}

// InvTransformVector rotates (but does not translate) a world vector to local space.
func (t *Transform) InvTransformVector(world *Vector2) *Vector2 {

	return t.Rotation.InvRotateVector(world)
}
