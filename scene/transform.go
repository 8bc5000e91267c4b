package scene

import (
	"math"

	"github.com/mokiat/gomath/dprec"
)

// Transform is the local placement of a node. Rotation holds Euler angles
// in radians applied in XYZ order, the three.js default.
type Transform struct {
	Position dprec.Vec3
	Rotation dprec.Vec3
	Scale    dprec.Vec3
}

// IdentityTransform returns a transform that leaves its node in place.
func IdentityTransform() Transform {
	return Transform{
		Scale: dprec.NewVec3(1.0, 1.0, 1.0),
	}
}

// Quat returns the rotation as a quaternion.
func (t Transform) Quat() dprec.Quat {
	return EulerQuat(t.Rotation)
}

// Matrix returns the local matrix T * R * S.
func (t Transform) Matrix() dprec.Mat4 {
	return Compose(t.Position, t.Quat(), t.Scale)
}

// EulerQuat converts XYZ Euler angles into a quaternion.
func EulerQuat(euler dprec.Vec3) dprec.Quat {
	qx := dprec.RotationQuat(dprec.Radians(euler.X), dprec.BasisXVec3())
	qy := dprec.RotationQuat(dprec.Radians(euler.Y), dprec.BasisYVec3())
	qz := dprec.RotationQuat(dprec.Radians(euler.Z), dprec.BasisZVec3())
	return dprec.QuatProd(dprec.QuatProd(qx, qy), qz)
}

// Compose builds a translation-rotation-scale matrix.
func Compose(translation dprec.Vec3, rotation dprec.Quat, scale dprec.Vec3) dprec.Mat4 {
	x := dprec.Vec3Prod(dprec.QuatVec3Rotation(rotation, dprec.BasisXVec3()), scale.X)
	y := dprec.Vec3Prod(dprec.QuatVec3Rotation(rotation, dprec.BasisYVec3()), scale.Y)
	z := dprec.Vec3Prod(dprec.QuatVec3Rotation(rotation, dprec.BasisZVec3()), scale.Z)
	return dprec.Mat4{
		M11: x.X, M12: y.X, M13: z.X, M14: translation.X,
		M21: x.Y, M22: y.Y, M23: z.Y, M24: translation.Y,
		M31: x.Z, M32: y.Z, M33: z.Z, M34: translation.Z,
		M41: 0, M42: 0, M43: 0, M44: 1,
	}
}

// TransformPoint applies m to the point p.
func TransformPoint(m dprec.Mat4, p dprec.Vec3) dprec.Vec3 {
	return dprec.Vec3{
		X: m.M11*p.X + m.M12*p.Y + m.M13*p.Z + m.M14,
		Y: m.M21*p.X + m.M22*p.Y + m.M23*p.Z + m.M24,
		Z: m.M31*p.X + m.M32*p.Y + m.M33*p.Z + m.M34,
	}
}

// TransformNormal applies the rotation and scale part of m to the
// direction n and renormalizes it. The inverse transpose is needed for
// non-uniform scale.
func TransformNormal(m dprec.Mat4, n dprec.Vec3) dprec.Vec3 {
	// cofactor matrix of the upper 3x3 equals det * inverse transpose
	c11 := m.M22*m.M33 - m.M23*m.M32
	c12 := m.M23*m.M31 - m.M21*m.M33
	c13 := m.M21*m.M32 - m.M22*m.M31
	c21 := m.M13*m.M32 - m.M12*m.M33
	c22 := m.M11*m.M33 - m.M13*m.M31
	c23 := m.M12*m.M31 - m.M11*m.M32
	c31 := m.M12*m.M23 - m.M13*m.M22
	c32 := m.M13*m.M21 - m.M11*m.M23
	c33 := m.M11*m.M22 - m.M12*m.M21
	result := dprec.Vec3{
		X: c11*n.X + c12*n.Y + c13*n.Z,
		Y: c21*n.X + c22*n.Y + c23*n.Z,
		Z: c31*n.X + c32*n.Y + c33*n.Z,
	}
	det := m.M11*c11 + m.M12*c12 + m.M13*c13
	if det < 0 {
		result = dprec.InverseVec3(result)
	}
	if result.Length() == 0 {
		return result
	}
	return dprec.UnitVec3(result)
}

// LookAt returns the rotation of an object at eye facing target, with its
// local -Z axis pointing at the target and +Y kept as close to world up as
// possible. Cameras and directional lights use this convention.
func LookAt(eye, target dprec.Vec3) dprec.Quat {
	offset := dprec.Vec3Diff(eye, target)
	if offset.Length() == 0 {
		return dprec.IdentityQuat()
	}
	back := dprec.UnitVec3(offset)
	right := dprec.Vec3Cross(dprec.BasisYVec3(), back)
	if right.Length() < 1e-12 {
		right = dprec.BasisXVec3()
	}
	right = dprec.UnitVec3(right)
	up := dprec.Vec3Cross(back, right)
	return basisQuat(right, up, back)
}

// basisQuat converts the orthonormal basis vectors x, y and z into a
// rotation.
func basisQuat(x, y, z dprec.Vec3) dprec.Quat {
	m11, m12, m13 := x.X, y.X, z.X
	m21, m22, m23 := x.Y, y.Y, z.Y
	m31, m32, m33 := x.Z, y.Z, z.Z

	trace := m11 + m22 + m33
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		return dprec.Quat{W: 0.25 / s, X: (m32 - m23) * s, Y: (m13 - m31) * s, Z: (m21 - m12) * s}
	case m11 > m22 && m11 > m33:
		s := 2 * math.Sqrt(1+m11-m22-m33)
		return dprec.Quat{W: (m32 - m23) / s, X: 0.25 * s, Y: (m12 + m21) / s, Z: (m13 + m31) / s}
	case m22 > m33:
		s := 2 * math.Sqrt(1+m22-m11-m33)
		return dprec.Quat{W: (m13 - m31) / s, X: (m12 + m21) / s, Y: 0.25 * s, Z: (m23 + m32) / s}
	default:
		s := 2 * math.Sqrt(1+m33-m11-m22)
		return dprec.Quat{W: (m21 - m12) / s, X: (m13 + m31) / s, Y: (m23 + m32) / s, Z: 0.25 * s}
	}
}
