// Package scene holds the transform hierarchy shared by rendering and physics.
package scene

import "github.com/go-gl/mathgl/mgl32"

// Node is a rigid transform with an optional parent. Rotations are unit
// quaternions; there is no scale.
type Node struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Parent   *Node
}

// NewNode returns a node at the origin with identity rotation.
func NewNode(name string, parent *Node) *Node {
	return &Node{Name: name, Rotation: mgl32.QuatIdent(), Parent: parent}
}

// YawPitchRoll builds the rotation Ry(yaw) * Rx(pitch) * Rz(roll).
func YawPitchRoll(yaw, pitch, roll float32) mgl32.Quat {
	return mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0}).
		Mul(mgl32.QuatRotate(pitch, mgl32.Vec3{1, 0, 0})).
		Mul(mgl32.QuatRotate(roll, mgl32.Vec3{0, 0, 1}))
}

// AddRotation rotates the node by x, y, z radians about its own axes,
// post-multiplying the current rotation.
func (n *Node) AddRotation(x, y, z float32) {
	n.Rotation = n.Rotation.Mul(YawPitchRoll(y, x, z)).Normalize()
}

// ResetRotation sets the rotation to identity.
func (n *Node) ResetRotation() {
	n.Rotation = mgl32.QuatIdent()
}

// Local returns the node's transform relative to its parent.
func (n *Node) Local() mgl32.Mat4 {
	return mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2]).Mul4(n.Rotation.Mat4())
}

// World returns the node's transform in world space.
func (n *Node) World() mgl32.Mat4 {
	if n.Parent == nil {
		return n.Local()
	}
	return n.Parent.World().Mul4(n.Local())
}

// WorldPose returns the world-space position and rotation.
func (n *Node) WorldPose() (mgl32.Vec3, mgl32.Quat) {
	if n.Parent == nil {
		return n.Position, n.Rotation
	}
	pp, pr := n.Parent.WorldPose()
	return pp.Add(pr.Rotate(n.Position)), pr.Mul(n.Rotation).Normalize()
}

// SetWorldPose moves the node so that its world pose is pos, rot.
func (n *Node) SetWorldPose(pos mgl32.Vec3, rot mgl32.Quat) {
	if n.Parent == nil {
		n.Position, n.Rotation = pos, rot
		return
	}
	pp, pr := n.Parent.WorldPose()
	inv := pr.Inverse()
	n.Position = inv.Rotate(pos.Sub(pp))
	n.Rotation = inv.Mul(rot).Normalize()
}

// ToLocal converts a world-space point into this node's space.
func (n *Node) ToLocal(p mgl32.Vec3) mgl32.Vec3 {
	pos, rot := n.WorldPose()
	return rot.Inverse().Rotate(p.Sub(pos))
}
