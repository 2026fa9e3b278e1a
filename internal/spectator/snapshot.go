// Package spectator serves a read-only view of a running maze over HTTP and
// WebSocket.
package spectator

// Snapshot is the simulation state sent to spectators.
type Snapshot struct {
	Tick      uint64     `json:"tick"`
	Ball      BallState  `json:"ball"`
	Root      [4]float32 `json:"root"`
	Container [4]float32 `json:"container"`
	Events    []Event    `json:"events,omitempty"`
}

// BallState is the ball pose. Rotation is a quaternion as x, y, z, w.
type BallState struct {
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"`
	Velocity [3]float32 `json:"velocity"`
	Sleeping bool       `json:"sleeping"`
}

// Event is a gameplay event, currently only hole drops.
type Event struct {
	Type     string  `json:"type"`
	Tick     uint64  `json:"tick"`
	Hole     string  `json:"hole,omitempty"`
	Distance float32 `json:"distance"`
}

// Message types.
const (
	MessageHello    = "hello"
	MessageSnapshot = "snapshot"
)

// Envelope wraps every WebSocket message.
type Envelope struct {
	Type     string    `json:"type"`
	ClientID string    `json:"client_id,omitempty"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}
