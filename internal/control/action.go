// Package control maps key events to maze tilts and ball pushes.
package control

import (
	"fmt"
	"strings"
)

// Action is a logical control the player can trigger.
type Action int

const (
	ActionNone Action = iota
	TiltXPos
	TiltXNeg
	TiltZPos
	TiltZNeg
	PushForward
	PushLeft
	PushBack
	PushRight
	Jump
	ResetTilt
	Respawn
	actionCount
)

var actionNames = [actionCount]string{
	ActionNone:  "none",
	TiltXPos:    "tilt_x_pos",
	TiltXNeg:    "tilt_x_neg",
	TiltZPos:    "tilt_z_pos",
	TiltZNeg:    "tilt_z_neg",
	PushForward: "push_forward",
	PushLeft:    "push_left",
	PushBack:    "push_back",
	PushRight:   "push_right",
	Jump:        "jump",
	ResetTilt:   "reset_tilt",
	Respawn:     "respawn",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction returns the action with the given config name.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a := TiltXPos; a < actionCount; a++ {
		if actionNames[a] == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", name)
}

// IsTilt reports whether a rotates one of the tilt nodes.
func (a Action) IsTilt() bool {
	return a >= TiltXPos && a <= TiltZNeg
}

// IsPush reports whether a applies a continuous force to the ball.
func (a Action) IsPush() bool {
	return a >= PushForward && a <= PushRight
}
