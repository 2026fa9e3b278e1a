package control

// KeyState tracks which actions are held.
type KeyState struct {
	held [actionCount]bool
}

// KeyDown marks a held and reports whether this is a fresh press.
func (k *KeyState) KeyDown(a Action) bool {
	if a <= ActionNone || a >= actionCount {
		return false
	}
	fresh := !k.held[a]
	k.held[a] = true
	return fresh
}

// KeyUp releases a.
func (k *KeyState) KeyUp(a Action) {
	if a <= ActionNone || a >= actionCount {
		return
	}
	k.held[a] = false
}

// Held reports whether a is held.
func (k *KeyState) Held(a Action) bool {
	if a <= ActionNone || a >= actionCount {
		return false
	}
	return k.held[a]
}

// Reset releases everything.
func (k *KeyState) Reset() {
	k.held = [actionCount]bool{}
}
