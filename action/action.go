// Package action holds the reversible structural edits of a sequence.
package action

import "go-measure/debug"

// Action is an edit that can be undone.
type Action interface {
	Name() string
	Perform()
	Undo()
}

// History keeps performed actions for undo and redo.
type History struct {
	done   []Action
	undone []Action
}

// Do performs a and records it. The redo list is cleared.
func (h *History) Do(a Action) {
	a.Perform()
	h.done = append(h.done, a)
	h.undone = h.undone[:0]
	debug.Log("action", "did %s (%d in history)", a.Name(), len(h.done))
}

// Undo reverts the last performed action. It reports false when there is nothing to undo.
func (h *History) Undo() (Action, bool) {
	if len(h.done) == 0 {
		return nil, false
	}
	a := h.done[len(h.done)-1]
	h.done = h.done[:len(h.done)-1]
	a.Undo()
	h.undone = append(h.undone, a)
	debug.Log("action", "undid %s", a.Name())
	return a, true
}

// Redo performs the last undone action again.
func (h *History) Redo() (Action, bool) {
	if len(h.undone) == 0 {
		return nil, false
	}
	a := h.undone[len(h.undone)-1]
	h.undone = h.undone[:len(h.undone)-1]
	a.Perform()
	h.done = append(h.done, a)
	debug.Log("action", "redid %s", a.Name())
	return a, true
}

func (h *History) CanUndo() bool { return len(h.done) > 0 }
func (h *History) CanRedo() bool { return len(h.undone) > 0 }

// Clear forgets every action, e.g. after loading another sequence.
func (h *History) Clear() {
	h.done = nil
	h.undone = nil
}
