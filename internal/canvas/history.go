package canvas

import (
	"fmt"
)

// DefaultMaxHistory is the number of snapshots kept when no capacity is given.
const DefaultMaxHistory = 20

// Snapshot is an immutable copy of a surface's pixels.
type Snapshot struct {
	width  int
	height int
	pix    []byte
}

// HistoryState describes the cursor and the undo/redo affordances.
type HistoryState struct {
	CurrentStep int  `json:"current_step"`
	Len         int  `json:"history_len"`
	CanUndo     bool `json:"can_undo"`
	CanRedo     bool `json:"can_redo"`
}

// History provides linear undo/redo over full-frame snapshots of a Surface.
// It is not safe for concurrent use; it lives on its session's event thread.
type History struct {
	surface     Surface
	max         int
	stack       []Snapshot
	currentStep int
	onChange    func(HistoryState)
}

// NewHistory returns an empty history (currentStep -1) over surface.
// Call Reset to capture the baseline snapshot.
func NewHistory(surface Surface, max int) *History {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &History{
		surface:     surface,
		max:         max,
		currentStep: -1,
	}
}

// OnChange registers fn to receive the affordance state after every change.
func (h *History) OnChange(fn func(HistoryState)) {
	h.onChange = fn
}

// SaveState captures the surface as a new snapshot. Redo states past the
// cursor are discarded first. When capacity is exceeded the oldest snapshot
// is evicted and the cursor stays on the snapshot just taken.
// A failed pixel read leaves the history untouched.
func (h *History) SaveState() error {
	pix, err := h.surface.ReadPixels()
	if err != nil {
		return fmt.Errorf("capture snapshot: %w", err)
	}
	snap := Snapshot{width: h.surface.Width(), height: h.surface.Height(), pix: pix}

	if h.currentStep < len(h.stack)-1 {
		h.stack = h.stack[:h.currentStep+1]
	}
	h.stack = append(h.stack, snap)
	h.currentStep++

	if len(h.stack) > h.max {
		// Shift instead of reslicing so evicted buffers can be collected.
		copy(h.stack, h.stack[1:])
		h.stack[len(h.stack)-1] = Snapshot{}
		h.stack = h.stack[:len(h.stack)-1]
		h.currentStep--
	}

	h.notify()
	return nil
}

// Undo restores the previous snapshot. It is a no-op at the baseline.
func (h *History) Undo() (bool, error) {
	if h.currentStep <= 0 {
		return false, nil
	}
	if err := h.restore(h.currentStep - 1); err != nil {
		return false, err
	}
	h.currentStep--
	h.notify()
	return true, nil
}

// Redo restores the next snapshot. It is a no-op at the newest snapshot.
func (h *History) Redo() (bool, error) {
	if h.currentStep >= len(h.stack)-1 {
		return false, nil
	}
	if err := h.restore(h.currentStep + 1); err != nil {
		return false, err
	}
	h.currentStep++
	h.notify()
	return true, nil
}

// Reset drops every snapshot and captures the current surface as the new
// baseline. Callers run it after each buffer reallocation.
func (h *History) Reset() error {
	h.stack = nil
	h.currentStep = -1
	return h.SaveState()
}

func (h *History) restore(step int) error {
	snap := h.stack[step]
	if snap.width != h.surface.Width() || snap.height != h.surface.Height() {
		return fmt.Errorf("restore step %d (%dx%d) onto %dx%d: %w",
			step, snap.width, snap.height, h.surface.Width(), h.surface.Height(), ErrSnapshotSize)
	}
	// The snapshot must never alias the live buffer.
	pix := make([]byte, len(snap.pix))
	copy(pix, snap.pix)
	return h.surface.WritePixels(pix)
}

// CurrentStep is the index of the snapshot on screen, -1 before the first save.
func (h *History) CurrentStep() int { return h.currentStep }

// Len is the number of snapshots kept.
func (h *History) Len() int { return len(h.stack) }

// CanUndo reports whether an older snapshot exists.
func (h *History) CanUndo() bool { return h.currentStep > 0 }

// CanRedo reports whether an undone snapshot can be restored.
func (h *History) CanRedo() bool { return h.currentStep < len(h.stack)-1 }

// State returns the cursor and availability flags in one value.
func (h *History) State() HistoryState {
	return HistoryState{
		CurrentStep: h.currentStep,
		Len:         len(h.stack),
		CanUndo:     h.CanUndo(),
		CanRedo:     h.CanRedo(),
	}
}

func (h *History) notify() {
	if h.onChange != nil {
		h.onChange(h.State())
	}
}
