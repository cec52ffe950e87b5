package budget

// History is the undo stack: one full document snapshot per applied
// command, popped last in first out. A positive limit keeps only the
// most recent snapshots.
type History struct {
	snapshots []Document
	limit     int
}

func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Push stores a deep copy of doc.
func (h *History) Push(doc Document) {
	h.snapshots = append(h.snapshots, doc.Clone())
	if h.limit > 0 && len(h.snapshots) > h.limit {
		drop := len(h.snapshots) - h.limit
		h.snapshots = append(h.snapshots[:0:0], h.snapshots[drop:]...)
	}
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (Document, bool) {
	if len(h.snapshots) == 0 {
		return Document{}, false
	}
	last := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return last, true
}

func (h *History) Len() int {
	return len(h.snapshots)
}

func (h *History) CanUndo() bool {
	return len(h.snapshots) > 0
}
