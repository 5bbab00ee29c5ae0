package services

// GalleryHistory is an undo/redo stack of full gallery snapshots,
// independent of the save transaction. Every add/remove pushes a new
// snapshot; undo and redo move a cursor over the stack and only affect
// the in-memory draft, never the store.
type GalleryHistory struct {
	snapshots [][]string
	cursor    int
}

// NewGalleryHistory starts a history at the given initial gallery
func NewGalleryHistory(initial []string) *GalleryHistory {
	return &GalleryHistory{
		snapshots: [][]string{cloneGallery(initial)},
		cursor:    0,
	}
}

// Push records a new gallery state. Any redo tail beyond the cursor is
// discarded.
func (h *GalleryHistory) Push(gallery []string) {
	h.snapshots = append(h.snapshots[:h.cursor+1], cloneGallery(gallery))
	h.cursor = len(h.snapshots) - 1
}

// Undo moves one snapshot back and returns the visible gallery.
// Undoing past the first snapshot is a no-op.
func (h *GalleryHistory) Undo() []string {
	if h.cursor > 0 {
		h.cursor--
	}
	return h.Current()
}

// Redo moves one snapshot forward and returns the visible gallery.
// Redoing past the last snapshot is a no-op.
func (h *GalleryHistory) Redo() []string {
	if h.cursor < len(h.snapshots)-1 {
		h.cursor++
	}
	return h.Current()
}

// Current returns the gallery at the cursor
func (h *GalleryHistory) Current() []string {
	return cloneGallery(h.snapshots[h.cursor])
}

// CanUndo reports whether an undo would change state
func (h *GalleryHistory) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a redo would change state
func (h *GalleryHistory) CanRedo() bool {
	return h.cursor < len(h.snapshots)-1
}

func cloneGallery(gallery []string) []string {
	cloned := make([]string, len(gallery))
	copy(cloned, gallery)
	return cloned
}
