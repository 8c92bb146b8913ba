package mol

// dirtyState records which derived data of an entity is stale. It is the
// only place that decides whether a coordinate system needs a resync.
// A stale trace always implies stale internal coordinates.
type dirtyState struct {
	ics         bool // bond lengths/angles lag behind positions
	xcs         bool // positions lag behind internal coordinates
	trace       bool // bond directionality must be recomputed
	organizer   bool // spatial index must be rebuilt
	icsDisabled bool // internal coordinates not requested yet
}

func newDirtyState() dirtyState {
	return dirtyState{icsDisabled: true}
}

// markXCSEdited is called after positions changed.
func (d *dirtyState) markXCSEdited() {
	d.organizer = true
	if !d.icsDisabled {
		d.ics = true
	}
}

// markICSEdited is called after bond lengths or angles changed.
func (d *dirtyState) markICSEdited() {
	d.xcs = true
	d.organizer = true
}

// markTopologyChanged is called after bonds were added or removed.
func (d *dirtyState) markTopologyChanged() {
	d.trace = true
	if !d.icsDisabled {
		d.ics = true
	}
}

func (d *dirtyState) enableICS() {
	if d.icsDisabled {
		d.icsDisabled = false
		d.trace = true
		d.ics = true
	}
}

func (d *dirtyState) traced()    { d.trace = false }
func (d *dirtyState) icsSynced() { d.ics = false }
func (d *dirtyState) organized() { d.organizer = false }

func (d *dirtyState) xcsSynced() {
	d.xcs = false
	d.organizer = true
}

func (d *dirtyState) needsICS() bool {
	return !d.icsDisabled && (d.ics || d.trace)
}

// DirtyState is a read-only snapshot of an entity's stale flags.
type DirtyState struct {
	ICS         bool
	XCS         bool
	Trace       bool
	Organizer   bool
	ICSDisabled bool
}

// Dirty returns a snapshot of the entity's stale flags.
func (e *Entity) Dirty() DirtyState {
	return DirtyState{
		ICS:         e.dirty.ics || (e.dirty.trace && !e.dirty.icsDisabled),
		XCS:         e.dirty.xcs,
		Trace:       e.dirty.trace,
		Organizer:   e.dirty.organizer,
		ICSDisabled: e.dirty.icsDisabled,
	}
}
