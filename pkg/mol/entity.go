package mol

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/sanonone/molgraph/pkg/geom"
	"github.com/sanonone/molgraph/pkg/mol/spatial"
)

// Options configures a new Entity.
type Options struct {
	// CellSize is the edge length of the spatial index cells, in Å.
	// Zero selects spatial.DefaultCellSize.
	CellSize float64

	// Logger receives trace diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used by NewEntity.
func DefaultOptions() Options {
	return Options{CellSize: spatial.DefaultCellSize}
}

// Observer is notified about lifecycle events of an entity.
type Observer interface {
	// OnTopologyChange is called after chains, residues, atoms or bonds were
	// added or removed.
	OnTopologyChange(e *Entity)

	// OnDestroy is called once when the entity is destroyed.
	OnDestroy(e *Entity)
}

// Entity is the root of a molecular graph. It owns every chain, residue,
// atom, bond and torsion reachable from it and hands out handles to them.
//
// An Entity is not safe for concurrent use. Even read accessors may bring a
// stale coordinate system or spatial index up to date, so callers sharing an
// entity between goroutines must serialize all access.
type Entity struct {
	id    uuid.UUID
	name  string
	log   *slog.Logger
	props *Props

	atoms    []atomNode
	residues []residueNode
	chains   []chainNode
	bonds    []bondNode
	torsions []torsionNode

	freeAtoms    []uint32
	freeResidues []uint32
	freeChains   []uint32
	freeBonds    []uint32
	freeTorsions []uint32

	chainList   []uint32
	chainByName map[string]uint32
	indexToSlot map[uint32]uint32
	nextIndex   uint32

	atomCount    int
	residueCount int
	bondCount    int
	torsionCount int

	dirty      dirtyState
	xcsEditors int
	icsEditors int
	transform  geom.Transform
	fragments  []uint32
	organizer  *spatial.Grid[uint32]

	observers []Observer
	destroyed bool
}

// NewEntity creates an empty entity with default options.
func NewEntity(name string) *Entity {
	return NewEntityWithOptions(name, DefaultOptions())
}

// NewEntityWithOptions creates an empty entity.
func NewEntityWithOptions(name string, opts Options) *Entity {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Entity{
		id:          uuid.New(),
		name:        name,
		log:         logger,
		chainByName: make(map[string]uint32),
		indexToSlot: make(map[uint32]uint32),
		dirty:       newDirtyState(),
		transform:   geom.IdentityTransform(),
		organizer:   spatial.NewGrid[uint32](opts.CellSize),
	}
}

// ID returns the entity's unique identifier.
func (e *Entity) ID() uuid.UUID { return e.id }

// Name returns the entity name.
func (e *Entity) Name() string { return e.name }

// SetName renames the entity.
func (e *Entity) SetName(name string) { e.name = name }

// Props returns the entity's generic properties.
func (e *Entity) Props() *Props {
	if e.props == nil {
		e.props = &Props{}
	}
	return e.props
}

// Logger returns the logger the entity reports diagnostics to.
func (e *Entity) Logger() *slog.Logger { return e.log }

// AddObserver registers o for lifecycle notifications. Adding the same
// observer twice has no effect.
func (e *Entity) AddObserver(o Observer) {
	for _, existing := range e.observers {
		if existing == o {
			return
		}
	}
	e.observers = append(e.observers, o)
}

// RemoveObserver unregisters o.
func (e *Entity) RemoveObserver(o Observer) {
	for i, existing := range e.observers {
		if existing == o {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

func (e *Entity) notifyTopology() {
	for _, o := range e.observers {
		o.OnTopologyChange(e)
	}
}

// Destroy notifies observers and drops all content. Handles into the entity
// become invalid. Calling Destroy more than once is a no-op.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	observers := e.observers
	e.observers = nil
	for _, o := range observers {
		o.OnDestroy(e)
	}
	for _, slot := range append([]uint32(nil), e.chainList...) {
		e.deleteChain(slot)
	}
}

// IsDestroyed reports whether Destroy was called.
func (e *Entity) IsDestroyed() bool { return e.destroyed }

// AtomCount returns the number of atoms.
func (e *Entity) AtomCount() int { return e.atomCount }

// ResidueCount returns the number of residues.
func (e *Entity) ResidueCount() int { return e.residueCount }

// ChainCount returns the number of chains.
func (e *Entity) ChainCount() int { return len(e.chainList) }

// BondCount returns the number of bonds.
func (e *Entity) BondCount() int { return e.bondCount }

// TorsionCount returns the number of torsions.
func (e *Entity) TorsionCount() int { return e.torsionCount }

// Chains returns all chains in insertion order.
func (e *Entity) Chains() []ChainHandle {
	out := make([]ChainHandle, len(e.chainList))
	for i, slot := range e.chainList {
		out[i] = e.chainHandle(slot)
	}
	return out
}

// Residues returns all residues, chain by chain.
func (e *Entity) Residues() []ResidueHandle {
	out := make([]ResidueHandle, 0, e.residueCount)
	for _, cs := range e.chainList {
		for _, rs := range e.chains[cs].residues {
			out = append(out, e.residueHandle(rs))
		}
	}
	return out
}

// Atoms returns all atoms in hierarchical order.
func (e *Entity) Atoms() []AtomHandle {
	out := make([]AtomHandle, 0, e.atomCount)
	e.forEachAtomSlot(func(slot uint32) {
		out = append(out, e.atomHandle(slot))
	})
	return out
}

// Bonds returns all bonds ordered by slot.
func (e *Entity) Bonds() []BondHandle {
	out := make([]BondHandle, 0, e.bondCount)
	for i := range e.bonds {
		if e.bonds[i].alive {
			out = append(out, e.bondHandle(uint32(i)))
		}
	}
	return out
}

// Torsions returns all torsions ordered by slot.
func (e *Entity) Torsions() []TorsionHandle {
	out := make([]TorsionHandle, 0, e.torsionCount)
	for i := range e.torsions {
		if e.torsions[i].alive {
			out = append(out, e.torsionHandle(uint32(i)))
		}
	}
	return out
}

// AtomByIndex returns the atom with the given stable index.
func (e *Entity) AtomByIndex(index uint32) (AtomHandle, bool) {
	slot, ok := e.indexToSlot[index]
	if !ok {
		return AtomHandle{}, false
	}
	return e.atomHandle(slot), true
}

func (e *Entity) forEachAtomSlot(fn func(slot uint32)) {
	for _, cs := range e.chainList {
		for _, rs := range e.chains[cs].residues {
			for _, as := range e.residues[rs].atoms {
				fn(as)
			}
		}
	}
}

// Arena bookkeeping. Every node type embeds slotHeader; a slot's generation
// is bumped when the node is freed so outstanding handles go stale.

type slotHeader struct {
	gen   uint32
	alive bool
}

func (h *slotHeader) hdr() *slotHeader { return h }

type arenaNode[T any] interface {
	*T
	hdr() *slotHeader
}

func allocSlot[T any, P arenaNode[T]](nodes *[]T, free *[]uint32, v T) uint32 {
	if n := len(*free); n > 0 {
		slot := (*free)[n-1]
		*free = (*free)[:n-1]
		gen := P(&(*nodes)[slot]).hdr().gen
		(*nodes)[slot] = v
		h := P(&(*nodes)[slot]).hdr()
		h.gen, h.alive = gen, true
		return slot
	}
	*nodes = append(*nodes, v)
	slot := uint32(len(*nodes) - 1)
	h := P(&(*nodes)[slot]).hdr()
	h.gen, h.alive = 1, true
	return slot
}

func freeSlot[T any, P arenaNode[T]](nodes *[]T, free *[]uint32, slot uint32) {
	var zero T
	gen := P(&(*nodes)[slot]).hdr().gen
	(*nodes)[slot] = zero
	h := P(&(*nodes)[slot]).hdr()
	h.gen, h.alive = gen+1, false
	*free = append(*free, slot)
}

func removeSlot(list []uint32, slot uint32) []uint32 {
	for i, s := range list {
		if s == slot {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
