package mol

import "github.com/tidwall/btree"

// shiftWindow covers a run of residues whose numbers increase by exactly one
// without insertion codes. Residue number start+k sits at list index
// index+k for k < count. A residue with an insertion code always gets a
// window of its own.
type shiftWindow struct {
	start ResNum
	index int
	count int
}

func shiftWindowLess(a, b shiftWindow) bool { return a.start.Less(b.start) }

// shiftTable maps residue numbers of an in-sequence chain to list positions
// in O(log windows). Appends extend it in place; anything that moves
// existing residues marks it stale and it is rebuilt on the next lookup.
type shiftTable struct {
	tree  *btree.BTreeG[shiftWindow]
	last  shiftWindow
	stale bool
}

func newShiftTable() *shiftTable {
	return &shiftTable{tree: btree.NewBTreeG[shiftWindow](shiftWindowLess)}
}

func (t *shiftTable) clear() {
	t.tree.Clear()
	t.last = shiftWindow{}
	t.stale = false
}

// push records a residue appended at list index i.
func (t *shiftTable) push(num ResNum, i int) {
	if t.stale {
		return
	}
	if t.last.count > 0 && num.InsCode == 0 && t.last.start.InsCode == 0 &&
		num.Num == t.last.start.Num+t.last.count && i == t.last.index+t.last.count {
		t.last.count++
		t.tree.Set(t.last)
		return
	}
	t.last = shiftWindow{start: num, index: i, count: 1}
	t.tree.Set(t.last)
}

func (t *shiftTable) rebuild(e *Entity, residues []uint32) {
	t.clear()
	for i, rs := range residues {
		t.push(e.residues[rs].num, i)
	}
}

// lookup returns the list index of num.
func (t *shiftTable) lookup(num ResNum) (int, bool) {
	var (
		found shiftWindow
		ok    bool
	)
	t.tree.Descend(shiftWindow{start: num}, func(w shiftWindow) bool {
		found, ok = w, true
		return false
	})
	if !ok {
		return 0, false
	}
	if found.start == num {
		return found.index, true
	}
	if num.InsCode != 0 || found.start.InsCode != 0 {
		return 0, false
	}
	if off := num.Num - found.start.Num; off < found.count {
		return found.index + off, true
	}
	return 0, false
}

// windows returns the number of windows, for tests.
func (t *shiftTable) windows() int { return t.tree.Len() }
