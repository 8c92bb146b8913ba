package mol

// bitSet marks atom slots during a trace. It grows on add; reads past the
// end see unset bits.
type bitSet struct {
	words []uint64
}

func newBitSet(slots uint32) *bitSet {
	return &bitSet{words: make([]uint64, slots/64+1)}
}

func (bs *bitSet) add(slot uint32) {
	w := slot / 64
	if w >= uint32(len(bs.words)) {
		bs.words = append(bs.words, make([]uint64, w+1-uint32(len(bs.words)))...)
	}
	bs.words[w] |= 1 << (slot % 64)
}

func (bs *bitSet) remove(slot uint32) {
	if w := slot / 64; w < uint32(len(bs.words)) {
		bs.words[w] &^= 1 << (slot % 64)
	}
}

func (bs *bitSet) has(slot uint32) bool {
	w := slot / 64
	return w < uint32(len(bs.words)) && bs.words[w]&(1<<(slot%64)) != 0
}
