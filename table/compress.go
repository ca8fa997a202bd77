package table

import "sort"

// tag bits occupy the top 2 bits of the 32-bit packed action word.
// tagDeferred covers both Accept and ShiftOrReduce; which one a given cell
// actually holds is recorded in the side table, since ShiftOrReduce needs
// two payload values that do not fit alongside the tag in 32 bits.
const (
	tagError    uint32 = 0
	tagShift    uint32 = 1
	tagReduce   uint32 = 2
	tagDeferred uint32 = 3

	payloadBits = 30
	payloadMask = (1 << payloadBits) - 1
)

func packWord(tag uint32, payload int) uint32 {
	return (tag << payloadBits) | (uint32(payload) & payloadMask)
}

func unpackWord(w uint32) (tag uint32, payload int) {
	return w >> payloadBits, int(w & payloadMask)
}

// sideEntry holds the detail for a cell whose word tag is tagDeferred:
// either a plain Accept, or the two payloads of a ShiftOrReduce.
type sideEntry struct {
	isAccept   bool
	shiftState int
	rule       int
}

// rowDisplacement is one compressed 2-D sparse array in base/check/data
// form: an entry (s, x) is live iff check[base[s]+x] == s.
type rowDisplacement struct {
	Base  []int
	Check []int
	Data  []uint32
}

// get returns the packed word at (state, col) and whether that cell is live.
func (rd *rowDisplacement) get(state, col int) (uint32, bool) {
	if state < 0 || state >= len(rd.Base) {
		return 0, false
	}
	idx := rd.Base[state] + col
	if idx < 0 || idx >= len(rd.Check) {
		return 0, false
	}
	if rd.Check[idx] != state {
		return 0, false
	}
	return rd.Data[idx], true
}

// compressRows packs rows (state -> column -> word) via row-displacement,
// laying out the densest rows first so later, sparser rows can share the
// tail of the shared array. Packing is otherwise
// deterministic: ties in density break on ascending state ID.
func compressRows(rows map[int]map[int]uint32, numStates int) *rowDisplacement {
	rd := &rowDisplacement{Base: make([]int, numStates)}

	order := make([]int, numStates)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		si, sj := order[i], order[j]
		li, lj := len(rows[si]), len(rows[sj])
		if li != lj {
			return li > lj
		}
		return si < sj
	})

	for _, s := range order {
		row := rows[s]
		if len(row) == 0 {
			rd.Base[s] = 0
			continue
		}

		cols := make([]int, 0, len(row))
		for c := range row {
			cols = append(cols, c)
		}
		sort.Ints(cols)

		base := findBase(rd, cols)
		rd.Base[s] = base

		needed := base + cols[len(cols)-1] + 1
		rd.grow(needed)

		for _, c := range cols {
			idx := base + c
			rd.Check[idx] = s
			rd.Data[idx] = row[c]
		}
	}

	return rd
}

func (rd *rowDisplacement) grow(n int) {
	for len(rd.Check) < n {
		rd.Check = append(rd.Check, -1)
		rd.Data = append(rd.Data, 0)
	}
}

// findBase returns the smallest non-negative base offset such that every
// column in cols lands on a currently-unoccupied slot of rd's shared array.
func findBase(rd *rowDisplacement, cols []int) int {
	for base := 0; ; base++ {
		ok := true
		for _, c := range cols {
			idx := base + c
			if idx < len(rd.Check) && rd.Check[idx] != -1 {
				ok = false
				break
			}
		}
		if ok {
			return base
		}
	}
}

// compressActions packs a raw per-state action map into row-displacement
// form plus a side table for the tagDeferred (Accept / ShiftOrReduce) cells.
func compressActions(raw *Raw) (*rowDisplacement, map[[2]int]sideEntry) {
	side := map[[2]int]sideEntry{}
	rows := map[int]map[int]uint32{}

	for state := 0; state < raw.NumStates; state++ {
		row := map[int]uint32{}
		for term, action := range raw.Actions[state] {
			col := int(term)
			switch action.Type {
			case Error:
				continue
			case Shift:
				row[col] = packWord(tagShift, action.ShiftState)
			case Reduce:
				row[col] = packWord(tagReduce, int(action.Rule))
			case Accept:
				row[col] = packWord(tagDeferred, 0)
				side[[2]int{state, col}] = sideEntry{isAccept: true}
			case ShiftOrReduce:
				row[col] = packWord(tagDeferred, 0)
				side[[2]int{state, col}] = sideEntry{shiftState: action.ShiftState, rule: int(action.Rule)}
			}
		}
		rows[state] = row
	}

	return compressRows(rows, raw.NumStates), side
}

// compressGotos packs a raw per-state goto map into row-displacement form.
// Liveness alone distinguishes "no goto" from "goto to state 0", so the
// packed word is simply the target state.
func compressGotos(raw *Raw) *rowDisplacement {
	rows := map[int]map[int]uint32{}
	for state := 0; state < raw.NumStates; state++ {
		row := map[int]uint32{}
		for nt, target := range raw.Gotos[state] {
			row[int(nt)] = uint32(target)
		}
		rows[state] = row
	}
	return compressRows(rows, raw.NumStates)
}
