// Package persist is an optional binary codec for a compiled
// table.CompiledTable: a hand-rolled MarshalBinary/UnmarshalBinary pair
// (fixed-width 8-byte varint ints, length-prefixed slices, rune-counted
// strings) wrapped by
// github.com/dekarrin/rezi.EncBinary/DecBinary.
//
// The runtime itself imposes no file format; Save/Load exist so a caller who
// wants to ship a precompiled table alongside generated code (or cache one
// across process restarts) doesn't have to invent this wiring itself.
// Nothing in the grammar/automaton/table/runtime pipeline depends on this
// package.
package persist

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/dekarrin/gazelle/table"
	"github.com/dekarrin/rezi"
)

// Save encodes ct's snapshot (the six row-displacement arrays, the rule
// table, the state-symbol table, and the symbol map) into a self-contained
// byte slice.
func Save(ct *table.CompiledTable) []byte {
	codec := snapshotCodec{snap: ct.Snapshot()}
	return rezi.EncBinary(codec)
}

// Load decodes a byte slice produced by Save back into a CompiledTable
// capable of driving a runtime.Parser. The reloaded table is runtime-only: it
// cannot be fed back into table.Build, since rule RHS symbols and terminal
// precedence are not part of the persisted layout.
func Load(data []byte) (*table.CompiledTable, error) {
	var codec snapshotCodec
	if _, err := rezi.DecBinary(data, &codec); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	return table.FromSnapshot(codec.snap), nil
}

// snapshotCodec adapts table.RawSnapshot to encoding.BinaryMarshaler /
// encoding.BinaryUnmarshaler, since methods cannot be declared on a type
// defined in another package.
type snapshotCodec struct {
	snap table.RawSnapshot
}

func (c snapshotCodec) MarshalBinary() ([]byte, error) {
	var data []byte
	s := c.snap

	data = append(data, encInt(s.Mode)...)
	data = append(data, encInt(s.NumStates)...)
	data = append(data, encInt(s.NumTerminals)...)

	data = append(data, encIntSlice(s.ActionBase)...)
	data = append(data, encIntSlice(s.ActionCheck)...)
	data = append(data, encUint32Slice(s.ActionData)...)
	data = append(data, encSideCells(s.ActionSide)...)

	data = append(data, encIntSlice(s.GotoBase)...)
	data = append(data, encIntSlice(s.GotoCheck)...)
	data = append(data, encUint32Slice(s.GotoData)...)

	data = append(data, encIntSlice(s.StateSymbol)...)
	data = append(data, encBoolSlice(s.HasStateSymbol)...)

	data = append(data, encRules(s.Rules)...)
	data = append(data, encSymbols(s.Symbols)...)
	data = append(data, encConflicts(s.Conflicts)...)

	data = append(data, s.Fingerprint[:]...)

	return data, nil
}

func (c *snapshotCodec) UnmarshalBinary(data []byte) error {
	var s table.RawSnapshot
	var err error

	if s.Mode, data, err = decInt(data); err != nil {
		return err
	}
	if s.NumStates, data, err = decInt(data); err != nil {
		return err
	}
	if s.NumTerminals, data, err = decInt(data); err != nil {
		return err
	}

	if s.ActionBase, data, err = decIntSlice(data); err != nil {
		return err
	}
	if s.ActionCheck, data, err = decIntSlice(data); err != nil {
		return err
	}
	if s.ActionData, data, err = decUint32Slice(data); err != nil {
		return err
	}
	if s.ActionSide, data, err = decSideCells(data); err != nil {
		return err
	}

	if s.GotoBase, data, err = decIntSlice(data); err != nil {
		return err
	}
	if s.GotoCheck, data, err = decIntSlice(data); err != nil {
		return err
	}
	if s.GotoData, data, err = decUint32Slice(data); err != nil {
		return err
	}

	if s.StateSymbol, data, err = decIntSlice(data); err != nil {
		return err
	}
	if s.HasStateSymbol, data, err = decBoolSlice(data); err != nil {
		return err
	}

	if s.Rules, data, err = decRules(data); err != nil {
		return err
	}
	if s.Symbols, data, err = decSymbols(data); err != nil {
		return err
	}
	if s.Conflicts, data, err = decConflicts(data); err != nil {
		return err
	}

	if len(data) < 16 {
		return fmt.Errorf("persist: truncated fingerprint")
	}
	copy(s.Fingerprint[:], data[:16])

	c.snap = s
	return nil
}

// --- primitive length-prefixed-varint helpers ---

func encInt(i int) []byte {
	enc := make([]byte, 0, 8)
	enc = binary.AppendVarint(enc, int64(i))
	for len(enc) < 8 {
		enc = append(enc, 0)
	}
	return enc
}

func decInt(data []byte) (int, []byte, error) {
	if len(data) < 8 {
		return 0, nil, fmt.Errorf("persist: unexpected end of data reading int")
	}
	val, n := binary.Varint(data[:8])
	if n <= 0 {
		return 0, nil, fmt.Errorf("persist: malformed varint")
	}
	return int(val), data[8:], nil
}

func encBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func decBool(data []byte) (bool, []byte, error) {
	if len(data) < 1 {
		return false, nil, fmt.Errorf("persist: unexpected end of data reading bool")
	}
	return data[0] != 0, data[1:], nil
}

func encString(str string) []byte {
	body := make([]byte, 0, len(str))
	count := 0
	for _, r := range str {
		buf := make([]byte, utf8.UTFMax)
		n := utf8.EncodeRune(buf, r)
		body = append(body, buf[:n]...)
		count++
	}
	return append(encInt(count), body...)
}

func decString(data []byte) (string, []byte, error) {
	count, rest, err := decInt(data)
	if err != nil {
		return "", nil, fmt.Errorf("persist: string rune count: %w", err)
	}
	var runes []rune
	for i := 0; i < count; i++ {
		r, n := utf8.DecodeRune(rest)
		if r == utf8.RuneError && n <= 1 {
			return "", nil, fmt.Errorf("persist: invalid rune in string")
		}
		runes = append(runes, r)
		rest = rest[n:]
	}
	return string(runes), rest, nil
}

func encIntSlice(s []int) []byte {
	out := encInt(len(s))
	for _, v := range s {
		out = append(out, encInt(v)...)
	}
	return out
}

func decIntSlice(data []byte) ([]int, []byte, error) {
	n, rest, err := decInt(data)
	if err != nil {
		return nil, nil, err
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		if out[i], rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
	}
	return out, rest, nil
}

func encUint32Slice(s []uint32) []byte {
	out := encInt(len(s))
	for _, v := range s {
		out = append(out, encInt(int(v))...)
	}
	return out
}

func decUint32Slice(data []byte) ([]uint32, []byte, error) {
	n, rest, err := decInt(data)
	if err != nil {
		return nil, nil, err
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		var v int
		if v, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		out[i] = uint32(v)
	}
	return out, rest, nil
}

func encBoolSlice(s []bool) []byte {
	out := encInt(len(s))
	for _, v := range s {
		out = append(out, encBool(v)...)
	}
	return out
}

func decBoolSlice(data []byte) ([]bool, []byte, error) {
	n, rest, err := decInt(data)
	if err != nil {
		return nil, nil, err
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		if out[i], rest, err = decBool(rest); err != nil {
			return nil, nil, err
		}
	}
	return out, rest, nil
}

func encSideCells(cells []table.SideCellSnapshot) []byte {
	out := encInt(len(cells))
	for _, c := range cells {
		out = append(out, encInt(c.State)...)
		out = append(out, encInt(c.Terminal)...)
		out = append(out, encBool(c.IsAccept)...)
		out = append(out, encInt(c.ShiftState)...)
		out = append(out, encInt(c.Rule)...)
	}
	return out
}

func decSideCells(data []byte) ([]table.SideCellSnapshot, []byte, error) {
	n, rest, err := decInt(data)
	if err != nil {
		return nil, nil, err
	}
	out := make([]table.SideCellSnapshot, n)
	for i := range out {
		if out[i].State, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].Terminal, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].IsAccept, rest, err = decBool(rest); err != nil {
			return nil, nil, err
		}
		if out[i].ShiftState, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].Rule, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
	}
	return out, rest, nil
}

func encRules(rules []table.RuleSnapshot) []byte {
	out := encInt(len(rules))
	for _, r := range rules {
		out = append(out, encInt(r.LHS)...)
		out = append(out, encInt(r.RHSLen)...)
		out = append(out, encString(r.Action)...)
	}
	return out
}

func decRules(data []byte) ([]table.RuleSnapshot, []byte, error) {
	n, rest, err := decInt(data)
	if err != nil {
		return nil, nil, err
	}
	out := make([]table.RuleSnapshot, n)
	for i := range out {
		if out[i].LHS, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].RHSLen, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].Action, rest, err = decString(rest); err != nil {
			return nil, nil, err
		}
	}
	return out, rest, nil
}

func encSymbols(syms []table.SymbolSnapshot) []byte {
	out := encInt(len(syms))
	for _, s := range syms {
		out = append(out, encString(s.Name)...)
		out = append(out, encBool(s.IsTerminal)...)
	}
	return out
}

func decSymbols(data []byte) ([]table.SymbolSnapshot, []byte, error) {
	n, rest, err := decInt(data)
	if err != nil {
		return nil, nil, err
	}
	out := make([]table.SymbolSnapshot, n)
	for i := range out {
		if out[i].Name, rest, err = decString(rest); err != nil {
			return nil, nil, err
		}
		if out[i].IsTerminal, rest, err = decBool(rest); err != nil {
			return nil, nil, err
		}
	}
	return out, rest, nil
}

func encConflicts(conflicts []table.ConflictSnapshot) []byte {
	out := encInt(len(conflicts))
	for _, c := range conflicts {
		out = append(out, encInt(c.Kind)...)
		out = append(out, encInt(c.State)...)
		out = append(out, encInt(c.Terminal)...)
		out = append(out, encInt(c.Rule)...)
		out = append(out, encInt(c.ShiftState)...)
		out = append(out, encInt(c.RuleB)...)
	}
	return out
}

func decConflicts(data []byte) ([]table.ConflictSnapshot, []byte, error) {
	n, rest, err := decInt(data)
	if err != nil {
		return nil, nil, err
	}
	out := make([]table.ConflictSnapshot, n)
	for i := range out {
		if out[i].Kind, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].State, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].Terminal, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].Rule, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].ShiftState, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
		if out[i].RuleB, rest, err = decInt(rest); err != nil {
			return nil, nil, err
		}
	}
	return out, rest, nil
}
