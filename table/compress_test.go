package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PackWord_roundTrips(t *testing.T) {
	assert := assert.New(t)

	for _, tc := range []struct {
		tag     uint32
		payload int
	}{
		{tagShift, 0},
		{tagShift, 12345},
		{tagReduce, 7},
		{tagDeferred, 0},
	} {
		w := packWord(tc.tag, tc.payload)
		gotTag, gotPayload := unpackWord(w)
		assert.Equal(tc.tag, gotTag)
		assert.Equal(tc.payload, gotPayload)
	}
}

func Test_CompressRows_noTwoLiveEntriesCollide(t *testing.T) {
	assert := assert.New(t)

	rows := map[int]map[int]uint32{
		0: {0: 10, 2: 11},
		1: {0: 20, 1: 21, 5: 22},
		2: {},
		3: {3: 30},
	}
	rd := compressRows(rows, 4)

	type key struct{ state, col int }
	seen := map[int]key{}
	for state, row := range rows {
		for col, want := range row {
			idx := rd.Base[state] + col
			assert.Equal(state, rd.Check[idx], "check[base[s]+x] == s must hold for every live entry")
			if prior, ok := seen[idx]; ok {
				assert.Failf("colliding slot", "slot %d used by both %+v and %+v", idx, prior, key{state, col})
			}
			seen[idx] = key{state, col}
			assert.Equal(want, rd.Data[idx])
		}
	}
}

func Test_CompressRows_getReturnsFalseForDeadCell(t *testing.T) {
	assert := assert.New(t)

	rows := map[int]map[int]uint32{
		0: {0: 10},
		1: {0: 20},
	}
	rd := compressRows(rows, 2)

	_, live := rd.get(0, 7)
	assert.False(live)

	_, live = rd.get(0, 0)
	assert.True(live)
}

func Test_CompressRows_emptyRowsHaveNoLiveCells(t *testing.T) {
	assert := assert.New(t)

	rows := map[int]map[int]uint32{
		0: {},
		1: {0: 1},
	}
	rd := compressRows(rows, 2)

	for col := 0; col < 8; col++ {
		_, live := rd.get(0, col)
		assert.False(live)
	}
}
