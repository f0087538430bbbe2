package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.fiblab.net/sim/connectivity/network/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func zeroRow(v int) string {
	row := make([]string, algo.SUBPURPOSES)
	for i := range row {
		row[i] = "0"
	}
	row[0] = fmt.Sprint(v)
	return "[" + strings.Join(row, ",") + "]"
}

func flatDecay(purposes int, v int) string {
	entries := make([]string, purposes*algo.DECAY_TABLE_LENGTH)
	for i := range entries {
		entries[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(entries, ",") + "]"
}

func writeInput(t *testing.T) string {
	dir := t.TempDir()
	// 0 -> 1 (100)，1有公交驶向2
	writeFile(t, dir, WALK_FILE, `{"0": [[0, 0], [100, 1]], "1": [[1, 0]], "2": [[0, 0], [20, 0]]}`)
	writeFile(t, dir, PT_FILE, `{"1": [[0, 2], [60, 29000], [50, 28900]]}`)
	writeFile(t, dir, VALUES_FILE, "["+zeroRow(0)+","+zeroRow(3)+","+zeroRow(4)+"]")
	writeFile(t, dir, PADDING_FILE, "32")
	lookup := make([]string, algo.SUBPURPOSES)
	for i := range lookup {
		lookup[i] = fmt.Sprint(i % 2)
	}
	writeFile(t, dir, LOOKUP_FILE, "["+strings.Join(lookup, ",")+"]")
	for i, hour := range DECAY_FILE_HOURS {
		writeFile(t, dir, fmt.Sprintf("travel_time_relationships_%d.json", hour), flatDecay(2, i+1))
	}
	return dir
}

func TestConvert(t *testing.T) {
	dir := writeInput(t)
	s, err := Convert(dir, 2022, true)
	require.NoError(t, err)
	assert.Equal(t, 3, s.NodeCount())
	assert.Equal(t, []algo.WalkEdge{{To: 1, Cost: 100}}, s.Walk[0])
	assert.Empty(t, s.Walk[1])
	assert.Equal(t, algo.NodeMeta{HasPT: true, PTDestination: 2}, s.Meta[1])
	assert.Equal(t, []algo.PTEdge{{LeaveTime: 29000, Cost: 60}, {LeaveTime: 28900, Cost: 50}}, s.PT[1])
	assert.Equal(t, algo.NodeMeta{PTDestination: -1}, s.Meta[0])
	assert.Equal(t, algo.NodeID(1), s.PaddingOffset)
	assert.Len(t, s.Values, 3*algo.SUBPURPOSES)
	assert.Equal(t, int32(3), s.Values[algo.SUBPURPOSES])
	require.Len(t, s.Decay, algo.TIME_OF_DAY_BUCKETS)
	assert.Len(t, s.Decay[3], 2)
	assert.Equal(t, int32(4), s.Decay[3][1][algo.DECAY_TABLE_LENGTH-1])
	assert.Equal(t, 1, s.Lookup[1])

	historical, err := Convert(dir, 2016, false)
	require.NoError(t, err)
	assert.Nil(t, historical.Decay)
	assert.Nil(t, historical.Lookup)
}

func TestConvertErrors(t *testing.T) {
	dir := writeInput(t)
	writeFile(t, dir, PADDING_FILE, "33")
	_, err := Convert(dir, 2022, true)
	assert.Error(t, err)

	dir = writeInput(t)
	writeFile(t, dir, WALK_FILE, `{"0": [[0, 0]], "2": [[0, 0]], "3": [[0, 0]]}`)
	_, err = Convert(dir, 2022, true)
	assert.Error(t, err)

	dir = writeInput(t)
	writeFile(t, dir, PT_FILE, `{"1": []}`)
	_, err = Convert(dir, 2022, true)
	assert.ErrorIs(t, err, algo.ErrMissingSentinel)

	dir = writeInput(t)
	writeFile(t, dir, "travel_time_relationships_16.json", "[1, 2, 3]")
	_, err = Convert(dir, 2022, true)
	assert.Error(t, err)
}
