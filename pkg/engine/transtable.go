package engine

import (
	"sync/atomic"

	. "github.com/tsubame-shogi/tsubame/pkg/shogi"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

const clusterEntryNB = 4

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

// 12 bytes
type transEntry struct {
	key32    uint32
	moveDate uint32
	score    int16
	depth    int8
	bound    uint8
}

// The move occupies the low 24 bits, the table date the high 8.
func (entry *transEntry) Move() Move {
	return Move(entry.moveDate & 0xffffff)
}

func (entry *transEntry) Date() uint16 {
	return uint16(entry.moveDate >> 24)
}

func (entry *transEntry) SetMoveAndDate(move Move, date uint16) {
	entry.moveDate = uint32(move)&0xffffff + uint32(date)<<24
}

// 64 bytes; the gate serializes access to the whole cluster. A reader or
// writer that loses the race treats the probe as a miss.
type transCluster struct {
	gate    int32
	entries [clusterEntryNB]transEntry
	_       [12]byte
}

type transTable struct {
	megabytes int
	clusters  []transCluster
	date      uint16
	mask      uint32
	gcCursor  uint32
}

func newTransTable(megabytes int) *transTable {
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 64)
	return &transTable{
		megabytes: megabytes,
		clusters:  make([]transCluster, size),
		mask:      uint32(size - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

func (tt *transTable) IncDate() {
	tt.date = (tt.date + 1) & 0xff
}

func (tt *transTable) Clear() {
	tt.date = 0
	for i := range tt.clusters {
		tt.clusters[i] = transCluster{}
	}
}

func (tt *transTable) entryAge(entry *transEntry) int {
	return int((tt.date - entry.Date()) & 0xff)
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move Move, ok bool) {
	var cluster = &tt.clusters[uint32(key)&tt.mask]
	if atomic.CompareAndSwapInt32(&cluster.gate, 0, 1) {
		for i := range cluster.entries {
			var entry = &cluster.entries[i]
			if entry.bound != 0 && entry.key32 == uint32(key>>32) {
				entry.SetMoveAndDate(entry.Move(), tt.date)
				score = int(entry.score)
				move = entry.Move()
				depth = int(entry.depth)
				bound = int(entry.bound)
				ok = true
				break
			}
		}
		atomic.StoreInt32(&cluster.gate, 0)
	}
	return
}

func (tt *transTable) Update(key uint64, depth, score, bound int, move Move) {
	var cluster = &tt.clusters[uint32(key)&tt.mask]
	if atomic.CompareAndSwapInt32(&cluster.gate, 0, 1) {
		var target *transEntry
		var match *transEntry
		for i := range cluster.entries {
			var entry = &cluster.entries[i]
			if entry.bound != 0 && entry.key32 == uint32(key>>32) {
				match = entry
				break
			}
		}
		if match != nil {
			if depth >= int(match.depth)-3 || bound == boundExact {
				target = match
			}
		} else {
			for i := range cluster.entries {
				var entry = &cluster.entries[i]
				if entry.bound == 0 {
					target = entry
					break
				}
				// victim: the oldest entry, then the shallowest
				if target == nil ||
					tt.entryAge(entry) > tt.entryAge(target) ||
					(tt.entryAge(entry) == tt.entryAge(target) && entry.depth < target.depth) {
					target = entry
				}
			}
		}
		if target != nil {
			target.key32 = uint32(key >> 32)
			target.score = int16(score)
			target.depth = int8(depth)
			target.bound = uint8(bound)
			target.SetMoveAndDate(move, tt.date)
		}
		atomic.StoreInt32(&cluster.gate, 0)
	}
}

// PerformIncrementalGC sweeps n clusters from a moving cursor and drops
// entries more than two searches old.
func (tt *transTable) PerformIncrementalGC(n int) {
	for ; n > 0; n-- {
		var index = tt.gcCursor & tt.mask
		tt.gcCursor++
		var cluster = &tt.clusters[index]
		if !atomic.CompareAndSwapInt32(&cluster.gate, 0, 1) {
			continue
		}
		for i := range cluster.entries {
			var entry = &cluster.entries[i]
			if entry.bound != 0 && tt.entryAge(entry) > 2 {
				*entry = transEntry{}
			}
		}
		atomic.StoreInt32(&cluster.gate, 0)
	}
}

// ExtractPV rebuilds a main line by walking exact, deep-enough entries
// from p. The walk stops on any miss, illegal move or repeated key.
func (tt *transTable) ExtractPV(p *Position, depth int) []Move {
	var result []Move
	var seen = map[uint64]bool{p.Key: true}
	var pos = *p
	for len(result) < depth {
		var entryDepth, _, bound, move, ok = tt.Read(pos.Key)
		if !ok || bound != boundExact || move == MoveEmpty ||
			entryDepth < depth-len(result) {
			break
		}
		var child Position
		if pos.ParseMove(move.String()) != move || !pos.MakeMove(move, &child) {
			break
		}
		if seen[child.Key] {
			break
		}
		seen[child.Key] = true
		result = append(result, move)
		pos = child
	}
	return result
}
