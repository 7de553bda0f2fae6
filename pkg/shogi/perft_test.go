package shogi

import (
	"testing"
)

func TestPerft(t *testing.T) {
	var tests = []struct {
		sfen  string
		depth int
		nodes int
	}{
		{
			sfen:  InitialPositionSfen,
			depth: 4,
			nodes: 719731,
		},
		{
			sfen:  InitialPositionSfen,
			depth: 3,
			nodes: 25470,
		},
		{
			sfen:  InitialPositionSfen,
			depth: 2,
			nodes: 900,
		},
		{
			sfen:  InitialPositionSfen,
			depth: 1,
			nodes: 30,
		},
	}
	for i, test := range tests {
		var p, err = NewPositionFromSfen(test.sfen)
		if err != nil {
			t.Fatal(i, err)
		}
		var nodes = Perft(&p, test.depth)
		if nodes != test.nodes {
			t.Error(i, test, nodes)
		}
	}
}

func Perft(p *Position, depth int) int {
	var result = 0
	var buffer [MaxMoves]OrderedMove
	var child Position
	for _, entry := range p.GenerateMoves(buffer[:]) {
		if p.MakeMove(entry.Move, &child) {
			if depth > 1 {
				result += Perft(&child, depth-1)
			} else {
				result++
			}
		}
	}
	return result
}

func BenchmarkPerft(b *testing.B) {
	var p, err = NewPositionFromSfen(InitialPositionSfen)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < b.N; i++ {
		Perft(&p, 3)
	}
}
