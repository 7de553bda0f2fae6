package engine

import (
	"context"
	"testing"
	"time"

	eval "github.com/tsubame-shogi/tsubame/pkg/eval/material"
	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

func newTestEngine() *Engine {
	var e = NewEngine(func() interface{} {
		return eval.NewEvaluationService()
	})
	e.Hash = 4
	e.Threads = 1
	e.ProgressMinNodes = 0
	return e
}

func searchSfen(t *testing.T, e *Engine, sfen string, limits shogi.LimitsType) shogi.SearchInfo {
	var p, err = shogi.NewPositionFromSfen(sfen)
	if err != nil {
		t.Fatal(err)
	}
	return e.Search(context.Background(), shogi.SearchParams{
		Positions: []shogi.Position{p},
		Limits:    limits,
	})
}

func TestSearchMateInOne(t *testing.T) {
	var e = newTestEngine()
	var result = searchSfen(t, e, "4k4/9/4GG3/9/9/9/9/9/4K4 b - 1",
		shogi.LimitsType{Depth: 4})
	if result.Score.Mate != 1 {
		t.Fatal(result)
	}
	if len(result.MainLine) == 0 {
		t.Fatal("no mating move")
	}
	var p, _ = shogi.NewPositionFromSfen("4k4/9/4GG3/9/9/9/9/9/4K4 b - 1")
	var child shogi.Position
	if !p.MakeMove(result.MainLine[0], &child) {
		t.Fatal("illegal mating move:", result.MainLine[0])
	}
	var buffer [shogi.MaxMoves]shogi.OrderedMove
	if len(child.GenerateLegalMoves(buffer[:])) != 0 {
		t.Fatal("best move does not mate:", result.MainLine[0])
	}
}

func TestSearchMateWithDrop(t *testing.T) {
	// gold drop on the second rank mates a cornered king
	var e = newTestEngine()
	var result = searchSfen(t, e, "8k/9/7GS/9/9/9/9/9/K8 b G 1",
		shogi.LimitsType{Depth: 4})
	if result.Score.Mate != 1 {
		t.Fatal(result)
	}
}

// The reported mate distance must never move further away as the search
// deepens.
func TestMateScoreMonotonic(t *testing.T) {
	var e = newTestEngine()
	var p, err = shogi.NewPositionFromSfen("4k4/9/4GG3/9/9/9/9/9/4K4 b - 1")
	if err != nil {
		t.Fatal(err)
	}
	var lastMate = 0
	for depth := 2; depth <= 6; depth++ {
		var result = e.Search(context.Background(), shogi.SearchParams{
			Positions: []shogi.Position{p},
			Limits:    shogi.LimitsType{Depth: depth},
		})
		if result.Score.Mate <= 0 {
			t.Fatal(depth, result)
		}
		if lastMate != 0 && result.Score.Mate > lastMate {
			t.Fatal(depth, result.Score.Mate, lastMate)
		}
		lastMate = result.Score.Mate
	}
}

func TestSearchReturnsLegalMove(t *testing.T) {
	var e = newTestEngine()
	var result = searchSfen(t, e, shogi.InitialPositionSfen,
		shogi.LimitsType{MoveTime: 50})
	if len(result.MainLine) == 0 {
		t.Fatal("no move from the initial position")
	}
	var p, _ = shogi.NewPositionFromSfen(shogi.InitialPositionSfen)
	if p.ParseMove(result.MainLine[0].String()) == shogi.MoveEmpty {
		t.Fatal("best move is illegal:", result.MainLine[0])
	}
}

func TestSearchNoLegalMoves(t *testing.T) {
	// checkmated side to move resigns with an empty line
	var e = newTestEngine()
	var result = searchSfen(t, e, "k8/1G7/1SG6/9/9/9/9/9/8K w - 1",
		shogi.LimitsType{Depth: 3})
	if len(result.MainLine) != 0 {
		t.Fatal(result.MainLine)
	}
}

func TestSearchRespectsNodeLimit(t *testing.T) {
	var e = newTestEngine()
	var result = searchSfen(t, e, shogi.InitialPositionSfen,
		shogi.LimitsType{Nodes: 5000})
	if result.Nodes > 50000 {
		t.Fatal("node limit ignored:", result.Nodes)
	}
}

func TestSearchTimeBudget(t *testing.T) {
	var e = newTestEngine()
	var start = time.Now()
	searchSfen(t, e, shogi.InitialPositionSfen, shogi.LimitsType{MoveTime: 100})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatal("search overran its budget:", elapsed)
	}
}

func TestSearchMultiThreaded(t *testing.T) {
	var e = newTestEngine()
	e.Threads = 2
	var result = searchSfen(t, e, shogi.InitialPositionSfen,
		shogi.LimitsType{MoveTime: 100})
	if len(result.MainLine) == 0 {
		t.Fatal("no move from multi-threaded search")
	}
}

func TestRotateMoves(t *testing.T) {
	var ml = []shogi.Move{1, 2, 3, 4, 5}
	rotateMoves(ml[1:], 1)
	for i, want := range []shogi.Move{1, 3, 4, 5, 2} {
		if ml[i] != want {
			t.Fatal(ml)
		}
	}
	// rotating by a multiple of the length is a no-op
	rotateMoves(ml, 5)
	for i, want := range []shogi.Move{1, 3, 4, 5, 2} {
		if ml[i] != want {
			t.Fatal(ml)
		}
	}
	rotateMoves(ml[:1], 3)
	if ml[0] != 1 {
		t.Fatal(ml)
	}
}

func TestRepetitionScoredAsDraw(t *testing.T) {
	// black is a rook and gold down with a bare king; the king shuffle
	// recreates a position already seen twice in the game history, so the
	// score must collapse to zero instead of the lost material
	var e = newTestEngine()
	var p, err = shogi.NewPositionFromSfen("4k4/7gr/9/9/9/9/9/9/4K4 b - 1")
	if err != nil {
		t.Fatal(err)
	}
	var positions = []shogi.Position{p}
	for _, text := range []string{"5i4i", "5a4a", "4i5i", "4a5a", "5i4i", "5a4a", "4i5i", "4a5a"} {
		var last = positions[len(positions)-1]
		var m = last.ParseMove(text)
		if m == shogi.MoveEmpty {
			t.Fatal(text)
		}
		var child shogi.Position
		if !last.MakeMove(m, &child) {
			t.Fatal(text)
		}
		positions = append(positions, child)
	}
	var result = e.Search(context.Background(), shogi.SearchParams{
		Positions: positions,
		Limits:    shogi.LimitsType{Depth: 6},
	})
	if result.Score.Mate != 0 || shogi.Max(result.Score.Centipawns, -result.Score.Centipawns) > 2*pawnValue {
		t.Fatal(result.Score)
	}
}

func TestSeeBasic(t *testing.T) {
	var tests = []struct {
		sfen string
		move string
		ge   bool
	}{
		// pawn takes a free silver
		{"4k4/9/4s4/4P4/9/9/9/9/4K4 b - 1", "5d5c+", true},
		// rook grabs a pawn defended by a gold
		{"4k4/3g5/4p4/9/4R4/9/9/9/4K4 b - 1", "5e5c", false},
		// rook grabs an undefended pawn
		{"4k4/9/4p4/9/4R4/9/9/9/4K4 b - 1", "5e5c", true},
	}
	for i, test := range tests {
		var p, err = shogi.NewPositionFromSfen(test.sfen)
		if err != nil {
			t.Fatal(i, err)
		}
		var m = p.ParseMove(test.move)
		if m == shogi.MoveEmpty {
			t.Fatal(i, test.move)
		}
		if got := seeGEZero(&p, m); got != test.ge {
			t.Errorf("%d: SeeGE(%v) = %v", i, test.move, got)
		}
	}
}
