package shogi

import (
	"math/rand"
	"testing"
)

func TestParseSfenRoundTrip(t *testing.T) {
	var sfens = []string{
		InitialPositionSfen,
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/7P1/PPPPPPP1P/1B5R1/LNSGKGSNL w - 2",
		"8k/9/6ng1/9/9/9/9/9/K8 b P 1",
		"l6nl/5+P1gk/2np1S3/p1p4Pp/3P2Sp1/1PPb2P1P/P5GS1/R8/LN4bKL w RGgsn5p 1",
	}
	for _, sfen := range sfens {
		var p, err = NewPositionFromSfen(sfen)
		if err != nil {
			t.Fatal(sfen, err)
		}
		if s := p.String(); s != sfen {
			t.Errorf("round trip %q != %q", s, sfen)
		}
	}
}

func TestParseSfenRejectsMalformed(t *testing.T) {
	var sfens = []string{
		"",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/9/PPPPPPPPP/1B5R1 b - 1",
		"lnsgkgsnl/1r5b1/pppppppppp/9/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL x - 1",
		"lnsgqgsnl/1r5b1/ppppppppp/9/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1",
		"9/9/9/9/9/9/9/9/9 b - 1",
		"+k8/9/9/9/9/9/9/9/K8 b - 1",
	}
	for _, sfen := range sfens {
		if _, err := NewPositionFromSfen(sfen); err == nil {
			t.Errorf("accepted malformed sfen %q", sfen)
		}
	}
}

func TestParseSfenRejectsOversizedHand(t *testing.T) {
	// hand counts above the full piece set must fail, not wrap or index
	// past the key tables
	var bad = []string{
		"8k/9/9/9/9/9/9/9/K8 b 19P 1",
		"8k/9/9/9/9/9/9/9/K8 b 999P 1",
		"8k/9/9/9/9/9/9/9/K8 b 8L 1",
		"8k/9/9/9/9/9/9/9/K8 b 5N 1",
		"8k/9/9/9/9/9/9/9/K8 b 3R 1",
		"8k/9/9/9/9/9/9/9/K8 b 3b 1",
		"8k/9/9/9/9/9/9/9/K8 b 2P17P 1",
	}
	for _, sfen := range bad {
		if _, err := NewPositionFromSfen(sfen); err == nil {
			t.Errorf("accepted oversized hand %q", sfen)
		}
	}
	if _, err := NewPositionFromSfen("8k/9/9/9/9/9/9/9/K8 b 18P 1"); err != nil {
		t.Fatal(err)
	}
}

// Walks random legal games and checks the incrementally maintained keys
// against a from-scratch parse of the same position.
func TestKeyIncremental(t *testing.T) {
	var rnd = rand.New(rand.NewSource(1))
	var buffer [MaxMoves]OrderedMove
	for game := 0; game < 20; game++ {
		var p, err = NewPositionFromSfen(InitialPositionSfen)
		if err != nil {
			t.Fatal(err)
		}
		for ply := 0; ply < 80; ply++ {
			var ml = p.GenerateLegalMoves(buffer[:])
			if len(ml) == 0 {
				break
			}
			var child Position
			p.MakeMove(ml[rnd.Intn(len(ml))].Move, &child)
			var parsed, err = NewPositionFromSfen(child.String())
			if err != nil {
				t.Fatal(child.String(), err)
			}
			if parsed.Key != child.Key || parsed.BoardKey != child.BoardKey {
				t.Fatalf("key drift after %v in %v", child.LastMove, p.String())
			}
			p = child
		}
	}
}

func TestMakeMoveLeavesParentUntouched(t *testing.T) {
	var p, err = NewPositionFromSfen(InitialPositionSfen)
	if err != nil {
		t.Fatal(err)
	}
	var before = p
	var buffer [MaxMoves]OrderedMove
	var child Position
	for _, entry := range p.GenerateLegalMoves(buffer[:]) {
		p.MakeMove(entry.Move, &child)
	}
	if p != before {
		t.Error("MakeMove mutated the parent position")
	}
}

func TestNullMove(t *testing.T) {
	var p, err = NewPositionFromSfen(InitialPositionSfen)
	if err != nil {
		t.Fatal(err)
	}
	var null, back Position
	p.MakeNullMove(&null)
	if null.BlackMove == p.BlackMove || null.Key == p.Key {
		t.Error("null move must flip side and key")
	}
	null.MakeNullMove(&back)
	if back.Key != p.Key || back.BoardKey != p.BoardKey {
		t.Error("double null move must restore keys")
	}
}

func TestDropRules(t *testing.T) {
	var tests = []struct {
		sfen  string
		move  string
		legal bool
	}{
		// nifu: second unpromoted pawn on a file
		{"8k/9/9/9/4P4/9/9/9/K8 b P 1", "P*5c", false},
		{"8k/9/9/9/4P4/9/9/9/K8 b P 1", "P*4c", true},
		// a promoted pawn does not block the file
		{"8k/9/9/9/4+P4/9/9/9/K8 b P 1", "P*5c", true},
		// dead-piece drops
		{"8k/9/9/9/9/9/9/9/K8 b PLN 1", "P*5a", false},
		{"8k/9/9/9/9/9/9/9/K8 b PLN 1", "L*5a", false},
		{"8k/9/9/9/9/9/9/9/K8 b PLN 1", "N*5b", false},
		{"8k/9/9/9/9/9/9/9/K8 b PLN 1", "N*5c", true},
		// uchifuzume: the pawn drop delivers mate
		{"8k/9/6ng1/9/9/9/9/9/K8 b P 1", "P*1b", false},
		// same drop checks but the king escapes
		{"8k/9/7g1/9/9/9/9/9/K8 b P 1", "P*1b", true},
	}
	for i, test := range tests {
		var p, err = NewPositionFromSfen(test.sfen)
		if err != nil {
			t.Fatal(i, err)
		}
		var got = p.ParseMove(test.move) != MoveEmpty
		if got != test.legal {
			t.Errorf("%v: %v in %v: legal=%v want %v",
				i, test.move, test.sfen, got, test.legal)
		}
	}
}

func TestMandatoryPromotion(t *testing.T) {
	var p, err = NewPositionFromSfen("8k/P8/9/9/9/9/9/9/K8 b - 1")
	if err != nil {
		t.Fatal(err)
	}
	if p.ParseMove("9b9a") != MoveEmpty {
		t.Error("pawn move to the last rank without promotion must be illegal")
	}
	if p.ParseMove("9b9a+") == MoveEmpty {
		t.Error("pawn promotion on the last rank must be legal")
	}
}

func TestCheckEvasions(t *testing.T) {
	// White rook gives check along the fifth file; Black may move the king,
	// block with a drop on the line, or capture with the knight.
	var p, err = NewPositionFromSfen("4r3k/9/5N3/9/9/9/9/4K4/9 b G 1")
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsCheck() {
		t.Fatal("expected check")
	}
	var buffer [MaxMoves]OrderedMove
	for _, entry := range p.GenerateLegalMoves(buffer[:]) {
		var mv = entry.Move
		var child Position
		if !p.MakeMove(mv, &child) {
			t.Fatalf("illegal move from legal list: %v", mv)
		}
		if mv.IsDrop() && !Between(ParseSquare("5a"), ParseSquare("5h")).Has(mv.To()) {
			t.Errorf("drop evasion off the check line: %v", mv)
		}
	}
	if p.ParseMove("4c5a+") == MoveEmpty {
		t.Error("knight capture of the checker must be legal")
	}
}
