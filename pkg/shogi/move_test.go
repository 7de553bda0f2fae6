package shogi

import "testing"

func TestMoveFields(t *testing.T) {
	var m = NewMove(ParseSquare("7g"), ParseSquare("7f"), Pawn, Empty)
	if m.From() != ParseSquare("7g") || m.To() != ParseSquare("7f") ||
		m.MovingPiece() != Pawn || m.CapturedPiece() != Empty ||
		m.IsDrop() || m.IsPromotion() {
		t.Fatal(m)
	}
	m = NewPromotionMove(ParseSquare("2b"), ParseSquare("3c"), Bishop, Knight)
	if !m.IsPromotion() || m.TopPiece() != Horse || m.CapturedPiece() != Knight {
		t.Fatal(m)
	}
	m = NewDropMove(ParseSquare("5e"), Silver)
	if !m.IsDrop() || m.DropPiece() != Silver || m.To() != ParseSquare("5e") ||
		m.CapturedPiece() != Empty {
		t.Fatal(m)
	}
}

func TestMoveString(t *testing.T) {
	var tests = []struct {
		move Move
		text string
	}{
		{NewMove(ParseSquare("7g"), ParseSquare("7f"), Pawn, Empty), "7g7f"},
		{NewPromotionMove(ParseSquare("2b"), ParseSquare("3c"), Bishop, Knight), "2b3c+"},
		{NewDropMove(ParseSquare("5e"), Pawn), "P*5e"},
		{MoveEmpty, "0000"},
	}
	for _, test := range tests {
		if s := test.move.String(); s != test.text {
			t.Errorf("%v != %v", s, test.text)
		}
	}
}

func TestParseMoveRoundTrip(t *testing.T) {
	var p, err = NewPositionFromSfen(InitialPositionSfen)
	if err != nil {
		t.Fatal(err)
	}
	var buffer [MaxMoves]OrderedMove
	for _, entry := range p.GenerateLegalMoves(buffer[:]) {
		if got := p.ParseMove(entry.Move.String()); got != entry.Move {
			t.Errorf("%v parsed back as %v", entry.Move, got)
		}
	}
	if p.ParseMove("7g7e") != MoveEmpty {
		t.Error("illegal move text must not parse")
	}
}
