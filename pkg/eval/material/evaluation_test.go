package eval

import (
	"testing"

	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

func TestEvaluateBalanced(t *testing.T) {
	var p, err = shogi.NewPositionFromSfen(shogi.InitialPositionSfen)
	if err != nil {
		t.Fatal(err)
	}
	var e = NewEvaluationService()
	if v := e.Evaluate(&p); v != 0 {
		t.Fatal(v)
	}
}

func TestEvaluateSideToMoveRelative(t *testing.T) {
	var e = NewEvaluationService()
	// black holds an extra rook in hand
	var pb, err = shogi.NewPositionFromSfen("4k4/9/9/9/9/9/9/9/4K4 b R 1")
	if err != nil {
		t.Fatal(err)
	}
	var pw, err2 = shogi.NewPositionFromSfen("4k4/9/9/9/9/9/9/9/4K4 w R 1")
	if err2 != nil {
		t.Fatal(err2)
	}
	var vb, vw = e.Evaluate(&pb), e.Evaluate(&pw)
	if vb != pieceValues[shogi.Rook] || vw != -vb {
		t.Fatal(vb, vw)
	}
}

func TestEvaluatePromotedPieces(t *testing.T) {
	var e = NewEvaluationService()
	var plain, err = shogi.NewPositionFromSfen("4k4/9/9/9/4P4/9/9/9/4K4 b - 1")
	if err != nil {
		t.Fatal(err)
	}
	var promoted, err2 = shogi.NewPositionFromSfen("4k4/9/9/9/4+P4/9/9/9/4K4 b - 1")
	if err2 != nil {
		t.Fatal(err2)
	}
	if e.Evaluate(&promoted) <= e.Evaluate(&plain) {
		t.Fatal("promotion did not gain material")
	}
}
