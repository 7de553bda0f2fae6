package eval

import (
	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

// Standard shogi piece values in centipawns, with hand pieces worth the
// same as board pieces.
var pieceValues = [shogi.PieceNB]int{
	shogi.Pawn: 90, shogi.Lance: 315, shogi.Knight: 405, shogi.Silver: 495,
	shogi.Gold: 540, shogi.Bishop: 855, shogi.Rook: 990,
	shogi.ProPawn: 540, shogi.ProLance: 540, shogi.ProKnight: 540,
	shogi.ProSilver: 540, shogi.Horse: 945, shogi.Dragon: 1395,
}

var handPieceTypes = [7]int{
	shogi.Pawn, shogi.Lance, shogi.Knight, shogi.Silver,
	shogi.Gold, shogi.Bishop, shogi.Rook,
}

type EvaluationService struct{}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

func (e *EvaluationService) Evaluate(p *shogi.Position) int {
	var eval = 0
	for pt := shogi.Pawn; pt < shogi.PieceNB; pt++ {
		if pt == shogi.King {
			continue
		}
		var bb = p.PieceBitboard(pt)
		eval += pieceValues[pt] *
			(shogi.PopCount(bb.And(p.Black)) - shogi.PopCount(bb.And(p.White)))
	}
	for _, pt := range handPieceTypes {
		eval += pieceValues[pt] *
			(p.Hands[shogi.SideBlack].Count(pt) - p.Hands[shogi.SideWhite].Count(pt))
	}
	if !p.BlackMove {
		eval = -eval
	}
	return eval
}
