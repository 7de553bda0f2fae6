package engine

import (
	. "github.com/tsubame-shogi/tsubame/pkg/shogi"
)

var pieceValuesSEE = [PieceNB]int{
	Pawn: 1, Lance: 3, Knight: 3, Silver: 5, Gold: 6,
	Bishop: 8, Rook: 10, King: 120,
	ProPawn: 6, ProLance: 6, ProKnight: 6, ProSilver: 6,
	Horse: 12, Dragon: 12,
}

func seeGEZero(p *Position, move Move) bool {
	return SeeGE(p, move, 0)
}

// based on Ethereal
func SeeGE(pos *Position, move Move, threshold int) bool {
	var to = move.To()
	var nextVictim = move.TopPiece()

	var balance = pieceValuesSEE[move.CapturedPiece()]
	if move.IsPromotion() {
		balance += pieceValuesSEE[move.TopPiece()] - pieceValuesSEE[move.MovingPiece()]
	}
	balance -= threshold

	if balance < 0 {
		return false
	}

	balance -= pieceValuesSEE[nextVictim]
	if balance >= 0 {
		return true
	}

	var occupied = pos.AllPieces().Or(SquareMask[to])
	if !move.IsDrop() {
		occupied = occupied.AndNot(SquareMask[move.From()])
	}

	// Attackers are recomputed against the shrinking occupancy, so pieces
	// lined up behind a capture join the exchange in their turn.
	var side = !pos.BlackMove

	for {
		var myAttackers = pos.AttackersBySide(to, side, occupied).And(occupied)
		if myAttackers.IsEmpty() {
			break
		}

		var attackerType, attackerFrom = getLeastValuableAttacker(pos, myAttackers)
		occupied = occupied.AndNot(SquareMask[attackerFrom])
		side = !side

		balance = -balance - 1 - pieceValuesSEE[attackerType]
		if balance >= 0 {
			if attackerType == King &&
				!pos.AttackersBySide(to, side, occupied).And(occupied).IsEmpty() {
				side = !side
			}
			break
		}
	}

	return side != pos.BlackMove
}

var seeAttackerOrder = [...]int{
	Pawn, Lance, Knight, Silver, Gold,
	ProPawn, ProLance, ProKnight, ProSilver,
	Bishop, Rook, Horse, Dragon, King,
}

func getLeastValuableAttacker(p *Position, attackers Bitboard) (attacker, from int) {
	for _, pt := range seeAttackerOrder {
		if bb := p.PieceBitboard(pt).And(attackers); !bb.IsEmpty() {
			return pt, FirstOne(bb)
		}
	}
	return Empty, SquareNone
}
