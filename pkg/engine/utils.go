package engine

import (
	. "github.com/tsubame-shogi/tsubame/pkg/shogi"
)

const (
	stackSize     = 128
	maxHeight     = stackSize - 1
	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	valueWin      = valueMate - 2*maxHeight
	valueLoss     = -valueWin
)

func winIn(height int) int {
	return valueMate - height
}

func lossIn(height int) int {
	return -valueMate + height
}

func valueToTT(v, height int) int {
	if v >= valueWin {
		return v + height
	}

	if v <= valueLoss {
		return v - height
	}

	return v
}

func valueFromTT(v, height int) int {
	if v >= valueWin {
		return v - height
	}

	if v <= valueLoss {
		return v + height
	}

	return v
}

func newUsiScore(v int) UsiScore {
	if v >= valueWin {
		return UsiScore{Mate: (valueMate - v + 1) / 2}
	} else if v <= valueLoss {
		return UsiScore{Mate: (-valueMate - v) / 2}
	} else {
		return UsiScore{Centipawns: v}
	}
}

func isCaptureOrPromotion(move Move) bool {
	return move.CapturedPiece() != Empty || move.IsPromotion()
}
