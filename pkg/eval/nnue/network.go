package eval

import (
	. "github.com/tsubame-shogi/tsubame/pkg/shogi"
)

// The network scores a position from two king-relative piece-square
// feature sets, one per side. Kings themselves carry no feature; a king
// move invalidates that side's accumulator and forces a refresh.
const (
	featureKindNB = 13 // board piece kinds without the king
	featurePerKing = 2 * featureKindNB * SquareNB
	InputSize      = SquareNB * featurePerKing
)

const maxHeight = 128

const (
	add    = 1
	remove = -add
)

var pieceFeature = [PieceNB]int{
	Pawn: 0, Lance: 1, Knight: 2, Silver: 3, Bishop: 4, Rook: 5, Gold: 6,
	King:      -1,
	ProPawn:   7, ProLance: 8, ProKnight: 9, ProSilver: 10,
	Horse: 11, Dragon: 12,
}

type Weights struct {
	HiddenSize    int
	HiddenWeights []int16 // InputSize x HiddenSize
	HiddenBiases  []int16
	OutputWeights []int16 // 2 x HiddenSize: side to move first
	OutputBias    int32
}

type accumulator struct {
	values [2][]int16
	dirty  [2]bool
}

type EvaluationService struct {
	*Weights
	stack   [maxHeight]accumulator
	current int
}

func NewEvaluationService(weights *Weights) *EvaluationService {
	var es = &EvaluationService{Weights: weights}
	for i := range es.stack {
		es.stack[i].values[SideBlack] = make([]int16, weights.HiddenSize)
		es.stack[i].values[SideWhite] = make([]int16, weights.HiddenSize)
	}
	return es
}

// featureIndex maps a piece seen from one side's point of view. The white
// perspective rotates the board so both sides share one weight set.
func featureIndex(perspectiveBlack bool, kingSq, pieceType int, pieceBlack bool, sq int) int {
	if !perspectiveBlack {
		kingSq = FlipSquare(kingSq)
		sq = FlipSquare(sq)
		pieceBlack = !pieceBlack
	}
	var kind = pieceFeature[pieceType]
	if !pieceBlack {
		kind += featureKindNB
	}
	return (kingSq*2*featureKindNB+kind)*SquareNB + sq
}

func (e *EvaluationService) addInput(values []int16, index, coeff int) {
	var weights = e.HiddenWeights[index*e.HiddenSize : (index+1)*e.HiddenSize]
	if coeff == add {
		for j := range values {
			values[j] += weights[j]
		}
	} else {
		for j := range values {
			values[j] -= weights[j]
		}
	}
}

func (e *EvaluationService) refresh(p *Position, side int) {
	var acc = &e.stack[e.current]
	var perspectiveBlack = side == SideBlack
	var kingSq = p.KingSq(perspectiveBlack)
	var values = acc.values[side]
	for j := range values {
		values[j] = e.HiddenBiases[j]
	}
	for sq := 0; sq < SquareNB; sq++ {
		var pieceType, pieceBlack = p.GetPieceTypeAndSide(sq)
		if pieceType == Empty || pieceType == King {
			continue
		}
		e.addInput(values, featureIndex(perspectiveBlack, kingSq, pieceType, pieceBlack, sq), add)
	}
	acc.dirty[side] = false
}

func (e *EvaluationService) Init(p *Position) {
	e.current = 0
	e.refresh(p, SideBlack)
	e.refresh(p, SideWhite)
}

func (e *EvaluationService) MakeMove(p *Position, m Move) {
	var prev = &e.stack[e.current]
	e.current++
	var acc = &e.stack[e.current]
	copy(acc.values[SideBlack], prev.values[SideBlack])
	copy(acc.values[SideWhite], prev.values[SideWhite])
	acc.dirty = prev.dirty

	if m == MoveEmpty {
		return
	}

	var moverBlack = p.BlackMove
	if m.MovingPiece() == King {
		acc.dirty[sideOf(moverBlack)] = true
		if captured := m.CapturedPiece(); captured != Empty {
			e.applyUpdate(p, sideOf(!moverBlack), captured, !moverBlack, m.To(), remove)
		}
		return
	}

	for side := SideBlack; side <= SideWhite; side++ {
		if acc.dirty[side] {
			continue
		}
		if !m.IsDrop() {
			e.applyUpdate(p, side, m.MovingPiece(), moverBlack, m.From(), remove)
		}
		if captured := m.CapturedPiece(); captured != Empty {
			e.applyUpdate(p, side, captured, !moverBlack, m.To(), remove)
		}
		e.applyUpdate(p, side, m.TopPiece(), moverBlack, m.To(), add)
	}
}

func (e *EvaluationService) applyUpdate(p *Position, side, pieceType int, pieceBlack bool, sq, coeff int) {
	var acc = &e.stack[e.current]
	var perspectiveBlack = side == SideBlack
	var kingSq = p.KingSq(perspectiveBlack)
	e.addInput(acc.values[side], featureIndex(perspectiveBlack, kingSq, pieceType, pieceBlack, sq), coeff)
}

func (e *EvaluationService) UnmakeMove() {
	e.current--
}

func clippedReLU(v int16) int32 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return int32(v)
}

const fvScale = 16

func (e *EvaluationService) EvaluateQuick(p *Position) int {
	var acc = &e.stack[e.current]
	for side := SideBlack; side <= SideWhite; side++ {
		if acc.dirty[side] {
			e.refresh(p, side)
		}
	}
	var own, opp = SideBlack, SideWhite
	if !p.BlackMove {
		own, opp = SideWhite, SideBlack
	}
	var output = e.OutputBias
	for j := 0; j < e.HiddenSize; j++ {
		output += clippedReLU(acc.values[own][j]) * int32(e.OutputWeights[j])
		output += clippedReLU(acc.values[opp][j]) * int32(e.OutputWeights[e.HiddenSize+j])
	}
	var score = int(output / fvScale)
	const maxEval = 15_000
	return Max(-maxEval, Min(maxEval, score))
}

func (e *EvaluationService) Evaluate(p *Position) int {
	e.Init(p)
	return e.EvaluateQuick(p)
}

func sideOf(black bool) int {
	if black {
		return SideBlack
	}
	return SideWhite
}
