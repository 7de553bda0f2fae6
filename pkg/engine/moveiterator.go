package engine

import . "github.com/tsubame-shogi/tsubame/pkg/shogi"

const sortTableKeyImportant = 100000

type moveIteratorQS struct {
	position *Position
	buffer   []OrderedMove
	count    int
	index    int
}

func (mi *moveIteratorQS) Init() {
	if mi.position.IsCheck() {
		mi.count = len(mi.position.GenerateMoves(mi.buffer))
	} else {
		mi.count = len(mi.position.GenerateCaptures(mi.buffer))
	}

	for i := 0; i < mi.count; i++ {
		var m = mi.buffer[i].Move
		var score int
		if isCaptureOrPromotion(m) {
			score = 29000 + mvvlva(m)
		} else {
			score = 0
		}
		mi.buffer[i].Key = int32(score)
	}

	sortMoves(mi.buffer[:mi.count])
}

func (mi *moveIteratorQS) Reset() {
	mi.index = 0
}

func (mi *moveIteratorQS) Next() Move {
	if mi.index >= mi.count {
		return MoveEmpty
	}
	var m = mi.buffer[mi.index].Move
	mi.index++
	return m
}

type moveIterator struct {
	position  *Position
	buffer    []OrderedMove
	history   historyContext
	transMove Move
	killer1   Move
	killer2   Move
	count     int
	index     int
}

func (mi *moveIterator) Init() {
	mi.count = len(mi.position.GenerateMoves(mi.buffer))

	for i := 0; i < mi.count; i++ {
		var m = mi.buffer[i].Move
		var score int
		if m == mi.transMove {
			score = sortTableKeyImportant + 2000
		} else if isCaptureOrPromotion(m) {
			if seeGEZero(mi.position, m) {
				score = sortTableKeyImportant + 1000 + mvvlva(m)
			} else {
				score = 0 + mvvlva(m)
			}
		} else if m == mi.killer1 {
			score = sortTableKeyImportant + 1
		} else if m == mi.killer2 {
			score = sortTableKeyImportant
		} else {
			score = mi.history.ReadTotal(m)
		}
		mi.buffer[i].Key = int32(score)
	}
}

func (mi *moveIterator) Reset() {
	mi.index = 0
}

func (mi *moveIterator) Next() Move {
	if mi.index >= mi.count {
		return MoveEmpty
	}
	const SortMovesIndex = 1
	if mi.index <= SortMovesIndex {
		if mi.index == SortMovesIndex {
			sortMoves(mi.buffer[mi.index:mi.count])
		} else {
			moveToTop(mi.buffer[mi.index:mi.count])
		}
	}
	var m = mi.buffer[mi.index].Move
	mi.index++
	return m
}

var sortPieceValues = [PieceNB]int{
	Pawn: 1, Lance: 2, Knight: 2, Silver: 3, Gold: 4,
	Bishop: 5, Rook: 6, King: 7,
	ProPawn: 4, ProLance: 4, ProKnight: 4, ProSilver: 4,
	Horse: 6, Dragon: 7,
}

func mvvlva(move Move) int {
	var gain = sortPieceValues[move.CapturedPiece()]
	if move.IsPromotion() {
		gain += sortPieceValues[move.TopPiece()] - sortPieceValues[move.MovingPiece()]
	}
	return 8*gain - sortPieceValues[move.MovingPiece()]
}

func sortMoves(moves []OrderedMove) {
	for i := 1; i < len(moves); i++ {
		j, t := i, moves[i]
		for ; j > 0 && moves[j-1].Key < t.Key; j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = t
	}
}

func moveToTop(ml []OrderedMove) {
	var bestIndex = 0
	for i := 1; i < len(ml); i++ {
		if ml[i].Key > ml[bestIndex].Key {
			bestIndex = i
		}
	}
	if bestIndex != 0 {
		ml[0], ml[bestIndex] = ml[bestIndex], ml[0]
	}
}
