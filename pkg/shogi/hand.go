package shogi

import "strconv"

// Hand packs the seven droppable piece counts into one word:
// pawn 5 bits, then lance, knight, silver, gold 3 bits each,
// bishop and rook 2 bits each.
type Hand uint32

var handShift = [8]uint{
	Pawn:   0,
	Lance:  5,
	Knight: 8,
	Silver: 11,
	Gold:   14,
	Bishop: 17,
	Rook:   19,
}

var handMask = [8]uint32{
	Pawn:   0x1f,
	Lance:  0x7,
	Knight: 0x7,
	Silver: 0x7,
	Gold:   0x7,
	Bishop: 0x3,
	Rook:   0x3,
}

var handPieceTypes = [7]int{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// handMaxCount is the number of pieces of each kind in the full set,
// the most one hand can ever hold.
var handMaxCount = [8]int{
	Pawn:   18,
	Lance:  4,
	Knight: 4,
	Silver: 4,
	Gold:   4,
	Bishop: 2,
	Rook:   2,
}

func (h Hand) Count(pieceType int) int {
	return int(uint32(h) >> handShift[pieceType] & handMask[pieceType])
}

func (h Hand) Has(pieceType int) bool {
	return h.Count(pieceType) != 0
}

func (h Hand) IsEmpty() bool {
	return h == 0
}

func (h Hand) Add(pieceType int) Hand {
	return h + Hand(1)<<handShift[pieceType]
}

func (h Hand) Remove(pieceType int) Hand {
	return h - Hand(1)<<handShift[pieceType]
}

// Superior reports whether h holds at least as many pieces of every kind
// as o. Used by repetition scoring: a repeated board with a superior hand
// is a win tendency rather than a plain draw.
func (h Hand) Superior(o Hand) bool {
	for _, pt := range handPieceTypes {
		if h.Count(pt) < o.Count(pt) {
			return false
		}
	}
	return true
}

var handPieceNames = [8]byte{
	Pawn:   'P',
	Lance:  'L',
	Knight: 'N',
	Silver: 'S',
	Gold:   'G',
	Bishop: 'B',
	Rook:   'R',
}

// String renders the hand in SFEN order with uppercase piece letters.
// An empty hand renders as the empty string so two hands concatenate.
func (h Hand) String() string {
	var s []byte
	for _, pt := range handPieceTypes {
		var n = h.Count(pt)
		if n == 0 {
			continue
		}
		if n > 1 {
			s = append(s, strconv.Itoa(n)...)
		}
		s = append(s, handPieceNames[pt])
	}
	return string(s)
}
