package shogi

import "math/bits"

// Bitboard covers the 81 squares with two words: Lo holds squares 0-62,
// Hi holds squares 63-80 in its low 18 bits.
type Bitboard struct {
	Lo, Hi uint64
}

const hiMask = (uint64(1) << 18) - 1

var BitboardEmpty = Bitboard{}

func (b Bitboard) IsEmpty() bool {
	return b.Lo == 0 && b.Hi == 0
}

func (b Bitboard) Has(sq int) bool {
	if sq < 63 {
		return b.Lo&(uint64(1)<<uint(sq)) != 0
	}
	return b.Hi&(uint64(1)<<uint(sq-63)) != 0
}

func (b Bitboard) And(o Bitboard) Bitboard {
	return Bitboard{b.Lo & o.Lo, b.Hi & o.Hi}
}

func (b Bitboard) Or(o Bitboard) Bitboard {
	return Bitboard{b.Lo | o.Lo, b.Hi | o.Hi}
}

func (b Bitboard) Xor(o Bitboard) Bitboard {
	return Bitboard{b.Lo ^ o.Lo, b.Hi ^ o.Hi}
}

func (b Bitboard) AndNot(o Bitboard) Bitboard {
	return Bitboard{b.Lo &^ o.Lo, b.Hi &^ o.Hi}
}

func (b Bitboard) Not() Bitboard {
	return Bitboard{^b.Lo &^ (uint64(1) << 63), ^b.Hi & hiMask}
}

func (b *Bitboard) SetBit(sq int) {
	if sq < 63 {
		b.Lo |= uint64(1) << uint(sq)
	} else {
		b.Hi |= uint64(1) << uint(sq-63)
	}
}

func (b *Bitboard) ClearBit(sq int) {
	if sq < 63 {
		b.Lo &^= uint64(1) << uint(sq)
	} else {
		b.Hi &^= uint64(1) << uint(sq-63)
	}
}

func PopCount(b Bitboard) int {
	return bits.OnesCount64(b.Lo) + bits.OnesCount64(b.Hi)
}

func MoreThanOne(b Bitboard) bool {
	return PopCount(b) > 1
}

// FirstOne returns the lowest set square. The bitboard must be non-empty.
func FirstOne(b Bitboard) int {
	if b.Lo != 0 {
		return bits.TrailingZeros64(b.Lo)
	}
	return 63 + bits.TrailingZeros64(b.Hi)
}

// LastOne returns the highest set square. The bitboard must be non-empty.
func LastOne(b Bitboard) int {
	if b.Hi != 0 {
		return 63 + 63 - bits.LeadingZeros64(b.Hi)
	}
	return 63 - bits.LeadingZeros64(b.Lo)
}

// Pop removes and returns the lowest set square.
func (b *Bitboard) Pop() int {
	if b.Lo != 0 {
		var sq = bits.TrailingZeros64(b.Lo)
		b.Lo &= b.Lo - 1
		return sq
	}
	var sq = 63 + bits.TrailingZeros64(b.Hi)
	b.Hi &= b.Hi - 1
	return sq
}

func BitboardString(b Bitboard) string {
	var s = ""
	for bb := b; !bb.IsEmpty(); {
		var sq = bb.Pop()
		if s != "" {
			s += ","
		}
		s += SquareName(sq)
	}
	return "(" + s + ")"
}

const (
	dirN = iota // toward rank a
	dirS        // toward rank i
	dirE        // toward file 1
	dirW        // toward file 9
	dirNE
	dirNW
	dirSE
	dirSW
	dirNB
)

var dirDeltas = [dirNB][2]int{
	dirN:  {0, -1},
	dirS:  {0, 1},
	dirE:  {-1, 0},
	dirW:  {1, 0},
	dirNE: {-1, -1},
	dirNW: {1, -1},
	dirSE: {-1, 1},
	dirSW: {1, 1},
}

var (
	SquareMask    [SquareNB]Bitboard
	FileMask      [9]Bitboard
	RankMask      [9]Bitboard
	KingAttacks   [SquareNB]Bitboard
	knightAttacks [2][SquareNB]Bitboard
	silverAttacks [2][SquareNB]Bitboard
	goldAttacks   [2][SquareNB]Bitboard
	pawnAttacks   [2][SquareNB]Bitboard
	rayMask       [dirNB][SquareNB]Bitboard
	betweenMask   [SquareNB][SquareNB]Bitboard
)

func sideIndex(black bool) int {
	if black {
		return SideBlack
	}
	return SideWhite
}

func PawnAttacks(sq int, black bool) Bitboard {
	return pawnAttacks[sideIndex(black)][sq]
}

func KnightAttacks(sq int, black bool) Bitboard {
	return knightAttacks[sideIndex(black)][sq]
}

func SilverAttacks(sq int, black bool) Bitboard {
	return silverAttacks[sideIndex(black)][sq]
}

func GoldAttacks(sq int, black bool) Bitboard {
	return goldAttacks[sideIndex(black)][sq]
}

func rayAttacks(dir, sq int, occ Bitboard) Bitboard {
	var attacks = rayMask[dir][sq]
	var blockers = attacks.And(occ)
	if blockers.IsEmpty() {
		return attacks
	}
	var blocker int
	if dirDeltas[dir][0]*9+dirDeltas[dir][1] > 0 {
		blocker = FirstOne(blockers)
	} else {
		blocker = LastOne(blockers)
	}
	return attacks.Xor(rayMask[dir][blocker])
}

func LanceAttacks(sq int, black bool, occ Bitboard) Bitboard {
	if black {
		return rayAttacks(dirN, sq, occ)
	}
	return rayAttacks(dirS, sq, occ)
}

func BishopAttacks(sq int, occ Bitboard) Bitboard {
	return rayAttacks(dirNE, sq, occ).
		Or(rayAttacks(dirNW, sq, occ)).
		Or(rayAttacks(dirSE, sq, occ)).
		Or(rayAttacks(dirSW, sq, occ))
}

func RookAttacks(sq int, occ Bitboard) Bitboard {
	return rayAttacks(dirN, sq, occ).
		Or(rayAttacks(dirS, sq, occ)).
		Or(rayAttacks(dirE, sq, occ)).
		Or(rayAttacks(dirW, sq, occ))
}

func HorseAttacks(sq int, occ Bitboard) Bitboard {
	return BishopAttacks(sq, occ).Or(KingAttacks[sq])
}

func DragonAttacks(sq int, occ Bitboard) Bitboard {
	return RookAttacks(sq, occ).Or(KingAttacks[sq])
}

func Between(sq1, sq2 int) Bitboard {
	return betweenMask[sq1][sq2]
}

func stepSquare(sq, df, dr int) int {
	var file = File(sq) + df
	var rank = Rank(sq) + dr
	if file < 0 || file > 8 || rank < 0 || rank > 8 {
		return SquareNone
	}
	return MakeSquare(file, rank)
}

func stepMask(sq int, steps [][2]int) Bitboard {
	var b Bitboard
	for _, step := range steps {
		if to := stepSquare(sq, step[0], step[1]); to != SquareNone {
			b.SetBit(to)
		}
	}
	return b
}

func flipSteps(steps [][2]int) [][2]int {
	var result = make([][2]int, len(steps))
	for i, step := range steps {
		result[i] = [2]int{step[0], -step[1]}
	}
	return result
}

func init() {
	var kingSteps = [][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	var blackPawnSteps = [][2]int{{0, -1}}
	var blackKnightSteps = [][2]int{{-1, -2}, {1, -2}}
	var blackSilverSteps = [][2]int{{0, -1}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	var blackGoldSteps = [][2]int{{0, -1}, {-1, -1}, {1, -1}, {-1, 0}, {1, 0}, {0, 1}}

	for sq := 0; sq < SquareNB; sq++ {
		SquareMask[sq].SetBit(sq)
		FileMask[File(sq)].SetBit(sq)
		RankMask[Rank(sq)].SetBit(sq)

		KingAttacks[sq] = stepMask(sq, kingSteps)
		pawnAttacks[SideBlack][sq] = stepMask(sq, blackPawnSteps)
		pawnAttacks[SideWhite][sq] = stepMask(sq, flipSteps(blackPawnSteps))
		knightAttacks[SideBlack][sq] = stepMask(sq, blackKnightSteps)
		knightAttacks[SideWhite][sq] = stepMask(sq, flipSteps(blackKnightSteps))
		silverAttacks[SideBlack][sq] = stepMask(sq, blackSilverSteps)
		silverAttacks[SideWhite][sq] = stepMask(sq, flipSteps(blackSilverSteps))
		goldAttacks[SideBlack][sq] = stepMask(sq, blackGoldSteps)
		goldAttacks[SideWhite][sq] = stepMask(sq, flipSteps(blackGoldSteps))

		for dir := 0; dir < dirNB; dir++ {
			var df, dr = dirDeltas[dir][0], dirDeltas[dir][1]
			for to := stepSquare(sq, df, dr); to != SquareNone; to = stepSquare(to, df, dr) {
				rayMask[dir][sq].SetBit(to)
			}
		}
	}

	for s1 := 0; s1 < SquareNB; s1++ {
		for dir := 0; dir < dirNB; dir++ {
			for bb := rayMask[dir][s1]; !bb.IsEmpty(); {
				var s2 = bb.Pop()
				betweenMask[s1][s2] = rayMask[dir][s1].AndNot(rayMask[dir][s2]).AndNot(SquareMask[s2])
			}
		}
	}
}
