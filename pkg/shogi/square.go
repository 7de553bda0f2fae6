package shogi

// Squares are indexed sq = 9*file + rank, where file 0 is USI file "1"
// (the right edge from Black's point of view) and rank 0 is USI rank "a"
// (the top). Black moves toward rank a, so Black's forward step is sq-1.

const (
	File1 = iota
	File2
	File3
	File4
	File5
	File6
	File7
	File8
	File9
)

const (
	RankA = iota
	RankB
	RankC
	RankD
	RankE
	RankF
	RankG
	RankH
	RankI
)

const SquareNone = -1

const SquareNB = 81

func File(sq int) int {
	return sq / 9
}

func Rank(sq int) int {
	return sq % 9
}

func MakeSquare(file, rank int) int {
	return file*9 + rank
}

// FlipSquare rotates the board 180 degrees, mapping a square to its
// counterpart from the other side's point of view.
func FlipSquare(sq int) int {
	return 80 - sq
}

func AbsDelta(x, y int) int {
	if x > y {
		return x - y
	}
	return y - x
}

func FileDistance(sq1, sq2 int) int {
	return AbsDelta(File(sq1), File(sq2))
}

func RankDistance(sq1, sq2 int) int {
	return AbsDelta(Rank(sq1), Rank(sq2))
}

func SquareDistance(sq1, sq2 int) int {
	return Max(FileDistance(sq1, sq2), RankDistance(sq1, sq2))
}

const rankNames = "abcdefghi"

func SquareName(sq int) string {
	return string(byte('1'+File(sq))) + string(rankNames[Rank(sq)])
}

func ParseSquare(s string) int {
	if len(s) != 2 {
		return SquareNone
	}
	var file = int(s[0] - '1')
	var rank = int(s[1] - 'a')
	if file < 0 || file > 8 || rank < 0 || rank > 8 {
		return SquareNone
	}
	return MakeSquare(file, rank)
}

// promotionZone reports whether sq lies in the given side's promotion zone
// (the three ranks closest to the opponent).
func promotionZone(sq int, black bool) bool {
	if black {
		return Rank(sq) <= RankC
	}
	return Rank(sq) >= RankG
}

// lastRank reports whether a pawn or lance on sq would be unable to move.
func lastRank(sq int, black bool) bool {
	if black {
		return Rank(sq) == RankA
	}
	return Rank(sq) == RankI
}

// lastTwoRanks reports whether a knight on sq would be unable to move.
func lastTwoRanks(sq int, black bool) bool {
	if black {
		return Rank(sq) <= RankB
	}
	return Rank(sq) >= RankH
}
