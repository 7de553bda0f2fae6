package shogi

import "time"

const (
	Empty int = iota
	Pawn
	Lance
	Knight
	Silver
	Bishop
	Rook
	Gold
	King
	ProPawn
	ProLance
	ProKnight
	ProSilver
	Horse
	Dragon
)

const PieceNB = 15

const (
	SideBlack = 0
	SideWhite = 1
)

const (
	MaxMoves = 600
)

const InitialPositionSfen = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

type OrderedMove struct {
	Move Move
	Key  int32
}

type LimitsType struct {
	Ponder         bool
	Infinite       bool
	BlackTime      int
	WhiteTime      int
	BlackIncrement int
	WhiteIncrement int
	Byoyomi        int
	MoveTime       int
	Depth          int
	Nodes          int
	Mate           int
}

type SearchParams struct {
	Positions []Position
	Limits    LimitsType
	Progress  func(si SearchInfo)
}

type SearchInfo struct {
	Score    UsiScore
	Depth    int
	Nodes    int64
	Time     time.Duration
	MainLine []Move
}

type UsiScore struct {
	Centipawns int
	Mate       int
}

// Promote maps an unpromoted piece type to its promoted counterpart.
// Valid for Pawn..Rook only.
func Promote(pieceType int) int {
	return pieceType + 8
}

func Unpromote(pieceType int) int {
	if pieceType >= ProPawn {
		return pieceType - 8
	}
	return pieceType
}

func IsPromoted(pieceType int) bool {
	return pieceType >= ProPawn
}

func CanPromote(pieceType int) bool {
	return pieceType >= Pawn && pieceType <= Rook
}

func MakePiece(pieceType int, black bool) int {
	if black {
		return pieceType
	}
	return pieceType + PieceNB
}

func Min(l, r int) int {
	if l < r {
		return l
	}
	return r
}

func Max(l, r int) int {
	if l > r {
		return l
	}
	return r
}
