package shogi

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
)

type Position struct {
	Pawns      Bitboard
	Lances     Bitboard
	Knights    Bitboard
	Silvers    Bitboard
	Bishops    Bitboard
	Rooks      Bitboard
	Golds      Bitboard
	Kings      Bitboard
	ProPawns   Bitboard
	ProLances  Bitboard
	ProKnights Bitboard
	ProSilvers Bitboard
	Horses     Bitboard
	Dragons    Bitboard
	Black      Bitboard
	White      Bitboard
	Hands      [2]Hand
	Checkers   Bitboard
	BlackMove  bool
	Ply        int
	LastMove   Move
	// Key covers pieces, side to move and hands. BoardKey omits the hands
	// so repeated board states with different hands can be compared.
	Key      uint64
	BoardKey uint64
}

var errParseSfen = errors.New("parse sfen failed")

var (
	sideKey  uint64
	pieceKey [2][PieceNB][SquareNB]uint64
	handKey  [2][8][19]uint64
)

func init() {
	var r = rand.New(rand.NewSource(0))
	sideKey = r.Uint64()
	for side := 0; side < 2; side++ {
		for pt := Pawn; pt < PieceNB; pt++ {
			for sq := 0; sq < SquareNB; sq++ {
				pieceKey[side][pt][sq] = r.Uint64()
			}
		}
		for pt := Pawn; pt <= Gold; pt++ {
			for n := 1; n <= 18; n++ {
				handKey[side][pt][n] = r.Uint64()
			}
		}
	}
}

func (p *Position) typeBitboard(pieceType int) *Bitboard {
	switch pieceType {
	case Pawn:
		return &p.Pawns
	case Lance:
		return &p.Lances
	case Knight:
		return &p.Knights
	case Silver:
		return &p.Silvers
	case Bishop:
		return &p.Bishops
	case Rook:
		return &p.Rooks
	case Gold:
		return &p.Golds
	case King:
		return &p.Kings
	case ProPawn:
		return &p.ProPawns
	case ProLance:
		return &p.ProLances
	case ProKnight:
		return &p.ProKnights
	case ProSilver:
		return &p.ProSilvers
	case Horse:
		return &p.Horses
	case Dragon:
		return &p.Dragons
	}
	return nil
}

func (p *Position) xorPiece(pieceType int, black bool, sq int) {
	var b = SquareMask[sq]
	*p.typeBitboard(pieceType) = p.typeBitboard(pieceType).Xor(b)
	if black {
		p.Black = p.Black.Xor(b)
	} else {
		p.White = p.White.Xor(b)
	}
	var key = pieceKey[sideIndex(black)][pieceType][sq]
	p.Key ^= key
	p.BoardKey ^= key
}

func (p *Position) PieceBitboard(pieceType int) Bitboard {
	return *p.typeBitboard(pieceType)
}

func (p *Position) AllPieces() Bitboard {
	return p.Black.Or(p.White)
}

func (p *Position) PiecesBySide(black bool) Bitboard {
	if black {
		return p.Black
	}
	return p.White
}

// goldMovers returns every piece that moves like a gold.
func (p *Position) goldMovers() Bitboard {
	return p.Golds.Or(p.ProPawns).Or(p.ProLances).Or(p.ProKnights).Or(p.ProSilvers)
}

func (p *Position) WhatPiece(sq int) int {
	var b = SquareMask[sq]
	if p.Black.Or(p.White).And(b).IsEmpty() {
		return Empty
	}
	for pt := Pawn; pt < PieceNB; pt++ {
		if !p.typeBitboard(pt).And(b).IsEmpty() {
			return pt
		}
	}
	return Empty
}

func (p *Position) GetPieceTypeAndSide(sq int) (pieceType int, black bool) {
	return p.WhatPiece(sq), p.Black.Has(sq)
}

func (p *Position) KingSq(black bool) int {
	return FirstOne(p.Kings.And(p.PiecesBySide(black)))
}

func (p *Position) SideHand() Hand {
	return p.Hands[sideIndex(p.BlackMove)]
}

// attackersBySide returns the pieces of the given side attacking sq,
// computed with opposite-side step tables.
func (p *Position) attackersBySide(sq int, black bool, occ Bitboard) Bitboard {
	var own = p.PiecesBySide(black)
	var attackers = pawnAttacks[sideIndex(!black)][sq].And(p.Pawns).
		Or(knightAttacks[sideIndex(!black)][sq].And(p.Knights)).
		Or(silverAttacks[sideIndex(!black)][sq].And(p.Silvers)).
		Or(goldAttacks[sideIndex(!black)][sq].And(p.goldMovers())).
		Or(KingAttacks[sq].And(p.Kings.Or(p.Horses).Or(p.Dragons))).
		Or(LanceAttacks(sq, !black, occ).And(p.Lances)).
		Or(BishopAttacks(sq, occ).And(p.Bishops.Or(p.Horses))).
		Or(RookAttacks(sq, occ).And(p.Rooks.Or(p.Dragons)))
	return attackers.And(own)
}

// AttackersBySide exposes the attacker set for a caller-supplied occupancy,
// which static exchange evaluation rewinds capture by capture.
func (p *Position) AttackersBySide(sq int, black bool, occ Bitboard) Bitboard {
	return p.attackersBySide(sq, black, occ)
}

func (p *Position) isAttackedBySide(sq int, black bool) bool {
	return !p.attackersBySide(sq, black, p.AllPieces()).IsEmpty()
}

func (p *Position) computeCheckers() Bitboard {
	return p.attackersBySide(p.KingSq(p.BlackMove), !p.BlackMove, p.AllPieces())
}

func (p *Position) IsCheck() bool {
	return !p.Checkers.IsEmpty()
}

// isLegal reports whether the side that just moved left its king en prise.
func (p *Position) isLegal() bool {
	return !p.isAttackedBySide(p.KingSq(!p.BlackMove), p.BlackMove)
}

func (p *Position) MakeMove(move Move, result *Position) bool {
	return p.makeMove(move, result, true)
}

func (p *Position) makeMove(move Move, result *Position, checkDropMate bool) bool {
	*result = *p
	var side = sideIndex(p.BlackMove)

	if move.IsDrop() {
		var pt = move.DropPiece()
		result.xorPiece(pt, p.BlackMove, move.To())
		result.Key ^= handKey[side][pt][result.Hands[side].Count(pt)]
		result.Hands[side] = result.Hands[side].Remove(pt)
	} else {
		result.xorPiece(move.MovingPiece(), p.BlackMove, move.From())
		if captured := move.CapturedPiece(); captured != Empty {
			result.xorPiece(captured, !p.BlackMove, move.To())
			var pt = Unpromote(captured)
			result.Hands[side] = result.Hands[side].Add(pt)
			result.Key ^= handKey[side][pt][result.Hands[side].Count(pt)]
		}
		result.xorPiece(move.TopPiece(), p.BlackMove, move.To())
	}

	result.BlackMove = !p.BlackMove
	result.Key ^= sideKey
	result.BoardKey ^= sideKey
	result.Ply = p.Ply + 1
	result.LastMove = move

	if !result.isLegal() {
		return false
	}
	result.Checkers = result.computeCheckers()

	if checkDropMate && move.IsDrop() && move.DropPiece() == Pawn &&
		result.IsCheck() && !result.hasLegalMove() {
		return false
	}
	return true
}

// hasLegalMove probes for any legal reply without the pawn-drop-mate rule,
// which cannot apply to check evasions.
func (p *Position) hasLegalMove() bool {
	var buffer [MaxMoves]OrderedMove
	var child Position
	for _, entry := range p.GenerateMoves(buffer[:]) {
		if p.makeMove(entry.Move, &child, false) {
			return true
		}
	}
	return false
}

// MakeNullMove passes the turn. Valid only when not in check.
func (p *Position) MakeNullMove(result *Position) {
	*result = *p
	result.BlackMove = !p.BlackMove
	result.Key ^= sideKey
	result.BoardKey ^= sideKey
	result.LastMove = MoveEmpty
	result.Checkers = BitboardEmpty
}

var sfenPieceNames = [PieceNB]string{
	Pawn: "p", Lance: "l", Knight: "n", Silver: "s", Bishop: "b",
	Rook: "r", Gold: "g", King: "k", ProPawn: "+p", ProLance: "+l",
	ProKnight: "+n", ProSilver: "+s", Horse: "+b", Dragon: "+r",
}

func parseSfenPiece(ch byte) int {
	for pt := Pawn; pt <= King; pt++ {
		if sfenPieceNames[pt][0] == ch {
			return pt
		}
	}
	return Empty
}

func NewPositionFromSfen(sfen string) (Position, error) {
	var tokens = strings.Fields(sfen)
	if len(tokens) < 3 {
		return Position{}, errParseSfen
	}
	var p = Position{}

	var rows = strings.Split(tokens[0], "/")
	if len(rows) != 9 {
		return Position{}, errParseSfen
	}
	for rank, row := range rows {
		var file = File9
		var promoted = false
		for i := 0; i < len(row); i++ {
			var ch = row[i]
			if ch == '+' {
				promoted = true
				continue
			}
			if ch >= '1' && ch <= '9' {
				if promoted {
					return Position{}, errParseSfen
				}
				file -= int(ch - '0')
				continue
			}
			if file < File1 {
				return Position{}, errParseSfen
			}
			var black = ch >= 'A' && ch <= 'Z'
			var pt = parseSfenPiece(ch | 0x20)
			if pt == Empty {
				return Position{}, errParseSfen
			}
			if promoted {
				if !CanPromote(pt) {
					return Position{}, errParseSfen
				}
				pt = Promote(pt)
				promoted = false
			}
			p.xorPiece(pt, black, MakeSquare(file, rank))
			file--
		}
		if file != File1-1 {
			return Position{}, errParseSfen
		}
	}

	switch tokens[1] {
	case "b":
		p.BlackMove = true
	case "w":
		p.BlackMove = false
	default:
		return Position{}, errParseSfen
	}
	if !p.BlackMove {
		p.Key ^= sideKey
		p.BoardKey ^= sideKey
	}

	if tokens[2] != "-" {
		var count = 0
		for i := 0; i < len(tokens[2]); i++ {
			var ch = tokens[2][i]
			if ch >= '0' && ch <= '9' {
				count = count*10 + int(ch-'0')
				continue
			}
			var black = ch >= 'A' && ch <= 'Z'
			var pt = parseSfenPiece(ch | 0x20)
			if pt == Empty || pt == King {
				return Position{}, errParseSfen
			}
			if count == 0 {
				count = 1
			}
			var side = sideIndex(black)
			if p.Hands[side].Count(pt)+count > handMaxCount[pt] {
				return Position{}, errParseSfen
			}
			for ; count > 0; count-- {
				p.Hands[side] = p.Hands[side].Add(pt)
				p.Key ^= handKey[side][pt][p.Hands[side].Count(pt)]
			}
		}
	}

	p.Ply = 1
	if len(tokens) >= 4 {
		if ply, err := strconv.Atoi(tokens[3]); err == nil {
			p.Ply = ply
		}
	}

	if PopCount(p.Kings.And(p.Black)) != 1 || PopCount(p.Kings.And(p.White)) != 1 {
		return Position{}, errParseSfen
	}
	p.Checkers = p.computeCheckers()
	if !p.isLegal() {
		return Position{}, errParseSfen
	}
	return p, nil
}

func (p *Position) String() string {
	var sb strings.Builder
	for rank := RankA; rank <= RankI; rank++ {
		if rank > RankA {
			sb.WriteString("/")
		}
		var emptyCount = 0
		for file := File9; file >= File1; file-- {
			var pt, black = p.GetPieceTypeAndSide(MakeSquare(file, rank))
			if pt == Empty {
				emptyCount++
				continue
			}
			if emptyCount > 0 {
				sb.WriteString(strconv.Itoa(emptyCount))
				emptyCount = 0
			}
			var name = sfenPieceNames[pt]
			if black {
				name = strings.ToUpper(name)
				if name[0] == '+' {
					name = "+" + strings.ToUpper(sfenPieceNames[pt][1:])
				}
			}
			sb.WriteString(name)
		}
		if emptyCount > 0 {
			sb.WriteString(strconv.Itoa(emptyCount))
		}
	}
	sb.WriteString(" ")
	if p.BlackMove {
		sb.WriteString("b")
	} else {
		sb.WriteString("w")
	}
	sb.WriteString(" ")
	if p.Hands[SideBlack].IsEmpty() && p.Hands[SideWhite].IsEmpty() {
		sb.WriteString("-")
	} else {
		sb.WriteString(p.Hands[SideBlack].String())
		sb.WriteString(strings.ToLower(p.Hands[SideWhite].String()))
	}
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(p.Ply))
	return sb.String()
}
