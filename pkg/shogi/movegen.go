package shogi

func lastRankMask(black bool) Bitboard {
	if black {
		return RankMask[RankA]
	}
	return RankMask[RankI]
}

func lastTwoRanksMask(black bool) Bitboard {
	if black {
		return RankMask[RankA].Or(RankMask[RankB])
	}
	return RankMask[RankH].Or(RankMask[RankI])
}

func mustPromote(pieceType, to int, black bool) bool {
	switch pieceType {
	case Pawn, Lance:
		return lastRank(to, black)
	case Knight:
		return lastTwoRanks(to, black)
	}
	return false
}

func (p *Position) addBoardMoves(ml []OrderedMove, count, from, to, pieceType int) int {
	var captured = p.WhatPiece(to)
	if CanPromote(pieceType) &&
		(promotionZone(from, p.BlackMove) || promotionZone(to, p.BlackMove)) {
		ml[count].Move = NewPromotionMove(from, to, pieceType, captured)
		count++
		if !mustPromote(pieceType, to, p.BlackMove) {
			ml[count].Move = NewMove(from, to, pieceType, captured)
			count++
		}
	} else {
		ml[count].Move = NewMove(from, to, pieceType, captured)
		count++
	}
	return count
}

var dropPieceTypes = [4]int{Silver, Gold, Bishop, Rook}

// GenerateMoves fills ml with the pseudo-legal moves of p: every generated
// move keeps the rules of piece movement, drops and promotion, but may still
// leave the own king attacked. In check only evasions are produced.
func (p *Position) GenerateMoves(ml []OrderedMove) []OrderedMove {
	var count = 0
	var black = p.BlackMove
	var side = sideIndex(black)
	var own = p.PiecesBySide(black)
	var all = p.AllPieces()
	var from, to int

	// King steps are generated against every non-own square even in check;
	// the legality filter rejects steps that stay on an attacked square.
	var kingSq = p.KingSq(black)
	for toBB := KingAttacks[kingSq].AndNot(own); !toBB.IsEmpty(); {
		to = toBB.Pop()
		ml[count].Move = NewMove(kingSq, to, King, p.WhatPiece(to))
		count++
	}

	var target = own.Not()
	var dropTarget = all.Not()
	if p.IsCheck() {
		if MoreThanOne(p.Checkers) {
			return ml[:count]
		}
		var checker = FirstOne(p.Checkers)
		var block = Between(checker, kingSq)
		target = p.Checkers.Or(block)
		dropTarget = block
	}

	for fromBB := p.Pawns.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := pawnAttacks[side][from].And(target); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Pawn)
		}
	}
	for fromBB := p.Lances.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := LanceAttacks(from, black, all).And(target); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Lance)
		}
	}
	for fromBB := p.Knights.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := knightAttacks[side][from].And(target); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Knight)
		}
	}
	for fromBB := p.Silvers.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := silverAttacks[side][from].And(target); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Silver)
		}
	}
	for _, pt := range [5]int{Gold, ProPawn, ProLance, ProKnight, ProSilver} {
		for fromBB := p.typeBitboard(pt).And(own); !fromBB.IsEmpty(); {
			from = fromBB.Pop()
			for toBB := goldAttacks[side][from].And(target); !toBB.IsEmpty(); {
				count = p.addBoardMoves(ml, count, from, toBB.Pop(), pt)
			}
		}
	}
	for fromBB := p.Bishops.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := BishopAttacks(from, all).And(target); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Bishop)
		}
	}
	for fromBB := p.Rooks.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := RookAttacks(from, all).And(target); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Rook)
		}
	}
	for fromBB := p.Horses.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := HorseAttacks(from, all).And(target); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Horse)
		}
	}
	for fromBB := p.Dragons.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := DragonAttacks(from, all).And(target); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Dragon)
		}
	}

	var hand = p.Hands[side]
	if !hand.IsEmpty() && !dropTarget.IsEmpty() {
		if hand.Has(Pawn) {
			var mask = dropTarget.AndNot(lastRankMask(black))
			for fileBB := p.Pawns.And(own); !fileBB.IsEmpty(); {
				mask = mask.AndNot(FileMask[File(fileBB.Pop())])
			}
			for ; !mask.IsEmpty(); count++ {
				ml[count].Move = NewDropMove(mask.Pop(), Pawn)
			}
		}
		if hand.Has(Lance) {
			for mask := dropTarget.AndNot(lastRankMask(black)); !mask.IsEmpty(); count++ {
				ml[count].Move = NewDropMove(mask.Pop(), Lance)
			}
		}
		if hand.Has(Knight) {
			for mask := dropTarget.AndNot(lastTwoRanksMask(black)); !mask.IsEmpty(); count++ {
				ml[count].Move = NewDropMove(mask.Pop(), Knight)
			}
		}
		for _, pt := range dropPieceTypes {
			if !hand.Has(pt) {
				continue
			}
			for mask := dropTarget; !mask.IsEmpty(); count++ {
				ml[count].Move = NewDropMove(mask.Pop(), pt)
			}
		}
	}

	return ml[:count]
}

// GenerateCaptures fills ml with captures and pawn promotions for the
// quiescence search. The caller handles check positions with GenerateMoves.
func (p *Position) GenerateCaptures(ml []OrderedMove) []OrderedMove {
	var count = 0
	var black = p.BlackMove
	var side = sideIndex(black)
	var own = p.PiecesBySide(black)
	var opp = p.PiecesBySide(!black)
	var all = p.AllPieces()
	var from int

	var kingSq = p.KingSq(black)
	for toBB := KingAttacks[kingSq].And(opp); !toBB.IsEmpty(); {
		var to = toBB.Pop()
		ml[count].Move = NewMove(kingSq, to, King, p.WhatPiece(to))
		count++
	}

	for fromBB := p.Pawns.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := pawnAttacks[side][from].And(all.Not()); !toBB.IsEmpty(); {
			// quiet pawn pushes only when they promote
			var to = toBB.Pop()
			if promotionZone(to, black) {
				ml[count].Move = NewPromotionMove(from, to, Pawn, Empty)
				count++
			}
		}
		for toBB := pawnAttacks[side][from].And(opp); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Pawn)
		}
	}
	for fromBB := p.Lances.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := LanceAttacks(from, black, all).And(opp); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Lance)
		}
	}
	for fromBB := p.Knights.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := knightAttacks[side][from].And(opp); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Knight)
		}
	}
	for fromBB := p.Silvers.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := silverAttacks[side][from].And(opp); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Silver)
		}
	}
	for _, pt := range [5]int{Gold, ProPawn, ProLance, ProKnight, ProSilver} {
		for fromBB := p.typeBitboard(pt).And(own); !fromBB.IsEmpty(); {
			from = fromBB.Pop()
			for toBB := goldAttacks[side][from].And(opp); !toBB.IsEmpty(); {
				count = p.addBoardMoves(ml, count, from, toBB.Pop(), pt)
			}
		}
	}
	for fromBB := p.Bishops.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := BishopAttacks(from, all).And(opp); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Bishop)
		}
	}
	for fromBB := p.Rooks.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := RookAttacks(from, all).And(opp); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Rook)
		}
	}
	for fromBB := p.Horses.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := HorseAttacks(from, all).And(opp); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Horse)
		}
	}
	for fromBB := p.Dragons.And(own); !fromBB.IsEmpty(); {
		from = fromBB.Pop()
		for toBB := DragonAttacks(from, all).And(opp); !toBB.IsEmpty(); {
			count = p.addBoardMoves(ml, count, from, toBB.Pop(), Dragon)
		}
	}

	return ml[:count]
}

// GenerateLegalMoves keeps only the moves MakeMove accepts.
func (p *Position) GenerateLegalMoves(ml []OrderedMove) []OrderedMove {
	var count = 0
	var child Position
	for _, entry := range p.GenerateMoves(ml) {
		if p.MakeMove(entry.Move, &child) {
			ml[count] = entry
			count++
		}
	}
	return ml[:count]
}
