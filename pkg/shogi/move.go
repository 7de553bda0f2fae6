package shogi

// Move encoding:
// bits 0-6    destination square
// bits 7-13   origin square, or dropped piece type for drops
// bit  14     drop flag
// bit  15     promote flag
// bits 16-19  moving piece type
// bits 20-23  captured piece type
type Move int32

const MoveEmpty Move = 0

const (
	moveDropFlag    Move = 1 << 14
	movePromoteFlag Move = 1 << 15
)

func NewMove(from, to, movingPiece, capturedPiece int) Move {
	return Move(to) | Move(from)<<7 | Move(movingPiece)<<16 | Move(capturedPiece)<<20
}

func NewPromotionMove(from, to, movingPiece, capturedPiece int) Move {
	return NewMove(from, to, movingPiece, capturedPiece) | movePromoteFlag
}

func NewDropMove(to, pieceType int) Move {
	return Move(to) | Move(pieceType)<<7 | Move(pieceType)<<16 | moveDropFlag
}

func (m Move) To() int {
	return int(m & 127)
}

// From returns the origin square. Undefined for drops.
func (m Move) From() int {
	return int((m >> 7) & 127)
}

// DropPiece returns the dropped piece type. Defined for drops only.
func (m Move) DropPiece() int {
	return int((m >> 7) & 127)
}

func (m Move) IsDrop() bool {
	return m&moveDropFlag != 0
}

func (m Move) IsPromotion() bool {
	return m&movePromoteFlag != 0
}

func (m Move) MovingPiece() int {
	return int((m >> 16) & 15)
}

func (m Move) CapturedPiece() int {
	return int((m >> 20) & 15)
}

// TopPiece returns the piece type sitting on the destination after the move.
func (m Move) TopPiece() int {
	if m.IsPromotion() {
		return Promote(m.MovingPiece())
	}
	return m.MovingPiece()
}

func (m Move) String() string {
	if m == MoveEmpty {
		return "0000"
	}
	if m.IsDrop() {
		return string(handPieceNames[m.DropPiece()]) + "*" + SquareName(m.To())
	}
	var s = SquareName(m.From()) + SquareName(m.To())
	if m.IsPromotion() {
		s += "+"
	}
	return s
}

// ParseMove resolves a USI move string against the legal moves of p.
// Returns MoveEmpty if the text does not name a legal move.
func (p *Position) ParseMove(s string) Move {
	var buffer [MaxMoves]OrderedMove
	for _, entry := range p.GenerateLegalMoves(buffer[:]) {
		if entry.Move.String() == s {
			return entry.Move
		}
	}
	return MoveEmpty
}
