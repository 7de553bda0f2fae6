package engine

import (
	"context"
	"errors"
	"runtime"
	"time"

	. "github.com/tsubame-shogi/tsubame/pkg/shogi"
)

type Engine struct {
	Hash             int
	Threads          int
	Options          Options
	ProgressMinNodes int
	evalBuilder      func() interface{}
	timeManager      TimeManager
	transTable       TransTable
	historyKeys      map[uint64]int
	threads          []thread
	progress         func(SearchInfo)
	mainLine         mainLine
	start            time.Time
}

type thread struct {
	engine              *Engine
	evaluator           UpdatableEvaluator
	nodes               int64
	rootDepth           int
	mainHistory         [mainHistoryNB]int16
	continuationHistory [pieceSquareNB][pieceSquareNB]int16
	stack               [stackSize]struct {
		position       Position
		moveList       [MaxMoves]OrderedMove
		quietsSearched [MaxMoves]Move
		pv             pv
		staticEval     int
		killer1        Move
		killer2        Move
	}
}

type pv struct {
	items [stackSize]Move
	size  int
}

type mainLine struct {
	moves []Move
	score int
	depth int
	nodes int64
}

type TimeManager interface {
	IsDone() bool
	OnNodesChanged(nodes int)
	OnIterationComplete(line mainLine)
	Close()
}

type Evaluator interface {
	Evaluate(p *Position) int
}

type UpdatableEvaluator interface {
	Init(p *Position)
	MakeMove(p *Position, m Move)
	UnmakeMove()
	EvaluateQuick(p *Position) int
}

type TransTable interface {
	Size() (megabytes int)
	IncDate()
	Clear()
	PerformIncrementalGC(clusters int)
	Read(key uint64) (depth, score, bound int, move Move, found bool)
	Update(key uint64, depth, score, bound int, move Move)
	ExtractPV(p *Position, depth int) []Move
}

const gcClustersPerSearch = 4096

func NewEngine(evalBuilder func() interface{}) *Engine {
	return &Engine{
		Hash:             16,
		Threads:          1,
		Options:          NewOptions(),
		ProgressMinNodes: 200000,
		evalBuilder:      evalBuilder,
	}
}

func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.Size() != e.Hash {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(e.Hash)
	}
	if len(e.threads) != e.Threads {
		e.threads = make([]thread, e.Threads)
		for i := range e.threads {
			var t = &e.threads[i]
			t.engine = e
			t.evaluator = e.buildEvaluator()
		}
	}
}

func (e *Engine) Search(ctx context.Context, searchParams SearchParams) SearchInfo {
	e.start = time.Now()
	e.Prepare()
	var p = &searchParams.Positions[len(searchParams.Positions)-1]
	e.timeManager = newTimeManager(ctx, e.start, searchParams.Limits, p)
	defer e.timeManager.Close()
	e.transTable.IncDate()
	e.transTable.PerformIncrementalGC(gcClustersPerSearch)
	e.historyKeys = getHistoryKeys(searchParams.Positions)
	for i := range e.threads {
		var t = &e.threads[i]
		t.nodes = 0
		t.stack[0].position = *p
	}
	e.progress = searchParams.Progress
	lazySmp(e)
	for i := range e.threads {
		var t = &e.threads[i]
		e.mainLine.nodes += t.nodes
		t.nodes = 0
	}
	if len(e.mainLine.moves) == 1 && e.mainLine.depth >= 2 {
		var line = e.transTable.ExtractPV(p, Min(e.mainLine.depth, 8))
		if len(line) >= 2 && line[0] == e.mainLine.moves[0] {
			e.mainLine.moves = line
		}
	}
	return e.currentSearchResult()
}

func getHistoryKeys(positions []Position) map[uint64]int {
	var result = make(map[uint64]int)
	for i := range positions {
		result[positions[i].Key]++
	}
	return result
}

func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	for i := range e.threads {
		e.threads[i].clearHistory()
	}
}

func (e *Engine) TransTableSize() int {
	if e.transTable == nil {
		return 0
	}
	return e.transTable.Size()
}

func (e *Engine) currentSearchResult() SearchInfo {
	return SearchInfo{
		Depth:    e.mainLine.depth,
		MainLine: e.mainLine.moves,
		Score:    newUsiScore(e.mainLine.score),
		Nodes:    e.mainLine.nodes,
		Time:     time.Since(e.start),
	}
}

func (t *thread) clearPV(height int) {
	t.stack[height].pv.clear()
}

func (t *thread) assignPV(height int, move Move) {
	t.stack[height].pv.assign(move, &t.stack[height+1].pv)
}

func (t *thread) initMoveIterator(height int, transMove Move) *moveIterator {
	var mi = &moveIterator{
		position:  &t.stack[height].position,
		buffer:    t.stack[height].moveList[:],
		history:   t.getHistoryContext(height),
		transMove: transMove,
		killer1:   t.stack[height].killer1,
		killer2:   t.stack[height].killer2,
	}
	mi.Init()
	return mi
}

func (pv *pv) clear() {
	pv.size = 0
}

func (pv *pv) assign(m Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += child.size
		copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pv) toSlice() []Move {
	var result = make([]Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}

type EvaluatorAdapter struct {
	evaluator Evaluator
}

func (e *EvaluatorAdapter) Init(p *Position) {

}

func (e *EvaluatorAdapter) MakeMove(p *Position, m Move) {

}

func (e *EvaluatorAdapter) UnmakeMove() {

}

func (e *EvaluatorAdapter) EvaluateQuick(p *Position) int {
	return e.evaluator.Evaluate(p)
}

func (e *Engine) buildEvaluator() UpdatableEvaluator {
	var evaluationService = e.evalBuilder()
	if ue, ok := evaluationService.(UpdatableEvaluator); ok {
		return ue
	}
	if ev, ok := evaluationService.(Evaluator); ok {
		return &EvaluatorAdapter{evaluator: ev}
	}
	panic(errors.New("bad eval builder"))
}
