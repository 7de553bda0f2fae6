package usi

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

type fakeEngine struct {
	prepared   int
	cleared    int
	lastParams shogi.SearchParams
	result     shogi.SearchInfo
}

func (f *fakeEngine) Prepare() { f.prepared++ }
func (f *fakeEngine) Clear()   { f.cleared++ }
func (f *fakeEngine) Search(ctx context.Context, sp shogi.SearchParams) shogi.SearchInfo {
	f.lastParams = sp
	return f.result
}

func newTestProtocol() (*Protocol, *fakeEngine, *bytes.Buffer) {
	var eng = &fakeEngine{}
	var out = &bytes.Buffer{}
	var hash = 16
	var p = New("Tsubame", "Tsubame authors", "dev", eng, []Option{
		&IntOption{Name: "USI_Hash", Min: 4, Max: 1 << 16, Value: &hash},
	})
	p.output = out
	return p, eng, out
}

func (usi *Protocol) drainSearch(t *testing.T) {
	t.Helper()
	var timeout = time.After(5 * time.Second)
	for {
		select {
		case si, ok := <-usi.engineOutput:
			usi.onEngineOutput(si, ok)
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("search did not finish")
		}
	}
}

func TestUsiCommand(t *testing.T) {
	var p, _, out = newTestProtocol()
	if err := p.handle("usi"); err != nil {
		t.Fatal(err)
	}
	var text = out.String()
	for _, want := range []string{"id name Tsubame", "id author", "option name USI_Hash", "usiok"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in %q", want, text)
		}
	}
}

func TestIsReady(t *testing.T) {
	var p, eng, out = newTestProtocol()
	if err := p.handle("isready"); err != nil {
		t.Fatal(err)
	}
	if eng.prepared != 1 || !strings.Contains(out.String(), "readyok") {
		t.Fatal(eng.prepared, out.String())
	}
}

func TestSetOption(t *testing.T) {
	var p, _, _ = newTestProtocol()
	if err := p.handle("setoption name USI_Hash value 64"); err != nil {
		t.Fatal(err)
	}
	if err := p.handle("setoption name USI_Hash value 1"); err == nil {
		t.Fatal("accepted out of range value")
	}
	if err := p.handle("setoption name NoSuchOption value 1"); err == nil {
		t.Fatal("accepted unknown option")
	}
}

func TestPositionCommand(t *testing.T) {
	var p, _, _ = newTestProtocol()
	if err := p.handle("position startpos moves 7g7f 3c3d"); err != nil {
		t.Fatal(err)
	}
	if len(p.positions) != 3 {
		t.Fatal(len(p.positions))
	}
	if !p.positions[2].BlackMove {
		t.Fatal("wrong side to move after two moves")
	}
}

func TestPositionSfen(t *testing.T) {
	var p, _, _ = newTestProtocol()
	var sfen = "8l/1l+R2P3/p2pBG1pp/kps1p4/Nn1P2G2/P1P1P2PP/1PS6/1KSG3+r1/LN2+p3L w Sbgn3p 124"
	if err := p.handle("position sfen " + sfen); err != nil {
		t.Fatal(err)
	}
	if len(p.positions) != 1 || p.positions[0].BlackMove {
		t.Fatal(p.positions)
	}
}

func TestPositionRejectsIllegalMove(t *testing.T) {
	var p, _, _ = newTestProtocol()
	if err := p.handle("position startpos moves 7g7f 3c3d"); err != nil {
		t.Fatal(err)
	}
	if err := p.handle("position startpos moves 7g7e"); err == nil {
		t.Fatal("accepted an illegal move")
	}
	// a failed position command leaves the previous line intact
	if len(p.positions) != 3 {
		t.Fatal(len(p.positions))
	}
}

func TestPositionRejectsMalformedSfen(t *testing.T) {
	var p, _, _ = newTestProtocol()
	if err := p.handle("position sfen lnsgk w - 1"); err == nil {
		t.Fatal("accepted a malformed sfen")
	}
}

func TestGoReportsBestMoveAndPonder(t *testing.T) {
	var p, eng, out = newTestProtocol()
	var start, _ = shogi.NewPositionFromSfen(shogi.InitialPositionSfen)
	var m1 = start.ParseMove("7g7f")
	var child shogi.Position
	start.MakeMove(m1, &child)
	var m2 = child.ParseMove("3c3d")
	eng.result = shogi.SearchInfo{
		Depth:    8,
		Score:    shogi.UsiScore{Centipawns: 31},
		Nodes:    12345,
		Time:     time.Second,
		MainLine: []shogi.Move{m1, m2},
	}
	if err := p.handle("go btime 60000 wtime 60000 byoyomi 10000"); err != nil {
		t.Fatal(err)
	}
	p.drainSearch(t)
	var text = out.String()
	if !strings.Contains(text, "info depth 8 score cp 31 nodes 12345") {
		t.Fatal(text)
	}
	if !strings.Contains(text, "bestmove 7g7f ponder 3c3d") {
		t.Fatal(text)
	}
	if eng.lastParams.Limits.Byoyomi != 10000 || eng.lastParams.Limits.BlackTime != 60000 {
		t.Fatal(eng.lastParams.Limits)
	}
	if p.thinking {
		t.Fatal("still thinking after the search finished")
	}
}

func TestGoReportsResign(t *testing.T) {
	var p, _, out = newTestProtocol()
	if err := p.handle("go depth 1"); err != nil {
		t.Fatal(err)
	}
	p.drainSearch(t)
	if !strings.Contains(out.String(), "bestmove resign") {
		t.Fatal(out.String())
	}
}

func TestCommandsRejectedWhileThinking(t *testing.T) {
	var p, _, _ = newTestProtocol()
	p.thinking = true
	p.cancel = func() {}
	if err := p.handle("position startpos"); err == nil {
		t.Fatal("accepted a command during search")
	}
	if err := p.handle("stop"); err != nil {
		t.Fatal(err)
	}
	if err := p.handle("ponderhit"); err != nil {
		t.Fatal(err)
	}
}

func TestGameOverClearsEngine(t *testing.T) {
	var p, eng, _ = newTestProtocol()
	if err := p.handle("gameover win"); err != nil {
		t.Fatal(err)
	}
	if err := p.handle("usinewgame"); err != nil {
		t.Fatal(err)
	}
	if eng.cleared != 2 {
		t.Fatal(eng.cleared)
	}
}

func TestParseLimits(t *testing.T) {
	var limits = parseLimits(strings.Fields(
		"btime 1000 wtime 2000 binc 30 winc 40 byoyomi 5000 depth 9 nodes 77 movetime 250"))
	if limits.BlackTime != 1000 || limits.WhiteTime != 2000 ||
		limits.BlackIncrement != 30 || limits.WhiteIncrement != 40 ||
		limits.Byoyomi != 5000 || limits.Depth != 9 ||
		limits.Nodes != 77 || limits.MoveTime != 250 {
		t.Fatal(limits)
	}
	if !parseLimits([]string{"infinite"}).Infinite {
		t.Fatal("infinite not parsed")
	}
	if !parseLimits([]string{"ponder"}).Ponder {
		t.Fatal("ponder not parsed")
	}
	if !parseLimits([]string{"mate", "infinite"}).Infinite {
		t.Fatal("mate infinite not parsed")
	}
	if parseLimits([]string{"mate", "30000"}).Mate != 30000 {
		t.Fatal("mate time not parsed")
	}
}

func TestParseLimitsTruncated(t *testing.T) {
	// a flag with no value must not crash the command loop
	for _, text := range []string{
		"btime", "wtime", "binc", "winc", "byoyomi",
		"depth", "nodes", "movetime", "mate",
		"btime 1000 wtime",
	} {
		var limits = parseLimits(strings.Fields(text))
		if limits.Infinite || limits.Ponder {
			t.Fatal(text, limits)
		}
	}
	if got := parseLimits(strings.Fields("btime 1000 wtime")).BlackTime; got != 1000 {
		t.Fatal(got)
	}
}

func TestSearchInfoMateScore(t *testing.T) {
	var text = searchInfoToUsi(shogi.SearchInfo{Depth: 5, Score: shogi.UsiScore{Mate: 3}})
	if !strings.Contains(text, "score mate 3") {
		t.Fatal(text)
	}
}
