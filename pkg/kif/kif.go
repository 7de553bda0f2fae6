// Package kif reads game records in the KIF format produced by most
// Japanese shogi clients. Files are Shift-JIS more often than UTF-8,
// so both encodings are accepted.
package kif

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

type Game struct {
	Sente     string
	Gote      string
	Result    string
	Positions []shogi.Position // initial position plus one entry per move
	Moves     []shogi.Move
}

// A move line carries clock info after whitespace, a terminal marker
// does not: "  12 ７六歩(77)   ( 0:01/00:00:01)" vs "  34 投了".
var moveLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s+\(`)
var terminalLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s*$`)
var fromSquareRe = regexp.MustCompile(`\((\d)(\d)\)`)

var terminalMarkers = map[string]string{
	"投了":   "resign",
	"中断":   "abort",
	"持将棋":  "draw",
	"千日手":  "draw",
	"詰み":   "mate",
	"切れ負け": "timeout",
	"反則勝ち": "foul",
	"反則負け": "foul",
	"入玉勝ち": "entering_king",
	"勝ち宣言": "entering_king",
}

func ReadGameFile(path string) (*Game, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadGame(bytes.NewReader(data))
}

func ReadGame(r io.Reader) (*Game, error) {
	var data, err = io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := decode(data)
	if err != nil {
		return nil, err
	}
	var lines = strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	var game = &Game{
		Sente: headerValue(lines, "先手"),
		Gote:  headerValue(lines, "後手"),
	}

	if err = checkHandicap(lines); err != nil {
		return nil, err
	}
	var p, perr = shogi.NewPositionFromSfen(shogi.InitialPositionSfen)
	if perr != nil {
		return nil, perr
	}
	game.Positions = []shogi.Position{p}

	var prevDest = shogi.SquareNone
	for i, line := range lines {
		var match = moveLineRe.FindStringSubmatch(line)
		if len(match) == 0 {
			match = terminalLineRe.FindStringSubmatch(line)
		}
		if len(match) == 0 {
			continue
		}
		var token = strings.TrimSpace(match[2])
		if token == "" {
			continue
		}
		if result, ok := terminalMarkers[token]; ok {
			game.Result = result
			break
		}
		var usiMove, dest, err = moveTokenToUsi(token, prevDest)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		var last = game.Positions[len(game.Positions)-1]
		var move = last.ParseMove(usiMove)
		if move == shogi.MoveEmpty {
			return nil, fmt.Errorf("line %d: illegal move %v", i+1, usiMove)
		}
		var child shogi.Position
		if !last.MakeMove(move, &child) {
			return nil, fmt.Errorf("line %d: illegal move %v", i+1, usiMove)
		}
		game.Positions = append(game.Positions, child)
		game.Moves = append(game.Moves, move)
		prevDest = dest
	}
	return game, nil
}

// CollectFiles lists all .kif files under root in sorted order.
func CollectFiles(root string) ([]string, error) {
	var files []string
	var err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".kif") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func decode(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	var decoded, err = io.ReadAll(transform.NewReader(
		bytes.NewReader(data), japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("kif: not UTF-8 or Shift-JIS")
	}
	return string(decoded), nil
}

func headerValue(lines []string, key string) string {
	for _, line := range lines {
		var trim = strings.TrimSpace(line)
		for _, prefix := range []string{key + "：", key + ":"} {
			if strings.HasPrefix(trim, prefix) {
				return strings.TrimSpace(strings.TrimPrefix(trim, prefix))
			}
		}
	}
	return ""
}

func checkHandicap(lines []string) error {
	for _, line := range lines {
		var trim = strings.TrimSpace(line)
		if strings.HasPrefix(trim, "手合割") && !strings.Contains(trim, "平手") {
			return errors.New("kif: handicap games are not supported")
		}
	}
	return nil
}

// moveTokenToUsi translates one Japanese move token, like ７六歩(77) or
// 同　銀(31), to USI text. prevDest resolves the 同 shorthand.
func moveTokenToUsi(token string, prevDest int) (string, int, error) {
	var work = token
	var dest int
	if strings.HasPrefix(work, "同") {
		if prevDest == shogi.SquareNone {
			return "", 0, errors.New("同 without a previous move")
		}
		dest = prevDest
		work = strings.TrimLeft(strings.TrimPrefix(work, "同"), " 　")
	} else {
		var runes = []rune(work)
		if len(runes) < 2 {
			return "", 0, fmt.Errorf("invalid move token %q", token)
		}
		var file, okFile = parseFileRune(runes[0])
		var rank, okRank = parseRankRune(runes[1])
		if !okFile || !okRank {
			return "", 0, fmt.Errorf("invalid destination in %q", token)
		}
		dest = shogi.MakeSquare(file-1, rank-1)
		work = string(runes[2:])
	}

	var from = shogi.SquareNone
	if match := fromSquareRe.FindStringSubmatch(work); len(match) == 3 {
		var file = int(match[1][0] - '1')
		var rank = int(match[2][0] - '1')
		if file < 0 || file > 8 || rank < 0 || rank > 8 {
			return "", 0, fmt.Errorf("invalid source square in %q", token)
		}
		from = shogi.MakeSquare(file, rank)
		work = fromSquareRe.ReplaceAllString(work, "")
	}

	var noPromote = strings.Contains(work, "不成")
	if noPromote {
		work = strings.Replace(work, "不成", "", 1)
	}
	var promote = false
	if strings.Contains(work, "成") && !isPromotedPieceName(work) {
		promote = true
		work = strings.Replace(work, "成", "", 1)
	}
	var drop = strings.Contains(work, "打")
	if drop {
		work = strings.Replace(work, "打", "", 1)
	}

	var letter, promoted, err = pieceLetter(strings.TrimSpace(work))
	if err != nil {
		return "", 0, fmt.Errorf("%w in %q", err, token)
	}
	if noPromote {
		promote = false
	}

	if drop {
		if promoted {
			return "", 0, fmt.Errorf("cannot drop a promoted piece in %q", token)
		}
		return letter + "*" + shogi.SquareName(dest), dest, nil
	}
	if from == shogi.SquareNone {
		return "", 0, fmt.Errorf("missing source square in %q", token)
	}
	var usiText = shogi.SquareName(from) + shogi.SquareName(dest)
	if promote {
		usiText += "+"
	}
	return usiText, dest, nil
}

func parseFileRune(r rune) (int, bool) {
	if r >= '1' && r <= '9' {
		return int(r - '0'), true
	}
	if r >= '１' && r <= '９' {
		return int(r-'１') + 1, true
	}
	return 0, false
}

var kanjiDigits = [...]rune{'一', '二', '三', '四', '五', '六', '七', '八', '九'}

func parseRankRune(r rune) (int, bool) {
	for i, d := range kanjiDigits {
		if r == d {
			return i + 1, true
		}
	}
	return 0, false
}

var pieceNames = []struct {
	name     string
	letter   string
	promoted bool
}{
	{"成銀", "S", true},
	{"成桂", "N", true},
	{"成香", "L", true},
	{"と", "P", true},
	{"馬", "B", true},
	{"龍", "R", true},
	{"竜", "R", true},
	{"玉", "K", false},
	{"王", "K", false},
	{"飛", "R", false},
	{"角", "B", false},
	{"金", "G", false},
	{"銀", "S", false},
	{"桂", "N", false},
	{"香", "L", false},
	{"歩", "P", false},
}

func isPromotedPieceName(text string) bool {
	for _, def := range pieceNames {
		if def.promoted && strings.HasPrefix(strings.TrimSpace(text), def.name) {
			return true
		}
	}
	return false
}

func pieceLetter(text string) (string, bool, error) {
	for _, def := range pieceNames {
		if strings.HasPrefix(text, def.name) {
			return def.letter, def.promoted, nil
		}
	}
	return "", false, errors.New("unknown piece")
}
