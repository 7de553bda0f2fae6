package usi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

type Engine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, searchParams shogi.SearchParams) shogi.SearchInfo
}

type Protocol struct {
	name         string
	author       string
	version      string
	options      []Option
	engine       Engine
	positions    []shogi.Position
	thinking     bool
	engineOutput chan shogi.SearchInfo
	searchResult shogi.SearchInfo
	cancel       context.CancelFunc
	output       io.Writer
}

func New(name, author, version string, engine Engine, options []Option) *Protocol {
	var initPosition, err = shogi.NewPositionFromSfen(shogi.InitialPositionSfen)
	if err != nil {
		panic(err)
	}
	return &Protocol{
		name:      name,
		author:    author,
		version:   version,
		engine:    engine,
		options:   options,
		positions: []shogi.Position{initPosition},
		output:    os.Stdout,
	}
}

func (usi *Protocol) Run(logger *log.Logger) {
	var commands = make(chan string)

	go func() {
		defer close(commands)
		readCommands(commands)
	}()

	for {
		select {
		case si, ok := <-usi.engineOutput:
			usi.onEngineOutput(si, ok)
		case commandLine, ok := <-commands:
			if !ok {
				//usi quit
				return
			}
			var err = usi.handle(commandLine)
			if err != nil {
				logger.Println(err)
			}
		}
	}
}

func (usi *Protocol) onEngineOutput(si shogi.SearchInfo, ok bool) {
	if ok {
		fmt.Fprintln(usi.output, searchInfoToUsi(si))
		usi.searchResult = si
		return
	}
	if len(usi.searchResult.MainLine) == 0 {
		fmt.Fprintln(usi.output, "bestmove resign")
	} else if len(usi.searchResult.MainLine) >= 2 {
		fmt.Fprintf(usi.output, "bestmove %v ponder %v\n",
			usi.searchResult.MainLine[0], usi.searchResult.MainLine[1])
	} else {
		fmt.Fprintf(usi.output, "bestmove %v\n", usi.searchResult.MainLine[0])
	}
	usi.thinking = false
	usi.cancel = nil
	usi.engineOutput = nil
	usi.searchResult = shogi.SearchInfo{}
}

func readCommands(commands chan<- string) {
	var scanner = bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var commandLine = scanner.Text()
		if commandLine == "quit" {
			return
		}
		if commandLine != "" {
			commands <- commandLine
		}
	}
}

func (usi *Protocol) handle(commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	var commandName = fields[0]
	fields = fields[1:]

	if usi.thinking {
		switch commandName {
		case "stop", "gameover":
			usi.cancel()
			return nil
		case "ponderhit":
			// the ongoing search keeps its clock and reports normally
			return nil
		}
		return errors.New("search is still running")
	}

	var h func(fields []string) error

	switch commandName {
	case "usi":
		h = usi.usiCommand
	case "setoption":
		h = usi.setOptionCommand
	case "isready":
		h = usi.isReadyCommand
	case "position":
		h = usi.positionCommand
	case "go":
		h = usi.goCommand
	case "usinewgame":
		h = usi.usiNewGameCommand
	case "gameover":
		h = usi.gameOverCommand
	case "stop", "ponderhit":
		// no search in flight
		return nil
	}

	if h == nil {
		return errors.New("command not found")
	}

	return h(fields)
}

func (usi *Protocol) usiCommand(fields []string) error {
	fmt.Fprintf(usi.output, "id name %s %s\n", usi.name, usi.version)
	fmt.Fprintf(usi.output, "id author %s\n", usi.author)
	for _, option := range usi.options {
		fmt.Fprintln(usi.output, option.UsiString())
	}
	fmt.Fprintln(usi.output, "usiok")
	return nil
}

func (usi *Protocol) setOptionCommand(fields []string) error {
	if len(fields) < 4 {
		return errors.New("invalid setoption arguments")
	}
	var name, value = fields[1], fields[3]
	for _, option := range usi.options {
		if strings.EqualFold(option.UsiName(), name) {
			return option.Set(value)
		}
	}
	return errors.New("unhandled option")
}

func (usi *Protocol) isReadyCommand(fields []string) error {
	usi.engine.Prepare()
	fmt.Fprintln(usi.output, "readyok")
	return nil
}

func (usi *Protocol) positionCommand(fields []string) error {
	var args = fields
	if len(args) == 0 {
		return errors.New("invalid position arguments")
	}
	var token = args[0]
	var sfen string
	var movesIndex = findIndexString(args, "moves")
	if token == "startpos" {
		sfen = shogi.InitialPositionSfen
	} else if token == "sfen" {
		if movesIndex == -1 {
			sfen = strings.Join(args[1:], " ")
		} else {
			sfen = strings.Join(args[1:movesIndex], " ")
		}
	} else {
		return errors.New("unknown position command")
	}
	var p, err = shogi.NewPositionFromSfen(sfen)
	if err != nil {
		return err
	}
	var positions = []shogi.Position{p}
	if movesIndex >= 0 && movesIndex+1 < len(args) {
		for _, smove := range args[movesIndex+1:] {
			var last = positions[len(positions)-1]
			var move = last.ParseMove(smove)
			if move == shogi.MoveEmpty {
				return errors.New("parse move failed")
			}
			var child shogi.Position
			if !last.MakeMove(move, &child) {
				return errors.New("parse move failed")
			}
			positions = append(positions, child)
		}
	}
	usi.positions = positions
	return nil
}

func (usi *Protocol) goCommand(fields []string) error {
	var limits = parseLimits(fields)
	var ctx, cancel = context.WithCancel(context.TODO())
	usi.cancel = cancel
	usi.thinking = true
	usi.engineOutput = make(chan shogi.SearchInfo, 3)
	go func() {
		var searchResult = usi.engine.Search(ctx, shogi.SearchParams{
			Positions: usi.positions,
			Limits:    limits,
			Progress: func(si shogi.SearchInfo) {
				select {
				case usi.engineOutput <- si:
				default:
				}
			},
		})
		usi.engineOutput <- searchResult
		close(usi.engineOutput)
	}()
	return nil
}

func (usi *Protocol) usiNewGameCommand(fields []string) error {
	usi.engine.Clear()
	return nil
}

func (usi *Protocol) gameOverCommand(fields []string) error {
	usi.engine.Clear()
	return nil
}

func searchInfoToUsi(si shogi.SearchInfo) string {
	var sb = &strings.Builder{}
	fmt.Fprintf(sb, "info depth %v", si.Depth)
	if si.Score.Mate != 0 {
		fmt.Fprintf(sb, " score mate %v", si.Score.Mate)
	} else {
		fmt.Fprintf(sb, " score cp %v", si.Score.Centipawns)
	}
	var timeMs = si.Time.Milliseconds()
	var nps = si.Nodes * 1000 / (timeMs + 1)
	fmt.Fprintf(sb, " nodes %v time %v nps %v", si.Nodes, timeMs, nps)
	if len(si.MainLine) != 0 {
		fmt.Fprintf(sb, " pv")
		for _, move := range si.MainLine {
			sb.WriteString(" ")
			sb.WriteString(move.String())
		}
	}
	return sb.String()
}

func parseLimits(args []string) (result shogi.LimitsType) {
	// a flag with a missing or unparsable value reads as zero
	var intValue = func(i int) int {
		if i >= len(args) {
			return 0
		}
		var v, _ = strconv.Atoi(args[i])
		return v
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "ponder":
			result.Ponder = true
		case "btime":
			result.BlackTime = intValue(i + 1)
			i++
		case "wtime":
			result.WhiteTime = intValue(i + 1)
			i++
		case "binc":
			result.BlackIncrement = intValue(i + 1)
			i++
		case "winc":
			result.WhiteIncrement = intValue(i + 1)
			i++
		case "byoyomi":
			result.Byoyomi = intValue(i + 1)
			i++
		case "depth":
			result.Depth = intValue(i + 1)
			i++
		case "nodes":
			result.Nodes = intValue(i + 1)
			i++
		case "mate":
			if i+1 < len(args) && args[i+1] == "infinite" {
				result.Infinite = true
			} else {
				result.Mate = intValue(i + 1)
			}
			i++
		case "movetime":
			result.MoveTime = intValue(i + 1)
			i++
		case "infinite":
			result.Infinite = true
		}
	}
	return
}

func findIndexString(slice []string, value string) int {
	for p, v := range slice {
		if v == value {
			return p
		}
	}
	return -1
}
