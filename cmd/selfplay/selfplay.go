package main

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsubame-shogi/tsubame/pkg/kif"
	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

const (
	gameResultDraw = iota
	gameResultBlackWins
	gameResultWhiteWins
)

const (
	openingPlies = 16
	maxGamePlies = 512
)

type IEngine interface {
	Clear()
	Search(ctx context.Context, searchParams shogi.SearchParams) shogi.SearchInfo
}

type timeControl struct {
	FixedNodes int
	FixedTime  time.Duration
}

type gameInfo struct {
	opening        []shogi.Position
	engineAIsBlack bool
	gameNumber     int
}

type gameResult struct {
	gameInfo gameInfo
	comment  string
	result   int
}

func runMatch(ctx context.Context, gameConcurrency int, tc timeControl) error {
	log.Println("match started")
	defer log.Println("match finished")

	log.Println("NumCPU", runtime.NumCPU(),
		"GOMAXPROCS", runtime.GOMAXPROCS(0),
		"gameConcurrency", gameConcurrency)

	g, ctx := errgroup.WithContext(ctx)

	var gameInfos = make(chan gameInfo)
	var gameResults = make(chan gameResult)

	g.Go(func() error {
		defer close(gameInfos)
		return loadOpenings(ctx, gameInfos)
	})

	g.Go(func() error {
		return showResults(ctx, gameResults)
	})

	var wg = &sync.WaitGroup{}

	for i := 0; i < gameConcurrency; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return playGames(ctx, tc, gameInfos, gameResults)
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(gameResults)
		return nil
	})

	return g.Wait()
}

func loadOpenings(ctx context.Context, gameInfos chan<- gameInfo) error {
	var openings [][]shogi.Position
	if config.OpeningsDir == "" {
		var p, err = shogi.NewPositionFromSfen(shogi.InitialPositionSfen)
		if err != nil {
			return err
		}
		openings = append(openings, []shogi.Position{p})
	} else {
		var files, err = kif.CollectFiles(config.OpeningsDir)
		if err != nil {
			return err
		}
		for _, file := range files {
			var game, err = kif.ReadGameFile(file)
			if err != nil {
				log.Println("skip opening:", file, err)
				continue
			}
			var plies = shogi.Min(openingPlies, len(game.Positions)-1)
			openings = append(openings, game.Positions[:plies+1])
		}
	}
	if len(openings) == 0 {
		return errors.New("no openings found")
	}

	// each opening is played twice with colors swapped
	for i, opening := range openings {
		for _, aIsBlack := range []bool{true, false} {
			var number = 2 * i
			if !aIsBlack {
				number++
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case gameInfos <- gameInfo{opening: opening, engineAIsBlack: aIsBlack, gameNumber: 1 + number}:
			}
		}
	}
	return nil
}

func playGames(
	ctx context.Context,
	tc timeControl,
	gameInfos <-chan gameInfo,
	gameResults chan<- gameResult,
) error {
	var engineA = newEngineA()
	var engineB = newEngineB()
	for gameInfo := range gameInfos {
		var res, err = playGame(ctx, engineA, engineB, tc, gameInfo)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case gameResults <- res:
		}
	}
	return nil
}

func playGame(
	ctx context.Context,
	engineA, engineB IEngine,
	tc timeControl,
	info gameInfo,
) (gameResult, error) {
	engineA.Clear()
	engineB.Clear()

	var positions = make([]shogi.Position, len(info.opening))
	copy(positions, info.opening)

	var limits shogi.LimitsType
	if tc.FixedNodes > 0 {
		limits.Nodes = tc.FixedNodes
	} else {
		limits.MoveTime = int(tc.FixedTime.Milliseconds())
	}

	for {
		if err := ctx.Err(); err != nil {
			return gameResult{}, err
		}
		var current = &positions[len(positions)-1]

		if len(positions) >= maxGamePlies {
			return gameResult{gameInfo: info, result: gameResultDraw, comment: "move limit"}, nil
		}
		if repetitions(positions) >= 4 {
			return gameResult{gameInfo: info, result: gameResultDraw, comment: "repetition"}, nil
		}

		var eng IEngine
		if current.BlackMove == info.engineAIsBlack {
			eng = engineA
		} else {
			eng = engineB
		}
		var searchResult = eng.Search(ctx, shogi.SearchParams{
			Positions: positions,
			Limits:    limits,
		})
		if len(searchResult.MainLine) == 0 {
			// checkmated or stalemated, both lose in shogi
			var result = gameResultBlackWins
			if current.BlackMove {
				result = gameResultWhiteWins
			}
			return gameResult{gameInfo: info, result: result, comment: "mate"}, nil
		}
		var child shogi.Position
		if !current.MakeMove(searchResult.MainLine[0], &child) {
			return gameResult{}, errors.New("engine played an illegal move")
		}
		positions = append(positions, child)
	}
}

func repetitions(positions []shogi.Position) int {
	var last = positions[len(positions)-1]
	var count = 0
	for i := range positions {
		if positions[i].Key == last.Key {
			count++
		}
	}
	return count
}
