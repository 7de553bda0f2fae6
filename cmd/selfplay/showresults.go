package main

import (
	"context"
	"log"
	"math"
)

func showResults(
	ctx context.Context,
	gameResults <-chan gameResult,
) error {
	var games = 0
	var wins, losses, draws int
	for gameResult := range gameResults {
		games++
		log.Printf("Finished game %v: %v {%v}\n",
			gameResult.gameInfo.gameNumber,
			gameResultString(gameResult.result),
			gameResult.comment)
		if gameResult.result == gameResultDraw {
			draws++
		} else if gameResult.result == gameResultBlackWins && gameResult.gameInfo.engineAIsBlack ||
			gameResult.result == gameResultWhiteWins && !gameResult.gameInfo.engineAIsBlack {
			wins++
		} else {
			losses++
		}
		var stat = computeStat(wins, losses, draws)
		log.Printf("Score: %v - %v - %v  [%.3f] %v\n",
			wins, losses, draws, stat.winningFraction, games)
		log.Printf("Elo difference: %.1f, LOS: %.1f %%\n",
			stat.eloDifference, stat.los*100)
	}
	return nil
}

type GameStatistics struct {
	winningFraction float64
	eloDifference   float64
	los             float64
}

func computeStat(wins, losses, draws int) GameStatistics {
	var games = wins + losses + draws
	var winningFraction = (float64(wins) + 0.5*float64(draws)) / float64(games)
	var eloDifference = -math.Log(1/winningFraction-1) * 400 / math.Ln10
	var los = 0.5 + 0.5*math.Erf(float64(wins-losses)/math.Sqrt(2*float64(wins+losses)))
	return GameStatistics{
		winningFraction: winningFraction,
		eloDifference:   eloDifference,
		los:             los,
	}
}

func gameResultString(v int) string {
	if v == gameResultBlackWins {
		return "1-0"
	}
	if v == gameResultWhiteWins {
		return "0-1"
	}
	if v == gameResultDraw {
		return "1/2-1/2"
	}
	return ""
}
