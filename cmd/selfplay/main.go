package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/tsubame-shogi/tsubame/pkg/engine"
	material "github.com/tsubame-shogi/tsubame/pkg/eval/material"
	nnue "github.com/tsubame-shogi/tsubame/pkg/eval/nnue"
)

type Config struct {
	Concurrency int
	OpeningsDir string
	MoveTime    int
	EvalFileA   string
	EvalFileB   string
}

var config Config

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	var err = run()
	if err != nil {
		log.Println(err)
	}
}

func run() error {
	flag.IntVar(&config.Concurrency, "concurrency", 4, "number of concurrent games")
	flag.StringVar(&config.OpeningsDir, "openings", "", "directory with .kif opening files")
	flag.IntVar(&config.MoveTime, "movetime", 100, "milliseconds per move")
	flag.StringVar(&config.EvalFileA, "evala", "", "weights file for engine A")
	flag.StringVar(&config.EvalFileB, "evalb", "", "weights file for engine B")
	flag.Parse()

	log.Printf("%+v", config)

	return runMatch(context.Background(), config.Concurrency,
		timeControl{FixedTime: time.Duration(config.MoveTime) * time.Millisecond})
}

func newEngineA() IEngine {
	return newEngine(config.EvalFileA)
}

func newEngineB() IEngine {
	return newEngine(config.EvalFileB)
}

func newEngine(evalFile string) IEngine {
	var eng = engine.NewEngine(func() interface{} {
		if evalFile != "" {
			var weights, err = nnue.LoadFileWeights(evalFile)
			if err != nil {
				log.Fatal(err)
			}
			return nnue.NewEvaluationService(weights)
		}
		return material.NewEvaluationService()
	})
	eng.Hash = 128
	eng.Threads = 1
	eng.ProgressMinNodes = 0
	eng.Prepare()
	return eng
}
