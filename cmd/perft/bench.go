package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tsubame-shogi/tsubame/pkg/engine"
	material "github.com/tsubame-shogi/tsubame/pkg/eval/material"
	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

// Fixed suite of middlegame positions for comparing search speed
// between builds.
var benchSfens = []string{
	shogi.InitialPositionSfen,
	"l6nl/5+P1gk/2np1S3/p1p4Pp/3P2Sp1/1PPb2P1P/P5GS1/R8/LN4bKL w RGgsn5p 1",
	"l4S2l/4g1gs1/5p1p1/pr2N1pkp/4Gn3/PP3PPPP/2GPP4/1K7/L3r+s2L b BS2N5Pb 1",
	"8l/1l+R2P3/p2pBG1pp/kps1p4/Nn1P2G2/P1P1P2PP/1PS6/1KSG3+r1/LN2+p3L w Sbgn3p 124",
}

func benchmark(depth int) error {
	log.Println("benchmark started")
	defer log.Println("benchmark finished")

	var eng = engine.NewEngine(func() interface{} {
		return material.NewEvaluationService()
	})
	eng.Hash = 128
	eng.Threads = 1
	eng.ProgressMinNodes = 0
	eng.Prepare()

	var ctx = context.Background()
	var start = time.Now()
	var nodes int64
	for _, sfen := range benchSfens {
		var p, err = shogi.NewPositionFromSfen(sfen)
		if err != nil {
			return err
		}
		var searchInfo = eng.Search(ctx, shogi.SearchParams{
			Positions: []shogi.Position{p},
			Limits:    shogi.LimitsType{Depth: depth},
		})
		nodes += searchInfo.Nodes
	}
	var elapsed = time.Since(start)
	fmt.Println("Time", elapsed)
	fmt.Println("Nodes", nodes)
	fmt.Println("kNPS", nodes/(1+elapsed.Milliseconds()))
	return nil
}
