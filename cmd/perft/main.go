package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pkg/profile"

	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

func main() {
	var depth int
	var sfen string
	var divide bool
	var bench bool
	var cpuProfile bool
	flag.IntVar(&depth, "depth", 5, "perft depth")
	flag.StringVar(&sfen, "sfen", shogi.InitialPositionSfen, "starting position")
	flag.BoolVar(&divide, "divide", false, "print per-move node counts")
	flag.BoolVar(&bench, "bench", false, "run the search benchmark suite instead of perft")
	flag.BoolVar(&cpuProfile, "cpuprofile", false, "write a cpu profile")
	flag.Parse()

	if cpuProfile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	if bench {
		if err := benchmark(10); err != nil {
			log.Fatal(err)
		}
		return
	}

	var p, err = shogi.NewPositionFromSfen(sfen)
	if err != nil {
		log.Fatal(err)
	}

	var start = time.Now()
	var nodes int64
	if divide {
		var buffer [shogi.MaxMoves]shogi.OrderedMove
		for _, ml := range p.GenerateLegalMoves(buffer[:]) {
			var child shogi.Position
			p.MakeMove(ml.Move, &child)
			var n = perft(&child, depth-1)
			fmt.Printf("%v: %v\n", ml.Move, n)
			nodes += n
		}
	} else {
		nodes = perft(&p, depth)
	}
	var elapsed = time.Since(start)
	fmt.Printf("perft(%v) = %v\n", depth, nodes)
	fmt.Printf("time %v, %v knps\n", elapsed, nodes/(1+elapsed.Milliseconds()))
}

func perft(p *shogi.Position, depth int) int64 {
	if depth <= 0 {
		return 1
	}
	var result int64
	var ml [shogi.MaxMoves]shogi.OrderedMove
	var child shogi.Position
	for _, om := range p.GenerateMoves(ml[:]) {
		if p.MakeMove(om.Move, &child) {
			if depth == 1 {
				result++
			} else {
				result += perft(&child, depth-1)
			}
		}
	}
	return result
}
