package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/tsubame-shogi/tsubame/pkg/engine"
	material "github.com/tsubame-shogi/tsubame/pkg/eval/material"
	nnue "github.com/tsubame-shogi/tsubame/pkg/eval/nnue"
	"github.com/tsubame-shogi/tsubame/pkg/usi"
)

const (
	name   = "Tsubame"
	author = "Tsubame authors"
)

var (
	versionName = "dev"
	evalFile    string
	logger      *log.Logger
)

func main() {
	flag.StringVar(&evalFile, "eval", "", "path to a network weights file")
	flag.Parse()

	logger = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)

	logger.Println(name,
		"VersionName", versionName,
		"RuntimeVersion", runtime.Version(),
		"GOARCH", runtime.GOARCH,
		"GOOS", runtime.GOOS,
		"NumCPU", runtime.NumCPU(),
	)

	var eng = engine.NewEngine(buildEvaluator)

	var protocol = usi.New(name, author, versionName, eng,
		[]usi.Option{
			&usi.IntOption{Name: "USI_Hash", Min: 4, Max: 1 << 16, Value: &eng.Hash},
			&usi.IntOption{Name: "Threads", Min: 1, Max: runtime.NumCPU(), Value: &eng.Threads},
			&usi.StringOption{Name: "EvalFile", Value: &evalFile},
			&usi.BoolOption{Name: "USI_Ponder", Value: new(bool)},
			&usi.BoolOption{Name: "AspirationWindows", Value: &eng.Options.AspirationWindows},
			&usi.BoolOption{Name: "NullMovePruning", Value: &eng.Options.NullMovePruning},
			&usi.BoolOption{Name: "ReverseFutility", Value: &eng.Options.ReverseFutility},
			&usi.BoolOption{Name: "Probcut", Value: &eng.Options.Probcut},
			&usi.BoolOption{Name: "SingularExt", Value: &eng.Options.SingularExt},
			&usi.BoolOption{Name: "CheckExt", Value: &eng.Options.CheckExt},
			&usi.BoolOption{Name: "Lmp", Value: &eng.Options.Lmp},
			&usi.BoolOption{Name: "Futility", Value: &eng.Options.Futility},
			&usi.BoolOption{Name: "See", Value: &eng.Options.See},
		},
	)
	protocol.Run(logger)
}

// buildEvaluator falls back to bare material counting when no weights
// file is configured or the file cannot be read.
func buildEvaluator() interface{} {
	if evalFile != "" {
		var weights, err = nnue.LoadFileWeights(evalFile)
		if err != nil {
			logger.Println("load weights:", err)
		} else {
			return nnue.NewEvaluationService(weights)
		}
	}
	return material.NewEvaluationService()
}
