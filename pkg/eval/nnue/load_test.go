package eval

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/tsubame-shogi/tsubame/pkg/shogi"
)

func buildWeightsBlob(hidden int) []byte {
	var buf bytes.Buffer
	buf.WriteString(weightsMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(weightsVersion))
	binary.Write(&buf, binary.LittleEndian, uint32(hidden))
	binary.Write(&buf, binary.LittleEndian, make([]int16, InputSize*hidden))
	binary.Write(&buf, binary.LittleEndian, make([]int16, hidden))
	binary.Write(&buf, binary.LittleEndian, make([]int16, 2*hidden))
	binary.Write(&buf, binary.LittleEndian, int32(0))
	return buf.Bytes()
}

func TestLoadWeights(t *testing.T) {
	var blob = buildWeightsBlob(4)
	var w, err = LoadWeights(bytes.NewReader(blob))
	if err != nil {
		t.Fatal(err)
	}
	if w.HiddenSize != 4 ||
		len(w.HiddenWeights) != InputSize*4 ||
		len(w.OutputWeights) != 8 {
		t.Fatal(w.HiddenSize)
	}
}

func TestLoadWeightsRejectsMalformed(t *testing.T) {
	var good = buildWeightsBlob(2)
	var bad = [][]byte{
		{},
		[]byte("XXXX"),
		good[:8],
		good[:len(good)-2],
		append(append([]byte{}, good...), 0),
	}
	var wrongVersion = append([]byte{}, good...)
	wrongVersion[4] = 99
	bad = append(bad, wrongVersion)
	for i, blob := range bad {
		if _, err := LoadWeights(bytes.NewReader(blob)); err == nil {
			t.Errorf("blob %d: accepted malformed weights", i)
		}
	}
}

func TestIncrementalAccumulator(t *testing.T) {
	var w, err = LoadWeights(bytes.NewReader(buildWeightsBlob(4)))
	if err != nil {
		t.Fatal(err)
	}
	// give features distinct weights so drift shows up
	for i := range w.HiddenWeights {
		w.HiddenWeights[i] = int16(i % 23)
	}
	for i := range w.HiddenBiases {
		w.HiddenBiases[i] = int16(i)
	}
	for i := range w.OutputWeights {
		w.OutputWeights[i] = int16(1 + i)
	}

	var e = NewEvaluationService(w)
	var fresh = NewEvaluationService(w)
	var p, perr = shogi.NewPositionFromSfen(shogi.InitialPositionSfen)
	if perr != nil {
		t.Fatal(perr)
	}
	e.Init(&p)

	var moves = []string{"7g7f", "3c3d", "8h2b+", "3a2b", "5i5h"}
	for _, text := range moves {
		var m = p.ParseMove(text)
		if m == shogi.MoveEmpty {
			t.Fatal(text)
		}
		var child shogi.Position
		p.MakeMove(m, &child)
		e.MakeMove(&p, m)
		p = child
		if got, want := e.EvaluateQuick(&p), fresh.Evaluate(&p); got != want {
			t.Fatalf("after %v: incremental %v != fresh %v", text, got, want)
		}
	}
}
