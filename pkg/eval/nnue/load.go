package eval

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Weight file layout, little endian:
//
//	magic   [4]byte "TSNW"
//	version uint32
//	hidden  uint32
//	hidden weights  int16 x InputSize x hidden
//	hidden biases   int16 x hidden
//	output weights  int16 x 2 x hidden
//	output bias     int32
const (
	weightsMagic   = "TSNW"
	weightsVersion = 1
	maxHiddenSize  = 1024
)

func LoadWeights(f io.Reader) (*Weights, error) {
	var r = bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read weights header: %w", err)
	}
	if string(magic[:]) != weightsMagic {
		return nil, fmt.Errorf("bad weights magic %q", magic[:])
	}

	var header struct {
		Version uint32
		Hidden  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read weights header: %w", err)
	}
	if header.Version != weightsVersion {
		return nil, fmt.Errorf("unsupported weights version %d", header.Version)
	}
	if header.Hidden == 0 || header.Hidden > maxHiddenSize {
		return nil, fmt.Errorf("bad hidden layer size %d", header.Hidden)
	}

	var hidden = int(header.Hidden)
	var w = &Weights{
		HiddenSize:    hidden,
		HiddenWeights: make([]int16, InputSize*hidden),
		HiddenBiases:  make([]int16, hidden),
		OutputWeights: make([]int16, 2*hidden),
	}
	for _, values := range [][]int16{w.HiddenWeights, w.HiddenBiases, w.OutputWeights} {
		if err := binary.Read(r, binary.LittleEndian, values); err != nil {
			return nil, fmt.Errorf("read weights: %w", err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &w.OutputBias); err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	if _, err := r.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after weights")
	}
	return w, nil
}

func LoadFileWeights(path string) (*Weights, error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadWeights(f)
}
