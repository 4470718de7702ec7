package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"gorgonia.org/tensor"
)

const (
	idxImagesMagic = 0x00000803
	idxLabelsMagic = 0x00000801
)

// LoadIDXImages reads an IDX image file (the MNIST container format),
// transparently decompressing .gz paths, and returns a
// (examples, 1, rows, cols) tensor with pixels scaled to [0, 1].
func LoadIDXImages(path string) (*tensor.Dense, error) {
	r, closeFn, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var header [4]uint32
	for i := range header {
		if err := binary.Read(r, binary.BigEndian, &header[i]); err != nil {
			return nil, fmt.Errorf("read idx header: %w", err)
		}
	}
	if header[0] != idxImagesMagic {
		return nil, fmt.Errorf("%s: magic %#08x is not an idx image file", path, header[0])
	}
	count, rows, cols := int(header[1]), int(header[2]), int(header[3])

	raw := make([]byte, count*rows*cols)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read idx pixels: %w", err)
	}
	backing := make([]float64, len(raw))
	for i, b := range raw {
		backing[i] = float64(b) / 255.0
	}
	return tensor.New(tensor.WithShape(count, 1, rows, cols), tensor.WithBacking(backing)), nil
}

// LoadIDXLabels reads an IDX label file and returns an (examples, 1) tensor.
func LoadIDXLabels(path string) (*tensor.Dense, error) {
	r, closeFn, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var magic, count uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("read idx header: %w", err)
	}
	if magic != idxLabelsMagic {
		return nil, fmt.Errorf("%s: magic %#08x is not an idx label file", path, magic)
	}
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("read idx header: %w", err)
	}

	raw := make([]byte, count)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read idx labels: %w", err)
	}
	backing := make([]float64, len(raw))
	for i, b := range raw {
		backing[i] = float64(b)
	}
	return tensor.New(tensor.WithShape(int(count), 1), tensor.WithBacking(backing)), nil
}

func openIDX(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open idx file: %w", err)
	}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("open gzip idx file: %w", err)
		}
		return gz, func() error {
			gz.Close()
			return f.Close()
		}, nil
	}
	return bufio.NewReader(f), f.Close, nil
}
