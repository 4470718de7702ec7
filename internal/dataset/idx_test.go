package dataset

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"gorgonia.org/tensor"
)

func writeIDXImages(t *testing.T, path string, images [][]byte, rows, cols int, compress bool) {
	t.Helper()
	buf := &bytes.Buffer{}
	for _, v := range []uint32{idxImagesMagic, uint32(len(images)), uint32(rows), uint32(cols)} {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			t.Fatalf("write header: %v", err)
		}
	}
	for _, img := range images {
		buf.Write(img)
	}
	writeMaybeGzip(t, path, buf.Bytes(), compress)
}

func writeIDXLabels(t *testing.T, path string, labels []byte) {
	t.Helper()
	buf := &bytes.Buffer{}
	for _, v := range []uint32{idxLabelsMagic, uint32(len(labels))} {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			t.Fatalf("write header: %v", err)
		}
	}
	buf.Write(labels)
	writeMaybeGzip(t, path, buf.Bytes(), false)
}

func writeMaybeGzip(t *testing.T, path string, data []byte, compress bool) {
	t.Helper()
	if compress {
		buf := &bytes.Buffer{}
		gz := gzip.NewWriter(buf)
		if _, err := gz.Write(data); err != nil {
			t.Fatalf("gzip write: %v", err)
		}
		if err := gz.Close(); err != nil {
			t.Fatalf("gzip close: %v", err)
		}
		data = buf.Bytes()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadIDXImages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "images.idx")
	writeIDXImages(t, path, [][]byte{{0, 255, 128, 64}, {1, 2, 3, 4}}, 2, 2, false)

	images, err := LoadIDXImages(path)
	if err != nil {
		t.Fatalf("LoadIDXImages: %v", err)
	}
	if !images.Shape().Eq(tensor.Shape{2, 1, 2, 2}) {
		t.Fatalf("unexpected shape %v", images.Shape())
	}
	pixels := images.Data().([]float64)
	if pixels[0] != 0 || pixels[1] != 1 {
		t.Fatalf("pixels not scaled to [0,1]: %v", pixels[:4])
	}
}

func TestLoadIDXImagesGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "images.idx.gz")
	writeIDXImages(t, path, [][]byte{{10, 20, 30, 40}}, 2, 2, true)

	images, err := LoadIDXImages(path)
	if err != nil {
		t.Fatalf("LoadIDXImages: %v", err)
	}
	if !images.Shape().Eq(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("unexpected shape %v", images.Shape())
	}
}

func TestLoadIDXLabels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.idx")
	writeIDXLabels(t, path, []byte{7, 0, 3})

	labels, err := LoadIDXLabels(path)
	if err != nil {
		t.Fatalf("LoadIDXLabels: %v", err)
	}
	if !labels.Shape().Eq(tensor.Shape{3, 1}) {
		t.Fatalf("unexpected shape %v", labels.Shape())
	}
	if got := labels.Data().([]float64); got[0] != 7 || got[2] != 3 {
		t.Fatalf("unexpected labels %v", got)
	}
}

func TestLoadIDXRejectsWrongMagic(t *testing.T) {
	dir := t.TempDir()
	images := filepath.Join(dir, "images.idx")
	writeIDXImages(t, images, [][]byte{{1, 2, 3, 4}}, 2, 2, false)

	if _, err := LoadIDXLabels(images); err == nil {
		t.Fatal("expected magic mismatch error")
	}
}
