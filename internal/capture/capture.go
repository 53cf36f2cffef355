// Package capture loads raw extract result buffers captured from a live
// system and replays them through the racf.Caller interface.
package capture

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
)

// CompressedExt marks zstd-compressed captures.
const CompressedExt = ".zst"

var ErrEmptyCapture = errors.New("capture: empty capture file")

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("capture: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("capture: zstd decoder initialization failed: " + err.Error())
	}
}

// Capture is one raw result buffer. Plain captures are memory mapped
// read-only; compressed ones are decoded into memory.
type Capture struct {
	Path string
	data []byte
	m    mmap.MMap
}

func Open(path string) (*Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("capture: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCapture, path)
	}

	if strings.HasSuffix(path, CompressedExt) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("capture: read %s: %w", path, err)
		}
		data, err := zstdDecoder.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("capture: zstd decompress %s: %w", path, err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyCapture, path)
		}
		return &Capture{Path: path, data: data}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("capture: mmap %s: %w", path, err)
	}
	return &Capture{Path: path, data: m, m: m}, nil
}

// Bytes is valid until Close.
func (c *Capture) Bytes() []byte {
	return c.data
}

func (c *Capture) Len() int {
	return len(c.data)
}

func (c *Capture) Close() error {
	c.data = nil
	if c.m == nil {
		return nil
	}
	m := c.m
	c.m = nil
	if err := m.Unmap(); err != nil {
		return fmt.Errorf("capture: unmap %s: %w", c.Path, err)
	}
	return nil
}

// WriteFile stores buf at path, compressing when path ends in .zst.
func WriteFile(path string, buf []byte) error {
	if len(buf) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyCapture, path)
	}
	out := buf
	if strings.HasSuffix(path, CompressedExt) {
		out = zstdEncoder.EncodeAll(buf, nil)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("capture: write %s: %w", path, err)
	}
	return nil
}
