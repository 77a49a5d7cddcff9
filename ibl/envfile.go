package ibl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
)

// binaryReader remembers the first error so that a sequence of reads can be
// checked once.
type binaryReader struct {
	src       io.Reader
	order     binary.ByteOrder
	index     int
	lastIndex int
	err       error
}

func (br *binaryReader) readRef(data any) bool {
	if br.err != nil {
		return false
	}
	br.err = binary.Read(br.src, br.order, data)
	br.lastIndex = br.index
	if br.err == nil {
		br.index += binary.Size(data)
	}
	return br.err == nil
}

type binaryWriter struct {
	dst   io.Writer
	order binary.ByteOrder
	err   error
}

func (bw *binaryWriter) writeRef(data any) bool {
	if bw.err != nil {
		return false
	}
	bw.err = binary.Write(bw.dst, bw.order, data)
	return bw.err == nil
}

type EncodeContext struct {
	Compression IblEnvCompression
	Writer      io.Writer
}

type EncodeOption func(ctx *EncodeContext) error

// OptCompress selects lz4 compression; 0 is the fast mode, 1 to 9 the
// compression levels. Negative levels disable compression.
func OptCompress(level int) EncodeOption {
	levels := []lz4.CompressionLevel{lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9}
	if level < 0 {
		return nil
	}
	if level >= len(levels) {
		level = len(levels) - 1
	}

	return func(ctx *EncodeContext) error {
		if ctx.Compression != IblEnvCompressionNone {
			return fmt.Errorf("compression already configured")
		}
		lzw := lz4.NewWriter(ctx.Writer)
		if err := lzw.Apply(lz4.CompressionLevelOption(levels[level])); err != nil {
			return fmt.Errorf("could not configure lz4: %w", err)
		}
		if level == 0 {
			ctx.Compression = IblEnvCompressionLZ4Fast
		} else {
			ctx.Compression = IblEnvCompressionLZ4
		}
		ctx.Writer = lzw
		return nil
	}
}

func EncodeIblEnv(w io.Writer, env *IblEnv, options ...EncodeOption) (err error) {
	bw := &binaryWriter{dst: w, order: binary.LittleEndian}
	ctx := EncodeContext{Writer: w}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(&ctx); err != nil {
			return err
		}
	}

	header := IblEnvHeader{
		Check:       MagicNumberIBLENV,
		Version:     IblEnvVersion1_001_000,
		Compression: ctx.Compression,
		Size:        uint32(env.Size),
	}
	if !bw.writeRef(&header) {
		return fmt.Errorf("could not write ibl env header: %w", bw.err)
	}

	if err := EncodeRgbe(ctx.Writer, env.Concat()); err != nil {
		return fmt.Errorf("could not write ibl env encoded pixels: %w", err)
	}

	if closer, ok := ctx.Writer.(io.WriteCloser); ok && ctx.Compression != IblEnvCompressionNone {
		return closer.Close()
	}
	return nil
}

func DecodeIblEnv(r io.Reader) (*IblEnv, error) {
	br := &binaryReader{src: r, order: binary.LittleEndian}

	header := IblEnvHeader{}
	if !br.readRef(&header) {
		return nil, fmt.Errorf("expected environment header; byte 0x%08x: %w", br.lastIndex, br.err)
	}
	if header.Check != MagicNumberIBLENV {
		return nil, fmt.Errorf("environment header is corrupt; byte 0x%08x", br.lastIndex)
	}
	if header.Version != IblEnvVersion1_001_000 {
		return nil, fmt.Errorf("environment version %d unsupported; byte 0x%08x", header.Version, br.lastIndex)
	}

	if header.Size == 0 || header.Size > MaxIblEnvSize {
		return nil, fmt.Errorf("environment size %d out of range 1..%d; byte 0x%08x", header.Size, MaxIblEnvSize, br.lastIndex)
	}

	pixr := br.src
	switch header.Compression {
	case IblEnvCompressionLZ4, IblEnvCompressionLZ4Fast:
		pixr = lz4.NewReader(br.src)
	case IblEnvCompressionNone:
	default:
		return nil, fmt.Errorf("environment compression id %d unsupported; byte 0x%08x", header.Compression, br.index)
	}

	pixels := 6 * int(header.Size) * int(header.Size)
	data := make([]byte, pixels*4)
	if _, err := io.ReadFull(pixr, data); err != nil {
		return nil, fmt.Errorf("expected %d encoded pixels: %w", pixels, err)
	}

	colors, err := DecodeRgbeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding error: %w", err)
	}
	return NewIblEnv(colors, int(header.Size)), nil
}

func SaveIblEnv(path string, env *IblEnv, options ...EncodeOption) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := EncodeIblEnv(w, env, options...); err != nil {
		return fmt.Errorf("could not encode %q: %w", path, err)
	}
	return w.Flush()
}

func LoadIblEnv(path string) (*IblEnv, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()

	env, err := DecodeIblEnv(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", path, err)
	}
	return env, nil
}
