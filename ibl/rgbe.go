package ibl

import (
	"errors"
	"fmt"
	"io"

	"github.com/chewxy/math32"
)

// 4096 rgb pixels per chunk
const rgbeChunkPixels = 4096

// encodeRgbeChunk packs rgb triplets into shared exponent bytes and returns
// the number of bytes written.
func encodeRgbeChunk(data []float32, buf []byte) int {
	n := 0
	for i := 0; i+2 < len(data); i += 3 {
		r, g, b := data[i], data[i+1], data[i+2]
		m := max(r, g, b)
		if m < 1e-32 {
			buf[n], buf[n+1], buf[n+2], buf[n+3] = 0, 0, 0, 0
		} else {
			frac, exp := math32.Frexp(m)
			f := frac * 256 / m
			buf[n] = byte(r * f)
			buf[n+1] = byte(g * f)
			buf[n+2] = byte(b * f)
			buf[n+3] = byte(exp + 128)
		}
		n += 4
	}
	return n
}

// decodeRgbeChunk unpacks whole pixels and returns the number of floats written.
func decodeRgbeChunk(data []byte, buf []float32) int {
	n := 0
	for i := 0; i+3 < len(data); i += 4 {
		e := data[i+3]
		if e == 0 {
			buf[n], buf[n+1], buf[n+2] = 0, 0, 0
		} else {
			f := math32.Ldexp(1, int(e)-136)
			buf[n] = float32(data[i]) * f
			buf[n+1] = float32(data[i+1]) * f
			buf[n+2] = float32(data[i+2]) * f
		}
		n += 3
	}
	return n
}

func EncodeRgbe(w io.Writer, data []float32) error {
	if len(data)%3 != 0 {
		return fmt.Errorf("source not a multiple of 3 floats")
	}
	buf := make([]byte, rgbeChunkPixels*4)
	for i := 0; i < len(data); i += rgbeChunkPixels * 3 {
		j := min(i+rgbeChunkPixels*3, len(data))
		n := encodeRgbeChunk(data[i:j], buf)
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRgbe reads until EOF.
func DecodeRgbe(r io.Reader) ([]float32, error) {
	buf := make([]byte, rgbeChunkPixels*4)
	var result []float32
	for {
		n, err := io.ReadFull(r, buf)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if n%4 != 0 {
			return nil, fmt.Errorf("source not a multiple of 4 bytes")
		}
		if n > 0 {
			start := len(result)
			result = append(result, make([]float32, n/4*3)...)
			decodeRgbeChunk(buf[:n], result[start:])
		}
		if err != nil {
			return result, nil
		}
	}
}

func EncodeRgbeBytes(data []float32) ([]byte, error) {
	if len(data)%3 != 0 {
		return nil, fmt.Errorf("source not a multiple of 3 floats")
	}
	result := make([]byte, len(data)/3*4)
	encodeRgbeChunk(data, result)
	return result, nil
}

func DecodeRgbeBytes(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("source not a multiple of 4 bytes")
	}
	result := make([]float32, len(data)/4*3)
	decodeRgbeChunk(data, result)
	return result, nil
}
