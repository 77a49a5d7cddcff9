package ibl

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
)

func testEnv(size int) *IblEnv {
	data := make([]float32, 6*size*size*3)
	for i := range data {
		data[i] = float32(i%97) * 0.37
	}
	return NewIblEnv(data, size)
}

func assertRgbeClose(t *testing.T, want, got []float32) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d floats but got %d", len(want), len(got))
	}
	for i := 0; i < len(want); i += 3 {
		m := max(want[i], want[i+1], want[i+2])
		for c := 0; c < 3; c++ {
			if math32.Abs(want[i+c]-got[i+c]) > m/128 {
				t.Fatalf("pixel %d channel %d: expected %f but got %f", i/3, c, want[i+c], got[i+c])
			}
		}
	}
}

func TestRgbeRoundTrip(t *testing.T) {
	src := []float32{0, 0, 0, 1, 0.5, 0.25, 1000, 2, 0.001, 1e-40, 1e-40, 1e-40}
	encoded, err := EncodeRgbeBytes(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(encoded) != 16 {
		t.Fatalf("4 pixels should encode to 16 bytes, got %d", len(encoded))
	}
	if !bytes.Equal(encoded[12:], []byte{0, 0, 0, 0}) {
		t.Errorf("tiny values should encode to zero, got %v", encoded[12:])
	}

	decoded, err := DecodeRgbeBytes(encoded)
	if err != nil {
		t.Fatal(err)
	}
	assertRgbeClose(t, src, decoded)

	if _, err := EncodeRgbeBytes([]float32{1, 2}); err == nil {
		t.Error("a partial pixel should be rejected")
	}
	if _, err := DecodeRgbeBytes([]byte{1, 2, 3}); err == nil {
		t.Error("a partial pixel should be rejected")
	}
}

func TestRgbeStreamSpansChunks(t *testing.T) {
	src := make([]float32, (rgbeChunkPixels+10)*3)
	for i := range src {
		src[i] = float32(i%13) + 0.5
	}
	var buf bytes.Buffer
	if err := EncodeRgbe(&buf, src); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeRgbe(&buf)
	if err != nil {
		t.Fatal(err)
	}
	assertRgbeClose(t, src, decoded)
}

func TestIblEnvRoundTrip(t *testing.T) {
	cases := []struct {
		name        string
		options     []EncodeOption
		compression IblEnvCompression
	}{
		{"none", nil, IblEnvCompressionNone},
		{"negative level", []EncodeOption{OptCompress(-1)}, IblEnvCompressionNone},
		{"fast", []EncodeOption{OptCompress(0)}, IblEnvCompressionLZ4Fast},
		{"level 9", []EncodeOption{OptCompress(9)}, IblEnvCompressionLZ4},
	}

	env := testEnv(8)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeIblEnv(&buf, env, c.options...); err != nil {
				t.Fatal(err)
			}

			var header IblEnvHeader
			if err := binary.Read(bytes.NewReader(buf.Bytes()), binary.LittleEndian, &header); err != nil {
				t.Fatal(err)
			}
			if header.Check != MagicNumberIBLENV || header.Size != 8 || header.Compression != c.compression {
				t.Errorf("unexpected header %+v", header)
			}

			decoded, err := DecodeIblEnv(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if decoded.Size != env.Size {
				t.Errorf("expected size %d but got %d", env.Size, decoded.Size)
			}
			assertRgbeClose(t, env.Concat(), decoded.Concat())
		})
	}
}

func TestDecodeIblEnvRejectsCorruptHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeIblEnv(&buf, testEnv(2)); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	data[0] ^= 0xff
	if _, err := DecodeIblEnv(bytes.NewReader(data)); err == nil {
		t.Error("a bad magic number should be rejected")
	}

	if _, err := DecodeIblEnv(bytes.NewReader(data[:8])); err == nil {
		t.Error("a truncated header should be rejected")
	}
}

func TestDecodeIblEnvRejectsBadSize(t *testing.T) {
	for _, size := range []uint32{0, MaxIblEnvSize + 1, 0xFFFFFFFF} {
		var buf bytes.Buffer
		header := IblEnvHeader{
			Check:       MagicNumberIBLENV,
			Version:     IblEnvVersion1_001_000,
			Compression: IblEnvCompressionNone,
			Size:        size,
		}
		if err := binary.Write(&buf, binary.LittleEndian, &header); err != nil {
			t.Fatal(err)
		}
		buf.Write(make([]byte, 64))
		if _, err := DecodeIblEnv(&buf); err == nil {
			t.Errorf("size %d should be rejected", size)
		}
	}
}

func TestDecodeIblEnvTruncatedPixels(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeIblEnv(&buf, testEnv(4)); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if _, err := DecodeIblEnv(bytes.NewReader(data[:len(data)-10])); err == nil {
		t.Error("missing pixels should be rejected")
	}
}

func TestSaveLoadIblEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky.iblenv")
	env := testEnv(4)
	if err := SaveIblEnv(path, env, OptCompress(1)); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadIblEnv(path)
	if err != nil {
		t.Fatal(err)
	}
	for face := CubeMapPositiveX; face <= CubeMapNegativeZ; face++ {
		assertRgbeClose(t, env.Face(face), loaded.Face(face))
	}
}
