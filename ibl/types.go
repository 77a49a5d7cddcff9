package ibl

import "fmt"

const MagicNumberIBLENV = 0x78b85411

// MaxIblEnvSize bounds the face size accepted from a file header.
const MaxIblEnvSize = 1 << 14

// CubeMapFace follows the GL face order.
type CubeMapFace int

const (
	CubeMapPositiveX = CubeMapFace(iota)
	CubeMapNegativeX
	CubeMapPositiveY
	CubeMapNegativeY
	CubeMapPositiveZ
	CubeMapNegativeZ
)

var faceNames = [6]string{"+x", "-x", "+y", "-y", "+z", "-z"}

func (face CubeMapFace) String() string {
	if face < 0 || int(face) >= len(faceNames) {
		return fmt.Sprintf("face(%d)", int(face))
	}
	return faceNames[face]
}

type IblEnvVersion uint32

const (
	IblEnvVersion1_001_000 = IblEnvVersion(1_001_000)
)

type IblEnvCompression uint32

const (
	IblEnvCompressionNone = IblEnvCompression(iota)
	IblEnvCompressionLZ4Fast
	IblEnvCompressionLZ4
)

type IblEnvHeader struct {
	Check       uint32
	Version     IblEnvVersion
	Compression IblEnvCompression
	Size        uint32
}

// IblEnv is six square RGB float faces stored back to back.
type IblEnv struct {
	Faces [6][]float32
	Size  int
	data  []float32
}

func NewIblEnv(data []float32, size int) *IblEnv {
	o := size * size * 3
	env := &IblEnv{Size: size, data: data}
	for i := range env.Faces {
		env.Faces[i] = data[i*o : (i+1)*o : (i+1)*o]
	}
	return env
}

func (env *IblEnv) Concat() []float32 {
	return env.data
}

func (env *IblEnv) Face(face CubeMapFace) []float32 {
	return env.Faces[face]
}
