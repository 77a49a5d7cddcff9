package libgl

import (
	"unsafe"

	"deferred-gl/liblog"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type LabeledGlObject interface {
	SetDebugLabel(string)
}

func setObjectLabel(namespace, id uint32, label string) {
	if label == "" {
		return
	}
	bytes := []byte(label)
	gl.ObjectLabel(namespace, id, int32(len(bytes)), (*uint8)(unsafe.Pointer(&bytes[0])))
}

// EnableDebugOutput forwards driver debug messages to the process logger.
func EnableDebugOutput() {
	gl.Enable(gl.DEBUG_OUTPUT)
	gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
	gl.DebugMessageCallback(func(source, gltype, id, severity uint32, length int32, message string, userParam unsafe.Pointer) {
		switch severity {
		case gl.DEBUG_SEVERITY_HIGH:
			liblog.Errorf("gl %d: %s", id, message)
		case gl.DEBUG_SEVERITY_MEDIUM:
			liblog.Warnf("gl %d: %s", id, message)
		case gl.DEBUG_SEVERITY_LOW:
			liblog.Infof("gl %d: %s", id, message)
		default:
			liblog.Debugf("gl %d: %s", id, message)
		}
	}, nil)
}

func PushDebugGroup(name string) {
	gl.PushDebugGroup(gl.DEBUG_SOURCE_APPLICATION, 999, -1, gl.Str(name+"\x00"))
}

func PopDebugGroup() {
	gl.PopDebugGroup()
}
