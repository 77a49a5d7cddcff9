package libgl

import (
	"strings"
	"testing"
)

const testShaderSource = `#version 450 core
//meta:name boxfilter
#define KERNEL 3
// #define DEBUG_VIEW
#define USE_SEED

void main() {}
`

func TestNewShaderParsesMeta(t *testing.T) {
	prog := NewShader(testShaderSource, 0).(*program)

	if prog.Name() != "boxfilter" {
		t.Errorf("name should be %q but was %q", "boxfilter", prog.Name())
	}
	if len(prog.definitions) != 3 {
		t.Fatalf("expected 3 definitions but got %d", len(prog.definitions))
	}

	kernel := prog.definitions["kernel"]
	if kernel.value != "3" || kernel.boolean {
		t.Errorf("kernel definition should be a value of 3, got %+v", kernel)
	}
	debug := prog.definitions["debug_view"]
	if !debug.boolean || debug.value != "false" {
		t.Errorf("commented definition should be a disabled flag, got %+v", debug)
	}
	if strings.Contains(prog.sourceTemplate, "#define") {
		t.Errorf("definitions should be replaced by markers in the template")
	}
	if prog.versionEnd != len("#version 450 core") {
		t.Errorf("version directive should end at %d but ended at %d", len("#version 450 core"), prog.versionEnd)
	}
}

func TestDefinitionLine(t *testing.T) {
	flag := glslDef{name: "USE_SEED", boolean: true}
	if got := flag.line("true"); got != "#define USE_SEED" {
		t.Errorf("enabled flag rendered as %q", got)
	}
	if got := flag.line("false"); got != "// #define USE_SEED" {
		t.Errorf("disabled flag rendered as %q", got)
	}
	value := glslDef{name: "KERNEL"}
	if got := value.line("5"); got != "#define KERNEL 5" {
		t.Errorf("value definition rendered as %q", got)
	}
}

func TestMipLevelCount(t *testing.T) {
	cases := map[[2]int]int{
		{512, 512}: 10,
		{1, 1}:     1,
		{640, 480}: 10,
		{3, 2}:     2,
		{0, 0}:     1,
	}
	for size, expected := range cases {
		if got := MipLevelCount(size[0], size[1]); got != expected {
			t.Errorf("MipLevelCount(%d, %d) should be %d but was %d", size[0], size[1], expected, got)
		}
	}
}
