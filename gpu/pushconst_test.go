// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gpu

import (
	"math"
	"testing"

	glm "github.com/go-gl/mathgl/mgl32"
)

func TestMat4PushConstSlice(t *testing.T) {
	pc := Mat4PushConst{Val: glm.Ident4()}
	words := pc.Slice()

	if len(words) != 16 {
		t.Fatalf("a mat4 is 16 words, got %d", len(words))
	}
	one := math.Float32bits(1.0)
	for _, idx := range []int{0, 5, 10, 15} {
		if words[idx] != one {
			t.Errorf("diagonal word %d should be 1.0, got %#x", idx, words[idx])
		}
	}
	if words[1] != 0 {
		t.Errorf("off-diagonal word should be zero, got %#x", words[1])
	}
}

func TestU32PushConstSlice(t *testing.T) {
	pc := U32PushConst{Val: 0xdeadbeef}
	words := pc.Slice()

	if len(words) != 1 {
		t.Fatalf("expected a single word, got %d", len(words))
	}
	if words[0] != 0xdeadbeef {
		t.Errorf("got %#x", words[0])
	}
}

func TestPushRangesMatchBlockSizes(t *testing.T) {
	if vertexMat4Range[0].Size != 64 {
		t.Errorf("mat4 range should cover 64 bytes, has %d", vertexMat4Range[0].Size)
	}
	if decodeRGBRGBARange[0].Size != 4 {
		t.Errorf("scalar range should cover 4 bytes, has %d", decodeRGBRGBARange[0].Size)
	}
}
