package skm

import (
	"math"
	"testing"

	"github.com/flywave/go3d/mat3"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

const eps = 1e-5

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= eps
}

func nearVec3(a, b vec3.T) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

func checkVec3s(t *testing.T, got, want []vec3.T) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d vectors, want %d", len(got), len(want))
	}
	for i := range got {
		if !nearVec3(got[i], want[i]) {
			t.Errorf("[%d] got %v, want %v", i, got[i], want[i])
		}
	}
}

// rotZ 绕Z轴旋转 deg 度，列主序
func rotZ(deg float64) mat3.T {
	r := deg * math.Pi / 180
	c, s := float32(math.Cos(r)), float32(math.Sin(r))
	return mat3.T{
		{c, s, 0},
		{-s, c, 0},
		{0, 0, 1},
	}
}

// quadShape 单位正方形，两个三角形，带法线和UV
func quadShape() *Shape {
	s := NewShape("quad", []vec3.T{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, []Triangle{{0, 1, 2}, {0, 2, 3}})
	s.Normals = Some([]vec3.T{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	s.UVs = Some([]vec2.T{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	return s
}

// skinnedQuad 第一根骨骼平移全部顶点，第二根骨骼旋转并缩放前两个顶点
func skinnedQuad() *Shape {
	s := quadShape()
	s.AddBone(Bone{
		Name:      "root",
		Transform: BoneTransform{Rotation: mat3.Ident, Scale: 1, Translation: vec3.T{1, 0, 0}},
		Weights:   []VertexWeight{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
	})
	s.AddBone(Bone{
		Name:      "arm",
		Transform: BoneTransform{Rotation: rotZ(90), Scale: 2, Translation: vec3.T{0, 0, 1}},
		Weights:   []VertexWeight{{0, 0.5}, {1, 0.25}},
	})
	return s
}
