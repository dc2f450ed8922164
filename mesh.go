package skm

import (
	"math"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// Channel 可选的顶点属性通道，区分“不存在”与“存在但为空”
type Channel[T any] struct {
	values  []T
	present bool
}

func Some[T any](values []T) Channel[T] {
	return Channel[T]{values: values, present: true}
}

func None[T any]() Channel[T] {
	return Channel[T]{}
}

func (c Channel[T]) Get() ([]T, bool) {
	return c.values, c.present
}

func (c Channel[T]) Present() bool {
	return c.present
}

func (c Channel[T]) Len() int {
	return len(c.values)
}

func (c Channel[T]) clone() Channel[T] {
	if !c.present {
		return c
	}
	return Some(append([]T(nil), c.values...))
}

func NewShape(name string, positions []vec3.T, faces []Triangle) *Shape {
	return &Shape{
		Name:      name,
		Positions: positions,
		Normals:   None[vec3.T](),
		UVs:       None[vec2.T](),
		Faces:     faces,
	}
}

func (s *Shape) VertexCount() int {
	return len(s.Positions)
}

func (s *Shape) FaceCount() int {
	return len(s.Faces)
}

// AddBone 追加一根骨骼并登记其外部编号（从1开始）
func (s *Shape) AddBone(b Bone) int {
	s.Bones = append(s.Bones, b)
	id := boneID(len(s.Bones) - 1)
	s.BoneIDs = append(s.BoneIDs, id)
	return id
}

// Clone 深拷贝几何数据，骨骼数据共享
func (s *Shape) Clone() *Shape {
	c := *s
	c.Positions = append([]vec3.T(nil), s.Positions...)
	c.Normals = s.Normals.clone()
	c.UVs = s.UVs.clone()
	return &c
}

func (s *Shape) GetBoundbox() *[6]float64 {
	minX := math.MaxFloat64
	minY := math.MaxFloat64
	minZ := math.MaxFloat64
	maxX := -math.MaxFloat64
	maxY := -math.MaxFloat64
	maxZ := -math.MaxFloat64
	for i := range s.Positions {
		minX = math.Min(minX, float64(s.Positions[i][0]))
		minY = math.Min(minY, float64(s.Positions[i][1]))
		minZ = math.Min(minZ, float64(s.Positions[i][2]))

		maxX = math.Max(maxX, float64(s.Positions[i][0]))
		maxY = math.Max(maxY, float64(s.Positions[i][1]))
		maxZ = math.Max(maxZ, float64(s.Positions[i][2]))
	}
	return &[6]float64{minX, minY, minZ, maxX, maxY, maxZ}
}
