package skm

import (
	"github.com/flywave/go3d/mat3"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

const MODEL_SIGNATURE string = "fwsk"
const SKMEXT string = ".skm"
const OBJEXT string = ".obj"
const GLBEXT string = ".glb"
const GLTFEXT string = ".gltf"
const V1 uint32 = 1
const V2 uint32 = 2

// Banner 写入OBJ头部注释的工具标识
const Banner string = "go-skm 0.2"

// Triangle 三角形，三个从0开始的顶点索引，法线和UV复用同一索引
type Triangle [3]uint32

// BoneTransform 骨骼的绑定变换，先缩放再旋转，平移按权重缩放
type BoneTransform struct {
	Rotation    mat3.T  `json:"rotation"`
	Scale       float32 `json:"scale"`
	Translation vec3.T  `json:"translation"`
}

// IdentityTransform 单位变换
var IdentityTransform = BoneTransform{Rotation: mat3.Ident, Scale: 1}

// VertexWeight 单个顶点的权重
type VertexWeight struct {
	Vertex uint32  `json:"vertex"`
	Weight float32 `json:"weight"`
}

// Bone 骨骼及其影响的顶点
type Bone struct {
	Name      string         `json:"name"`
	Transform BoneTransform  `json:"transform"`
	Weights   []VertexWeight `json:"weights,omitempty"`
}

// Shape 单个蒙皮形状
type Shape struct {
	Name      string          `json:"name"`
	Positions []vec3.T        `json:"positions"`
	Normals   Channel[vec3.T] `json:"-"`
	UVs       Channel[vec2.T] `json:"-"`
	Faces     []Triangle      `json:"faces"`
	BoneIDs   []int           `json:"boneIds,omitempty"`
	Bones     []Bone          `json:"bones,omitempty"`
}

// ExternalMesh 外部加载的扁平网格缓冲
type ExternalMesh struct {
	Vertices  []float32
	Normals   []float32
	TexCoords []float32
}

func (m *ExternalMesh) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m *ExternalMesh) NormalCount() int {
	return len(m.Normals) / 3
}

func (m *ExternalMesh) TexCoordCount() int {
	return len(m.TexCoords) / 2
}

// Offsets OBJ各通道的起始编号
type Offsets struct {
	V  int
	VT int
	VN int
}

var DefaultOffsets = Offsets{V: 1, VT: 1, VN: 1}
