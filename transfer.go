package skm

import (
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// TransferReport 记录哪些通道被外部网格覆盖
type TransferReport struct {
	Positions bool
	Normals   bool
	UVs       bool
}

// FlipV OBJ与模型文件的纹理纵轴方向相反
func FlipV(v float32) float32 {
	return 1.0 - v
}

// TransferAttributes 用外部网格覆盖形状的位置、法线和UV。
// 每个通道独立处理，仅当形状已有该通道且数量与外部数据一致时才覆盖，
// 否则该通道保持不变。外部数据被认为已与形状顶点顺序对齐。
func TransferAttributes(ext *ExternalMesh, s *Shape) TransferReport {
	var rep TransferReport

	if s.Positions != nil && len(s.Positions) == ext.VertexCount() {
		s.Positions = regroupVec3(ext.Vertices)
		rep.Positions = true
	}

	if normals, ok := s.Normals.Get(); ok && len(normals) == ext.NormalCount() {
		s.Normals = Some(regroupVec3(ext.Normals))
		rep.Normals = true
	}

	if uvs, ok := s.UVs.Get(); ok && len(uvs) == ext.TexCoordCount() {
		out := make([]vec2.T, 0, ext.TexCoordCount())
		for i := 0; i+1 < len(ext.TexCoords); i += 2 {
			out = append(out, vec2.T{ext.TexCoords[i], FlipV(ext.TexCoords[i+1])})
		}
		s.UVs = Some(out)
		rep.UVs = true
	}

	return rep
}

func regroupVec3(flat []float32) []vec3.T {
	out := make([]vec3.T, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		out = append(out, vec3.T{flat[i], flat[i+1], flat[i+2]})
	}
	return out
}
