package skm

import "github.com/flywave/go3d/vec3"

// SkinDisplacement 按骨骼顺序逐个应用绑定变换，返回每个顶点的总位移。
// 对每个被影响的顶点，结果恰好等于最终位置减去原始位置；未被任何骨骼
// 影响的顶点位移为0。s.Positions 不会被修改。
func SkinDisplacement(s *Shape) []vec3.T {
	cur := append([]vec3.T(nil), s.Positions...)
	disp := make([]vec3.T, len(cur))

	for _, id := range s.BoneIDs {
		bone, ok := s.Bone(id)
		if !ok {
			continue
		}
		for _, w := range bone.Weights {
			if int(w.Vertex) >= len(cur) {
				continue
			}
			prev := cur[w.Vertex]
			next := ApplyTransform(prev, &bone.Transform, w.Weight)
			delta := vec3.Sub(&next, &prev)
			disp[w.Vertex].Add(&delta)
			cur[w.Vertex] = next
		}
	}
	return disp
}
