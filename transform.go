package skm

import "github.com/flywave/go3d/vec3"

// ApplyTransform 计算 t.Rotation·(v·t.Scale) + t.Translation·w。
// 权重只作用于平移项，权重为0时仍会完整地旋转和缩放该点。
func ApplyTransform(v vec3.T, t *BoneTransform, w float32) vec3.T {
	s := v.Scaled(t.Scale)
	r := t.Rotation.MulVec3(&s)
	tr := t.Translation.Scaled(w)
	return vec3.Add(&r, &tr)
}

// boneIndex 将外部从1开始的骨骼编号转换为 Shape.Bones 的下标
func boneIndex(id int) int {
	return id - 1
}

// boneID 是 boneIndex 的逆变换
func boneID(index int) int {
	return index + 1
}

// Bone 按外部编号查找骨骼
func (s *Shape) Bone(id int) (*Bone, bool) {
	i := boneIndex(id)
	if i < 0 || i >= len(s.Bones) {
		return nil, false
	}
	return &s.Bones[i], true
}
