package skm

import "github.com/flywave/go3d/vec3"

// ExportWithPose 返回烘焙了蒙皮位移的位置副本，s 本身不变
func ExportWithPose(s *Shape) []vec3.T {
	disp := SkinDisplacement(s)
	posed := make([]vec3.T, len(s.Positions))
	for i := range s.Positions {
		posed[i] = vec3.Add(&s.Positions[i], &disp[i])
	}
	return posed
}

// PosedShape 返回位置被替换为 ExportWithPose 结果的浅拷贝，供OBJ写出使用
func PosedShape(s *Shape) *Shape {
	c := *s
	c.Positions = ExportWithPose(s)
	return &c
}

// ImportWithPose 在覆盖属性之前先用绑定姿态计算位移，
// 覆盖后再从新位置中减去，得到修正后的绑定姿态。
func ImportWithPose(ext *ExternalMesh, s *Shape) TransferReport {
	disp := SkinDisplacement(s)
	rep := TransferAttributes(ext, s)
	for i := range s.Positions {
		if i >= len(disp) {
			break
		}
		s.Positions[i].Sub(&disp[i])
	}
	return rep
}
