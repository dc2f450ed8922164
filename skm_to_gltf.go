package skm

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
)

const GLTF_VERSION = "2.0"

func ModelToGltf(m *Model) (*gltf.Document, error) {
	doc := CreateDoc()
	for _, s := range m.Shapes {
		if err := BuildGltf(doc, s); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func CreateDoc() *gltf.Document {
	doc := &gltf.Document{}
	doc.Asset.Version = GLTF_VERSION
	doc.Asset.Generator = Banner
	srcIndex := uint32(0)
	doc.Scene = &srcIndex
	doc.Scenes = append(doc.Scenes, &gltf.Scene{})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})
	return doc
}

func calcPadding(offset, paddingUnit int) int {
	padding := offset % paddingUnit
	if padding != 0 {
		padding = paddingUnit - padding
	}
	return padding
}

// embedBuffers 让文档不再引用外部文件：GLB 的0号缓冲进入BIN块，
// 其余缓冲按当前数据重新生成data URI
func embedBuffers(doc *gltf.Document, glb bool) {
	for i, b := range doc.Buffers {
		if len(b.Data) == 0 {
			continue
		}
		b.ByteLength = uint32(len(b.Data))
		if glb && i == 0 {
			b.URI = ""
			continue
		}
		b.EmbeddedResource()
	}
}

func encodeDoc(doc *gltf.Document, glb bool) ([]byte, error) {
	embedBuffers(doc, glb)
	buf := bytes.NewBuffer(nil)
	enc := gltf.NewEncoder(buf)
	enc.AsBinary = glb
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetGltfBinary 编码为自包含的GLB
func GetGltfBinary(doc *gltf.Document) ([]byte, error) {
	return encodeDoc(doc, true)
}

// GetGltfText 编码为自包含的 .gltf 文本
func GetGltfText(doc *gltf.Document) ([]byte, error) {
	return encodeDoc(doc, false)
}

// appendView 将数据按4字节对齐追加到0号缓冲，返回缓冲视图索引
func appendView(doc *gltf.Document, data interface{}) uint32 {
	buffer := doc.Buffers[0]
	if pad := calcPadding(int(buffer.ByteLength), 4); pad > 0 {
		buffer.Data = append(buffer.Data, make([]byte, pad)...)
		buffer.ByteLength += uint32(pad)
	}
	buf := bytes.NewBuffer(nil)
	binary.Write(buf, binary.LittleEndian, data)

	view := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: buffer.ByteLength,
		ByteLength: uint32(buf.Len()),
	}
	buffer.ByteLength += uint32(buf.Len())
	buffer.Data = append(buffer.Data, buf.Bytes()...)
	doc.BufferViews = append(doc.BufferViews, view)
	return uint32(len(doc.BufferViews) - 1)
}

func appendAccessor(doc *gltf.Document, data interface{}, count int, ct gltf.ComponentType, at gltf.AccessorType) uint32 {
	bv := appendView(doc, data)
	acc := &gltf.Accessor{
		BufferView:    &bv,
		ComponentType: ct,
		Type:          at,
		Count:         uint32(count),
	}
	doc.Accessors = append(doc.Accessors, acc)
	return uint32(len(doc.Accessors) - 1)
}

// BuildGltf 将形状追加为一个网格节点，带骨骼时同时生成关节节点和蒙皮。
// 每个顶点最多保留权重最大的4个影响。
func BuildGltf(doc *gltf.Document, s *Shape) error {
	ps := &gltf.Primitive{Mode: gltf.PrimitiveTriangles, Attributes: make(gltf.Attribute)}

	if len(s.Positions) > 0 {
		idx := appendAccessor(doc, s.Positions, len(s.Positions), gltf.ComponentFloat, gltf.AccessorVec3)
		box := s.GetBoundbox()
		doc.Accessors[idx].Min = []float32{float32(box[0]), float32(box[1]), float32(box[2])}
		doc.Accessors[idx].Max = []float32{float32(box[3]), float32(box[4]), float32(box[5])}
		ps.Attributes["POSITION"] = idx
	}
	if normals, ok := s.Normals.Get(); ok && len(normals) > 0 {
		ps.Attributes["NORMAL"] = appendAccessor(doc, normals, len(normals), gltf.ComponentFloat, gltf.AccessorVec3)
	}
	if uvs, ok := s.UVs.Get(); ok && len(uvs) > 0 {
		ps.Attributes["TEXCOORD_0"] = appendAccessor(doc, uvs, len(uvs), gltf.ComponentFloat, gltf.AccessorVec2)
	}
	if len(s.Faces) > 0 {
		idx := appendAccessor(doc, s.Faces, len(s.Faces)*3, gltf.ComponentUint, gltf.AccessorScalar)
		ps.Indices = &idx
	}

	nd := &gltf.Node{Name: s.Name}
	if len(s.Bones) > 0 && len(s.Positions) > 0 {
		skinId := buildSkin(doc, s)
		joints, weights := packInfluences(s)
		ps.Attributes["JOINTS_0"] = appendAccessor(doc, joints, len(joints), gltf.ComponentUshort, gltf.AccessorVec4)
		ps.Attributes["WEIGHTS_0"] = appendAccessor(doc, weights, len(weights), gltf.ComponentFloat, gltf.AccessorVec4)
		nd.Skin = &skinId
	}

	meshId := uint32(len(doc.Meshes))
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: s.Name, Primitives: []*gltf.Primitive{ps}})
	nd.Mesh = &meshId
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, nd)
	return nil
}

// buildSkin 第 i 根骨骼对应第 i 个关节，关节节点的矩阵为绑定矩阵的逆
func buildSkin(doc *gltf.Document, s *Shape) uint32 {
	binds := make([][16]float32, len(s.Bones))
	skin := &gltf.Skin{}
	for i := range s.Bones {
		binds[i] = composeBindMatrix(&s.Bones[i].Transform)
		jointId := uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:   s.Bones[i].Name,
			Matrix: invertBindMatrix(&s.Bones[i].Transform),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, jointId)
		skin.Joints = append(skin.Joints, jointId)
	}
	ibm := appendAccessor(doc, binds, len(binds), gltf.ComponentFloat, gltf.AccessorMat4)
	skin.InverseBindMatrices = &ibm
	doc.Skins = append(doc.Skins, skin)
	return uint32(len(doc.Skins) - 1)
}

func composeBindMatrix(t *BoneTransform) [16]float32 {
	var m [16]float32
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			m[c*4+r] = t.Rotation[c][r] * t.Scale
		}
	}
	m[12], m[13], m[14], m[15] = t.Translation[0], t.Translation[1], t.Translation[2], 1
	return m
}

// invertBindMatrix 相似变换的逆：R^T/s 与 -R^T·t/s，缩放为0时返回单位矩阵
func invertBindMatrix(t *BoneTransform) [16]float32 {
	m := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if t.Scale == 0 {
		return m
	}
	inv := 1 / t.Scale
	var tr vec3.T
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			// 转置：新矩阵第 c 列第 r 行取原矩阵第 r 列第 c 行
			m[c*4+r] = t.Rotation[r][c] * inv
			tr[r] -= m[c*4+r] * t.Translation[c]
		}
	}
	m[12], m[13], m[14] = tr[0], tr[1], tr[2]
	return m
}

// LostInfluences 统计写入glTF时无法保留的骨骼影响：
// 权重为0的项，以及每个顶点权重最大的4项之外的部分
func LostInfluences(s *Shape) int {
	joints, weights := packInfluences(s)
	kept := 0
	for v := range joints {
		for k := 0; k < 4; k++ {
			if weights[v][k] != 0 {
				kept++
			}
		}
	}
	total := 0
	for _, id := range s.BoneIDs {
		b, ok := s.Bone(id)
		if !ok {
			continue
		}
		for _, w := range b.Weights {
			if int(w.Vertex) < len(s.Positions) {
				total++
			}
		}
	}
	return total - kept
}

type influence struct {
	joint  uint16
	weight float32
}

func packInfluences(s *Shape) ([][4]uint16, [][4]float32) {
	per := make([][]influence, len(s.Positions))
	for _, id := range s.BoneIDs {
		i := boneIndex(id)
		if i < 0 || i >= len(s.Bones) {
			continue
		}
		for _, w := range s.Bones[i].Weights {
			if int(w.Vertex) >= len(per) {
				continue
			}
			per[w.Vertex] = append(per[w.Vertex], influence{joint: uint16(i), weight: w.Weight})
		}
	}

	joints := make([][4]uint16, len(per))
	weights := make([][4]float32, len(per))
	for v, inf := range per {
		sort.SliceStable(inf, func(a, b int) bool { return inf[a].weight > inf[b].weight })
		for k := 0; k < len(inf) && k < 4; k++ {
			joints[v][k] = inf[k].joint
			weights[v][k] = inf[k].weight
		}
	}
	return joints, weights
}
