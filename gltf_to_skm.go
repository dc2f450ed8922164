package skm

import (
	"fmt"
	"math"

	dmat "github.com/flywave/go3d/float64/mat4"
	"github.com/flywave/go3d/float64/vec4"
	"github.com/flywave/go3d/mat3"
	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
)

// NewGltfAsset 每个三角形图元对应一个形状，多个节点实例化同一网格时
// 只取第一个节点。节点带蒙皮时，第 j 个关节成为编号 j+1 的骨骼。
func NewGltfAsset(doc *gltf.Document) (*GltfAsset, error) {
	a := &GltfAsset{Doc: doc}
	seen := make(map[*gltf.Primitive]bool)
	for ni, nd := range doc.Nodes {
		if nd.Mesh == nil {
			continue
		}
		if int(*nd.Mesh) >= len(doc.Meshes) {
			return nil, fmt.Errorf("node %d: mesh %d out of range", ni, *nd.Mesh)
		}
		mh := doc.Meshes[*nd.Mesh]

		var skin *gltf.Skin
		if nd.Skin != nil {
			if int(*nd.Skin) >= len(doc.Skins) {
				return nil, fmt.Errorf("node %d: skin %d out of range", ni, *nd.Skin)
			}
			skin = doc.Skins[*nd.Skin]
		}

		for pi, ps := range mh.Primitives {
			if ps.Mode != gltf.PrimitiveTriangles || seen[ps] {
				continue
			}
			seen[ps] = true
			s, err := readPrimitive(doc, ps, skin)
			if err != nil {
				return nil, fmt.Errorf("node %d primitive %d: %w", ni, pi, err)
			}
			s.Name = shapeName(nd, mh, *nd.Mesh, pi)
			a.bindings = append(a.bindings, gltfBinding{shape: s, prim: ps, snap: s.Clone()})
		}
	}
	return a, nil
}

func shapeName(nd *gltf.Node, mh *gltf.Mesh, meshId uint32, prim int) string {
	name := nd.Name
	if name == "" {
		name = mh.Name
	}
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshId)
	}
	if len(mh.Primitives) > 1 {
		name = fmt.Sprintf("%s:%d", name, prim)
	}
	return name
}

func readPrimitive(doc *gltf.Document, ps *gltf.Primitive, skin *gltf.Skin) (*Shape, error) {
	s := NewShape("", nil, nil)

	idx, ok := ps.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION")
	}
	acc, err := accessorAt(doc, idx)
	if err != nil {
		return nil, err
	}
	if s.Positions, err = readVec3(doc, acc); err != nil {
		return nil, fmt.Errorf("read positions failed: %w", err)
	}

	if idx, ok := ps.Attributes["NORMAL"]; ok {
		acc, err := accessorAt(doc, idx)
		if err != nil {
			return nil, err
		}
		normals, err := readVec3(doc, acc)
		if err != nil {
			return nil, fmt.Errorf("read normals failed: %w", err)
		}
		s.Normals = Some(normals)
	}

	if idx, ok := ps.Attributes["TEXCOORD_0"]; ok {
		acc, err := accessorAt(doc, idx)
		if err != nil {
			return nil, err
		}
		uvs, err := readVec2(doc, acc)
		if err != nil {
			return nil, fmt.Errorf("read uvs failed: %w", err)
		}
		s.UVs = Some(uvs)
	}

	var indices []uint32
	if ps.Indices != nil {
		acc, err := accessorAt(doc, *ps.Indices)
		if err != nil {
			return nil, err
		}
		if indices, err = readIndices(doc, acc); err != nil {
			return nil, fmt.Errorf("read indices failed: %w", err)
		}
	} else {
		indices = make([]uint32, len(s.Positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	s.Faces = make([]Triangle, len(indices)/3)
	for i := range s.Faces {
		s.Faces[i] = Triangle{indices[i*3], indices[i*3+1], indices[i*3+2]}
	}

	if skin != nil {
		if err := readSkin(doc, ps, skin, s); err != nil {
			return nil, fmt.Errorf("read skin failed: %w", err)
		}
	}
	return s, nil
}

func readSkin(doc *gltf.Document, ps *gltf.Primitive, skin *gltf.Skin, s *Shape) error {
	var binds []*dmat.T
	if skin.InverseBindMatrices != nil {
		acc, err := accessorAt(doc, *skin.InverseBindMatrices)
		if err != nil {
			return err
		}
		rows, err := readFloats(doc, acc, gltf.AccessorMat4)
		if err != nil {
			return err
		}
		for _, r := range rows {
			var m [16]float64
			for i := range m {
				m[i] = float64(r[i])
			}
			binds = append(binds, toMat(m))
		}
	}

	for j, node := range skin.Joints {
		b := Bone{Transform: IdentityTransform}
		if int(node) < len(doc.Nodes) {
			b.Name = doc.Nodes[node].Name
		}
		if j < len(binds) {
			b.Transform = decomposeBindMatrix(binds[j])
		}
		s.AddBone(b)
	}

	jIdx, hasJoints := ps.Attributes["JOINTS_0"]
	wIdx, hasWeights := ps.Attributes["WEIGHTS_0"]
	if !hasJoints || !hasWeights {
		return nil
	}
	jAcc, err := accessorAt(doc, jIdx)
	if err != nil {
		return err
	}
	wAcc, err := accessorAt(doc, wIdx)
	if err != nil {
		return err
	}
	// 关节索引不做归一化
	jAcc2 := *jAcc
	jAcc2.Normalized = false
	joints, err := readFloats(doc, &jAcc2, gltf.AccessorVec4)
	if err != nil {
		return err
	}
	weights, err := readFloats(doc, wAcc, gltf.AccessorVec4)
	if err != nil {
		return err
	}
	if len(joints) != len(weights) {
		return fmt.Errorf("JOINTS_0 has %d elements, WEIGHTS_0 has %d", len(joints), len(weights))
	}

	for v := range joints {
		for k := 0; k < 4; k++ {
			w := weights[v][k]
			if w == 0 {
				continue
			}
			j := int(joints[v][k])
			if j >= len(s.Bones) {
				return fmt.Errorf("vertex %d references joint %d of %d", v, j, len(s.Bones))
			}
			s.Bones[j].Weights = append(s.Bones[j].Weights, VertexWeight{Vertex: uint32(v), Weight: w})
		}
	}
	return nil
}

// decomposeBindMatrix 列主序矩阵：前三列为缩放后的旋转基，第四列为平移。
// 只支持均匀缩放，缩放取第一列的长度。
func decomposeBindMatrix(m *dmat.T) BoneTransform {
	sc := math.Sqrt(m[0][0]*m[0][0] + m[0][1]*m[0][1] + m[0][2]*m[0][2])
	t := BoneTransform{Scale: float32(sc), Rotation: mat3.Ident}
	if sc != 0 {
		for c := 0; c < 3; c++ {
			for r := 0; r < 3; r++ {
				t.Rotation[c][r] = float32(m[c][r] / sc)
			}
		}
	}
	t.Translation = vec3.T{float32(m[3][0]), float32(m[3][1]), float32(m[3][2])}
	return t
}

func toMat(mat [16]float64) *dmat.T {
	m := &dmat.T{}
	m[0] = vec4.T{mat[0], mat[1], mat[2], mat[3]}
	m[1] = vec4.T{mat[4], mat[5], mat[6], mat[7]}
	m[2] = vec4.T{mat[8], mat[9], mat[10], mat[11]}
	m[3] = vec4.T{mat[12], mat[13], mat[14], mat[15]}
	return m
}
