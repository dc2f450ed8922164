package skm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
)

// gltfBinding 记录形状来自哪个图元，snap 为加载时的几何快照，
// 保存时只写回相对快照发生变化的通道
type gltfBinding struct {
	shape *Shape
	prim  *gltf.Primitive
	snap  *Shape
}

// GltfAsset glTF 2.0 蒙皮资源
type GltfAsset struct {
	Doc      *gltf.Document
	bindings []gltfBinding
}

func OpenGltf(path string) (*GltfAsset, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	return NewGltfAsset(doc)
}

func (a *GltfAsset) GetShapes() []*Shape {
	shapes := make([]*Shape, len(a.bindings))
	for i := range a.bindings {
		shapes[i] = a.bindings[i].shape
	}
	return shapes
}

// Save 将修改过的通道写回源访问器，每个访问器最多写一次。
// 所有缓冲都由本包编码：.gltf 以data URI内嵌，其余保存为GLB。
func (a *GltfAsset) Save(path string) error {
	written := make(map[uint32]bool)
	for i := range a.bindings {
		b := &a.bindings[i]
		if err := a.writeShape(b, written); err != nil {
			return fmt.Errorf("shape %q: %w", b.shape.Name, err)
		}
		b.snap = b.shape.Clone()
	}

	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), GLTFEXT) {
		data, err = GetGltfText(a.Doc)
	} else {
		data, err = GetGltfBinary(a.Doc)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o664)
}

func (a *GltfAsset) writeShape(b *gltfBinding, written map[uint32]bool) error {
	doc := a.Doc
	if idx, ok := b.prim.Attributes["POSITION"]; ok && !written[idx] && !sameVec3(b.shape.Positions, b.snap.Positions) {
		acc, err := accessorAt(doc, idx)
		if err != nil {
			return err
		}
		if err := writeVec3(doc, acc, b.shape.Positions); err != nil {
			return fmt.Errorf("write positions failed: %w", err)
		}
		written[idx] = true
		box := b.shape.GetBoundbox()
		if len(b.shape.Positions) > 0 {
			acc.Min = []float32{float32(box[0]), float32(box[1]), float32(box[2])}
			acc.Max = []float32{float32(box[3]), float32(box[4]), float32(box[5])}
		}
	}

	normals, _ := b.shape.Normals.Get()
	oldNormals, _ := b.snap.Normals.Get()
	if idx, ok := b.prim.Attributes["NORMAL"]; ok && b.shape.Normals.Present() && !written[idx] && !sameVec3(normals, oldNormals) {
		acc, err := accessorAt(doc, idx)
		if err != nil {
			return err
		}
		if err := writeVec3(doc, acc, normals); err != nil {
			return fmt.Errorf("write normals failed: %w", err)
		}
		written[idx] = true
	}

	uvs, _ := b.shape.UVs.Get()
	oldUVs, _ := b.snap.UVs.Get()
	if idx, ok := b.prim.Attributes["TEXCOORD_0"]; ok && b.shape.UVs.Present() && !written[idx] && !sameVec2(uvs, oldUVs) {
		acc, err := accessorAt(doc, idx)
		if err != nil {
			return err
		}
		if err := writeVec2(doc, acc, uvs); err != nil {
			return fmt.Errorf("write uvs failed: %w", err)
		}
		written[idx] = true
	}
	return nil
}

func sameVec3(a, b []vec3.T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameVec2(a, b []vec2.T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func componentSize(ct gltf.ComponentType) int {
	switch ct {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	default:
		return 4
	}
}

func componentCount(at gltf.AccessorType) int {
	switch at {
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	default:
		return 1
	}
}

func accessorAt(doc *gltf.Document, idx uint32) (*gltf.Accessor, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

// accessorView 返回访问器首元素开始的字节切片和元素步长
func accessorView(doc *gltf.Document, acc *gltf.Accessor) ([]byte, int, error) {
	if acc.Sparse != nil {
		return nil, 0, errors.New("sparse accessors are not supported")
	}
	if acc.BufferView == nil {
		return nil, 0, errors.New("accessor has no buffer view")
	}
	if int(*acc.BufferView) >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d out of range", *acc.BufferView)
	}
	view := doc.BufferViews[*acc.BufferView]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	data := doc.Buffers[view.Buffer].Data

	elem := componentSize(acc.ComponentType) * componentCount(acc.Type)
	stride := elem
	if view.ByteStride != 0 {
		stride = int(view.ByteStride)
	}
	start := int(view.ByteOffset) + int(acc.ByteOffset)
	end := start
	if acc.Count > 0 {
		end = start + stride*(int(acc.Count)-1) + elem
	}
	viewEnd := int(view.ByteOffset) + int(view.ByteLength)
	if end > viewEnd || end > len(data) {
		return nil, 0, errors.New("accessor exceeds its buffer view")
	}
	return data[start:end], stride, nil
}

func readComponent(b []byte, ct gltf.ComponentType, normalized bool) float32 {
	switch ct {
	case gltf.ComponentFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltf.ComponentUbyte:
		v := float32(b[0])
		if normalized {
			return v / 255
		}
		return v
	case gltf.ComponentByte:
		v := float32(int8(b[0]))
		if normalized {
			return float32(math.Max(float64(v/127), -1))
		}
		return v
	case gltf.ComponentUshort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case gltf.ComponentShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return float32(math.Max(float64(v/32767), -1))
		}
		return v
	default:
		return float32(binary.LittleEndian.Uint32(b))
	}
}

// readFloats 按行读取访问器，每行 n 个分量
func readFloats(doc *gltf.Document, acc *gltf.Accessor, want gltf.AccessorType) ([][]float32, error) {
	if acc.Type != want {
		return nil, fmt.Errorf("accessor type %v, want %v", acc.Type, want)
	}
	data, stride, err := accessorView(doc, acc)
	if err != nil {
		return nil, err
	}
	n := componentCount(acc.Type)
	cs := componentSize(acc.ComponentType)
	out := make([][]float32, acc.Count)
	for i := range out {
		row := make([]float32, n)
		for c := 0; c < n; c++ {
			off := i*stride + c*cs
			row[c] = readComponent(data[off:off+cs], acc.ComponentType, acc.Normalized)
		}
		out[i] = row
	}
	return out, nil
}

func readVec3(doc *gltf.Document, acc *gltf.Accessor) ([]vec3.T, error) {
	rows, err := readFloats(doc, acc, gltf.AccessorVec3)
	if err != nil {
		return nil, err
	}
	out := make([]vec3.T, len(rows))
	for i, r := range rows {
		out[i] = vec3.T{r[0], r[1], r[2]}
	}
	return out, nil
}

func readVec2(doc *gltf.Document, acc *gltf.Accessor) ([]vec2.T, error) {
	rows, err := readFloats(doc, acc, gltf.AccessorVec2)
	if err != nil {
		return nil, err
	}
	out := make([]vec2.T, len(rows))
	for i, r := range rows {
		out[i] = vec2.T{r[0], r[1]}
	}
	return out, nil
}

func readIndices(doc *gltf.Document, acc *gltf.Accessor) ([]uint32, error) {
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("index accessor type %v", acc.Type)
	}
	data, stride, err := accessorView(doc, acc)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, acc.Count)
	for i := range out {
		b := data[i*stride:]
		switch acc.ComponentType {
		case gltf.ComponentUbyte:
			out[i] = uint32(b[0])
		case gltf.ComponentUshort:
			out[i] = uint32(binary.LittleEndian.Uint16(b))
		case gltf.ComponentUint:
			out[i] = binary.LittleEndian.Uint32(b)
		default:
			return nil, fmt.Errorf("index component type %v", acc.ComponentType)
		}
	}
	return out, nil
}

func checkWritable(acc *gltf.Accessor, want gltf.AccessorType, count int) error {
	if acc.Type != want || acc.ComponentType != gltf.ComponentFloat {
		return errors.New("only float accessors can be written")
	}
	if int(acc.Count) != count {
		return fmt.Errorf("accessor holds %d elements, shape has %d", acc.Count, count)
	}
	return nil
}

func writeVec3(doc *gltf.Document, acc *gltf.Accessor, values []vec3.T) error {
	if err := checkWritable(acc, gltf.AccessorVec3, len(values)); err != nil {
		return err
	}
	data, stride, err := accessorView(doc, acc)
	if err != nil {
		return err
	}
	for i, v := range values {
		for c := 0; c < 3; c++ {
			binary.LittleEndian.PutUint32(data[i*stride+c*4:], math.Float32bits(v[c]))
		}
	}
	return nil
}

func writeVec2(doc *gltf.Document, acc *gltf.Accessor, values []vec2.T) error {
	if err := checkWritable(acc, gltf.AccessorVec2, len(values)); err != nil {
		return err
	}
	data, stride, err := accessorView(doc, acc)
	if err != nil {
		return err
	}
	for i, v := range values {
		for c := 0; c < 2; c++ {
			binary.LittleEndian.PutUint32(data[i*stride+c*4:], math.Float32bits(v[c]))
		}
	}
	return nil
}
