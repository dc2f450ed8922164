package skm

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

const (
	maxNameLen = 1 << 16
	maxCount   = 1 << 28
)

// Model .skm 容器，保存若干蒙皮形状
type Model struct {
	Version uint32   `json:"version"`
	Shapes  []*Shape `json:"shapes"`
}

func NewModel() *Model {
	return &Model{Version: V2}
}

func (m *Model) ShapeCount() int {
	return len(m.Shapes)
}

type errWriter struct {
	wt  io.Writer
	err error
}

func (w *errWriter) write(v interface{}) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.wt, binary.LittleEndian, v)
}

func (w *errWriter) writeString(s string) {
	w.write(uint32(len(s)))
	if w.err != nil {
		return
	}
	_, w.err = w.wt.Write([]byte(s))
}

func readLittleByte(rd io.Reader, v interface{}) error {
	return binary.Read(rd, binary.LittleEndian, v)
}

func readCount(rd io.Reader, limit uint32) (uint32, error) {
	var size uint32
	if err := readLittleByte(rd, &size); err != nil {
		return 0, err
	}
	if size > limit {
		return 0, fmt.Errorf("implausible count %d", size)
	}
	return size, nil
}

func readString(rd io.Reader) (string, error) {
	size, err := readCount(rd, maxNameLen)
	if err != nil {
		return "", err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func boneTransformMarshal(w *errWriter, t *BoneTransform) {
	w.write(t.Rotation[0][:])
	w.write(t.Rotation[1][:])
	w.write(t.Rotation[2][:])
	w.write(t.Scale)
	w.write(t.Translation[:])
}

func boneTransformUnMarshal(rd io.Reader) (BoneTransform, error) {
	t := BoneTransform{}
	for i := range t.Rotation {
		if err := readLittleByte(rd, t.Rotation[i][:]); err != nil {
			return t, err
		}
	}
	if err := readLittleByte(rd, &t.Scale); err != nil {
		return t, err
	}
	if err := readLittleByte(rd, t.Translation[:]); err != nil {
		return t, err
	}
	return t, nil
}

func boneMarshal(w *errWriter, b *Bone) {
	w.writeString(b.Name)
	boneTransformMarshal(w, &b.Transform)
	w.write(uint32(len(b.Weights)))
	for _, vw := range b.Weights {
		w.write(vw.Vertex)
		w.write(vw.Weight)
	}
}

func boneUnMarshal(rd io.Reader) (Bone, error) {
	b := Bone{}
	var err error
	if b.Name, err = readString(rd); err != nil {
		return b, err
	}
	if b.Transform, err = boneTransformUnMarshal(rd); err != nil {
		return b, err
	}
	size, err := readCount(rd, maxCount)
	if err != nil {
		return b, err
	}
	b.Weights = make([]VertexWeight, size)
	for i := range b.Weights {
		if err := readLittleByte(rd, &b.Weights[i].Vertex); err != nil {
			return b, err
		}
		if err := readLittleByte(rd, &b.Weights[i].Weight); err != nil {
			return b, err
		}
	}
	return b, nil
}

func shapeMarshal(w *errWriter, s *Shape, v uint32) {
	w.writeString(s.Name)
	w.write(uint32(len(s.Positions)))
	for i := range s.Positions {
		w.write(s.Positions[i][:])
	}

	if normals, ok := s.Normals.Get(); ok {
		w.write(uint8(1))
		w.write(uint32(len(normals)))
		for i := range normals {
			w.write(normals[i][:])
		}
	} else {
		w.write(uint8(0))
	}

	if uvs, ok := s.UVs.Get(); ok {
		w.write(uint8(1))
		w.write(uint32(len(uvs)))
		for i := range uvs {
			w.write(uvs[i][:])
		}
	} else {
		w.write(uint8(0))
	}

	w.write(uint32(len(s.Faces)))
	for i := range s.Faces {
		w.write(s.Faces[i][:])
	}

	// V2 新增骨骼数据
	if v < V2 {
		return
	}
	w.write(uint32(len(s.BoneIDs)))
	for _, id := range s.BoneIDs {
		w.write(int32(id))
	}
	w.write(uint32(len(s.Bones)))
	for i := range s.Bones {
		boneMarshal(w, &s.Bones[i])
	}
}

func shapeUnMarshal(rd io.Reader, v uint32) (*Shape, error) {
	s := &Shape{}
	var err error
	if s.Name, err = readString(rd); err != nil {
		return nil, fmt.Errorf("read shape name failed: %w", err)
	}

	size, err := readCount(rd, maxCount)
	if err != nil {
		return nil, fmt.Errorf("read vertex count failed: %w", err)
	}
	s.Positions = make([]vec3.T, size)
	for i := range s.Positions {
		if err := readLittleByte(rd, s.Positions[i][:]); err != nil {
			return nil, fmt.Errorf("read vertices failed: %w", err)
		}
	}

	var has uint8
	if err := readLittleByte(rd, &has); err != nil {
		return nil, fmt.Errorf("read normal flag failed: %w", err)
	}
	s.Normals = None[vec3.T]()
	if has == 1 {
		if size, err = readCount(rd, maxCount); err != nil {
			return nil, fmt.Errorf("read normal count failed: %w", err)
		}
		normals := make([]vec3.T, size)
		for i := range normals {
			if err := readLittleByte(rd, normals[i][:]); err != nil {
				return nil, fmt.Errorf("read normals failed: %w", err)
			}
		}
		s.Normals = Some(normals)
	}

	if err := readLittleByte(rd, &has); err != nil {
		return nil, fmt.Errorf("read uv flag failed: %w", err)
	}
	s.UVs = None[vec2.T]()
	if has == 1 {
		if size, err = readCount(rd, maxCount); err != nil {
			return nil, fmt.Errorf("read uv count failed: %w", err)
		}
		uvs := make([]vec2.T, size)
		for i := range uvs {
			if err := readLittleByte(rd, uvs[i][:]); err != nil {
				return nil, fmt.Errorf("read uvs failed: %w", err)
			}
		}
		s.UVs = Some(uvs)
	}

	if size, err = readCount(rd, maxCount); err != nil {
		return nil, fmt.Errorf("read face count failed: %w", err)
	}
	s.Faces = make([]Triangle, size)
	for i := range s.Faces {
		if err := readLittleByte(rd, s.Faces[i][:]); err != nil {
			return nil, fmt.Errorf("read faces failed: %w", err)
		}
	}

	if v < V2 {
		return s, nil
	}

	if size, err = readCount(rd, maxCount); err != nil {
		return nil, fmt.Errorf("read bone id count failed: %w", err)
	}
	s.BoneIDs = make([]int, size)
	for i := range s.BoneIDs {
		var id int32
		if err := readLittleByte(rd, &id); err != nil {
			return nil, fmt.Errorf("read bone ids failed: %w", err)
		}
		s.BoneIDs[i] = int(id)
	}
	if size, err = readCount(rd, maxCount); err != nil {
		return nil, fmt.Errorf("read bone count failed: %w", err)
	}
	s.Bones = make([]Bone, size)
	for i := range s.Bones {
		if s.Bones[i], err = boneUnMarshal(rd); err != nil {
			return nil, fmt.Errorf("read bone %d failed: %w", i, err)
		}
	}
	return s, nil
}

func ModelMarshal(wt io.Writer, m *Model) error {
	w := &errWriter{wt: wt}
	if _, err := wt.Write([]byte(MODEL_SIGNATURE)); err != nil {
		return err
	}
	w.write(m.Version)
	w.write(uint32(m.ShapeCount()))
	for _, s := range m.Shapes {
		shapeMarshal(w, s, m.Version)
	}
	return w.err
}

func ModelUnMarshal(rd io.Reader) (*Model, error) {
	sig := make([]byte, 4)
	if _, err := io.ReadFull(rd, sig); err != nil {
		return nil, fmt.Errorf("read signature failed: %w", err)
	}
	if !bytes.Equal(sig, []byte(MODEL_SIGNATURE)) {
		return nil, errors.New("bad signature")
	}
	m := &Model{}
	if err := readLittleByte(rd, &m.Version); err != nil {
		return nil, fmt.Errorf("read version failed: %w", err)
	}
	if m.Version < V1 || m.Version > V2 {
		return nil, fmt.Errorf("unknown version %d", m.Version)
	}
	size, err := readCount(rd, maxCount)
	if err != nil {
		return nil, fmt.Errorf("read shape count failed: %w", err)
	}
	m.Shapes = make([]*Shape, size)
	for i := range m.Shapes {
		if m.Shapes[i], err = shapeUnMarshal(rd, m.Version); err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
	}
	return m, nil
}

func ModelReadFrom(path string) (*Model, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()
	return ModelUnMarshal(bufio.NewReader(f))
}

func ModelWriteTo(path string, m *Model) error {
	os.MkdirAll(filepath.Dir(path), os.ModePerm)
	f, e := os.Create(path)
	if e != nil {
		return e
	}
	bw := bufio.NewWriter(f)
	if err := ModelMarshal(bw, m); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (m *Model) GetShapes() []*Shape {
	return m.Shapes
}

func (m *Model) Save(path string) error {
	return ModelWriteTo(path, m)
}
