package skm

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Asset 可读写的蒙皮资源
type Asset interface {
	GetShapes() []*Shape
	Save(path string) error
}

func IsAssetPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case SKMEXT, GLBEXT, GLTFEXT:
		return true
	}
	return false
}

func IsObjPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), OBJEXT)
}

// OpenAsset 按扩展名选择 .skm 或 glTF 后端
func OpenAsset(path string) (Asset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case SKMEXT:
		return ModelReadFrom(path)
	case GLBEXT, GLTFEXT:
		return OpenGltf(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// SaveAs 以目标扩展名对应的格式保存形状，用于资源之间的格式转换
func SaveAs(shapes []*Shape, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case SKMEXT:
		m := NewModel()
		m.Shapes = shapes
		return ModelWriteTo(path, m)
	case GLBEXT, GLTFEXT:
		m := &Model{Shapes: shapes}
		doc, err := ModelToGltf(m)
		if err != nil {
			return err
		}
		return (&GltfAsset{Doc: doc}).Save(path)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}
