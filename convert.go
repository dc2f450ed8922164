package skm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Options 转换选项，Skin 表示在绑定姿态与蒙皮姿态之间转换
type Options struct {
	Skin    bool `json:"skin"`
	InPlace bool `json:"in_place"`
}

// Converter 连接资源读写、形状选择与属性迁移
type Converter struct {
	Options
	Chooser ShapeChooser
	Out     io.Writer
}

func NewConverter(opts Options) *Converter {
	return &Converter{
		Options: opts,
		Chooser: &PromptChooser{In: os.Stdin, Out: os.Stdout},
		Out:     os.Stdout,
	}
}

func (c *Converter) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

func (c *Converter) choose(candidates []*Shape) (*Shape, error) {
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	chooser := c.Chooser
	if chooser == nil {
		chooser = SingleChooser{}
	}
	i, err := chooser.Choose(candidates)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(candidates) {
		return nil, fmt.Errorf("%w: %d of %d", ErrShapeSelection, i, len(candidates))
	}
	return candidates[i], nil
}

// ImportPath 非原地模式下在目标路径后再追加一次其扩展名
func (c *Converter) ImportPath(dst string) string {
	if c.InPlace {
		return dst
	}
	return dst + filepath.Ext(dst)
}

// ObjToAsset 把OBJ中的属性写入 assetPath 中顶点数一致的形状
func (c *Converter) ObjToAsset(objPath, assetPath string) error {
	ext, err := LoadObj(objPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoad, objPath, err)
	}
	asset, err := OpenAsset(assetPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoad, assetPath, err)
	}

	var candidates []*Shape
	for _, s := range asset.GetShapes() {
		if s.VertexCount() == ext.VertexCount() {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return &NoMatchingShapeError{Expected: ext.VertexCount()}
	}
	s, err := c.choose(candidates)
	if err != nil {
		return err
	}

	var rep TransferReport
	if c.Skin {
		rep = ImportWithPose(ext, s)
	} else {
		rep = TransferAttributes(ext, s)
	}
	c.report(s, rep)

	dst := c.ImportPath(assetPath)
	if err := asset.Save(dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, dst, err)
	}
	return nil
}

func (c *Converter) report(s *Shape, rep TransferReport) {
	w := c.out()
	skipped := color.New(color.FgYellow)
	line := func(name string, done bool) {
		if done {
			fmt.Fprintf(w, "  %s: updated\n", name)
		} else {
			skipped.Fprintf(w, "  %s: skipped\n", name)
		}
	}
	fmt.Fprintf(w, "Shape %s:\n", s.Name)
	line("vertices", rep.Positions)
	line("normals", rep.Normals)
	line("uvs", rep.UVs)
}

// AssetToObj 把资源中的一个形状写成OBJ，目标文件存在时只警告并覆盖
func (c *Converter) AssetToObj(assetPath, objPath string) error {
	if _, err := os.Stat(objPath); err == nil {
		color.New(color.FgRed).Fprintf(c.out(), "Warning: %s already exists, it will be overwritten\n", objPath)
	}

	asset, err := OpenAsset(assetPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoad, assetPath, err)
	}
	shapes := asset.GetShapes()
	if len(shapes) == 0 {
		return ErrNoShapes
	}
	s, err := c.choose(shapes)
	if err != nil {
		return err
	}
	if c.Skin {
		s = PosedShape(s)
	}

	f, err := os.Create(objPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, objPath, err)
	}
	if err := WriteObj(f, s, DefaultOffsets); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrWrite, objPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, objPath, err)
	}
	return nil
}

// AssetToAsset 在 .skm 与 glTF 之间转换，Skin 时输出蒙皮后的位置
func (c *Converter) AssetToAsset(src, dst string) error {
	asset, err := OpenAsset(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoad, src, err)
	}
	shapes := asset.GetShapes()
	if len(shapes) == 0 {
		return ErrNoShapes
	}
	if c.Skin {
		posed := make([]*Shape, len(shapes))
		for i, s := range shapes {
			posed[i] = PosedShape(s)
		}
		shapes = posed
	}
	if !strings.EqualFold(filepath.Ext(dst), SKMEXT) {
		warn := color.New(color.FgYellow)
		for _, s := range shapes {
			if n := LostInfluences(s); n > 0 {
				warn.Fprintf(c.out(), "Warning: shape %s: %d bone influences do not fit in glTF and are dropped\n", s.Name, n)
			}
		}
	}
	if err := SaveAs(shapes, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, dst, err)
	}
	return nil
}

// Convert 按扩展名决定转换方向
func (c *Converter) Convert(src, dst string) error {
	switch {
	case IsObjPath(src) && IsAssetPath(dst):
		return c.ObjToAsset(src, dst)
	case IsAssetPath(src) && IsObjPath(dst):
		return c.AssetToObj(src, dst)
	case IsAssetPath(src) && IsAssetPath(dst):
		return c.AssetToAsset(src, dst)
	}
	return fmt.Errorf("%w: %s -> %s", ErrUnsupportedConversion, src, dst)
}
