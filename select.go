package skm

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ShapeChooser 在多个候选形状中选出一个，仅在候选多于一个时调用
type ShapeChooser interface {
	Choose(candidates []*Shape) (int, error)
}

type FirstChooser struct{}

func (FirstChooser) Choose(candidates []*Shape) (int, error) {
	return 0, nil
}

// SingleChooser 拒绝任何歧义，适用于非交互场景
type SingleChooser struct{}

func (SingleChooser) Choose(candidates []*Shape) (int, error) {
	return 0, fmt.Errorf("%w: %d candidates", ErrAmbiguousShape, len(candidates))
}

type IndexChooser int

func (c IndexChooser) Choose(candidates []*Shape) (int, error) {
	if int(c) < 0 || int(c) >= len(candidates) {
		return 0, fmt.Errorf("%w: %d of %d", ErrShapeSelection, int(c), len(candidates))
	}
	return int(c), nil
}

// PromptChooser 列出候选形状并从 In 读取一个序号
type PromptChooser struct {
	In  io.Reader
	Out io.Writer
}

func (c *PromptChooser) Choose(candidates []*Shape) (int, error) {
	index := color.New(color.FgGreen)
	fmt.Fprintln(c.Out, "Multiple shapes match, pick one:")
	for i, s := range candidates {
		index.Fprintf(c.Out, "%d", i)
		fmt.Fprintf(c.Out, ": %s\n", s.Name)
	}
	fmt.Fprint(c.Out, "Shape: ")

	var n int
	if _, err := fmt.Fscan(c.In, &n); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrShapeSelection, err)
	}
	return IndexChooser(n).Choose(candidates)
}
