package skm

import (
	"errors"
	"fmt"
)

var (
	ErrLoad                  = errors.New("load failed")
	ErrWrite                 = errors.New("write failed")
	ErrNoMatchingShape       = errors.New("no shape with a matching vertex count")
	ErrNoShapes              = errors.New("no shapes to export")
	ErrAmbiguousShape        = errors.New("more than one shape matches")
	ErrShapeSelection        = errors.New("shape selection out of range")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrUnsupportedFormat     = errors.New("unsupported asset format")
)

// NoMatchingShapeError 没有顶点数一致的形状时返回，Expected 为外部网格的顶点数
type NoMatchingShapeError struct {
	Expected int
}

func (e *NoMatchingShapeError) Error() string {
	return fmt.Sprintf("couldn't find a shape with the same amount of vertices, expected: %d", e.Expected)
}

func (e *NoMatchingShapeError) Unwrap() error {
	return ErrNoMatchingShape
}
