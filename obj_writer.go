package skm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flywave/go3d/vec3"
)

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func formatVec3(v vec3.T) string {
	return formatFloat(v[0]) + " " + formatFloat(v[1]) + " " + formatFloat(v[2])
}

// cornerTemplate 描述面中一个角点的索引组：位置，可选UV，可选法线。
// UV缺失时直接省略该组，而不是留空。
type cornerTemplate struct {
	uv     bool
	normal bool
}

func (c cornerTemplate) format(sb *strings.Builder, idx uint32, off Offsets) {
	sb.WriteString(strconv.Itoa(int(idx) + off.V))
	if c.uv {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(int(idx) + off.VT))
	}
	if c.normal {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(int(idx) + off.VN))
	}
}

func (c cornerTemplate) faceLine(f Triangle, off Offsets) string {
	var sb strings.Builder
	sb.WriteString("f ")
	c.format(&sb, f[0], off)
	sb.WriteByte(' ')
	c.format(&sb, f[1], off)
	sb.WriteByte(' ')
	c.format(&sb, f[2], off)
	return sb.String()
}

// WriteObj 将形状写为OBJ文本。off 为各通道的起始编号，
// 用于在同一个流中追加多个形状。
func WriteObj(w io.Writer, s *Shape, off Offsets) error {
	bw := bufio.NewWriter(w)
	uvs, hasUV := s.UVs.Get()
	normals, hasNormal := s.Normals.Get()

	fmt.Fprintf(bw, "# %s\n\n", Banner)
	fmt.Fprintf(bw, "# %d Vertices\n", s.VertexCount())
	fmt.Fprintf(bw, "# %d Texture coordinates\n", len(uvs))
	fmt.Fprintf(bw, "# %d Normals\n", len(normals))
	fmt.Fprintf(bw, "# %d Faces\n", s.FaceCount())

	if s.Name != "" {
		fmt.Fprintf(bw, "\no %s\n\n", s.Name)
	}

	for _, v := range s.Positions {
		fmt.Fprintf(bw, "v %s\n", formatVec3(v))
	}
	bw.WriteString("\n")

	tpl := cornerTemplate{}
	if hasUV {
		for _, p := range uvs {
			fmt.Fprintf(bw, "vt %s %s\n", formatFloat(p[0]), formatFloat(FlipV(p[1])))
		}
		bw.WriteString("\n")
		tpl.uv = true
	}

	if hasNormal {
		for _, n := range normals {
			fmt.Fprintf(bw, "vn %s\n", formatVec3(n))
		}
		bw.WriteString("\n")
		tpl.normal = true
	}

	for _, f := range s.Faces {
		bw.WriteString(tpl.faceLine(f, off))
		bw.WriteByte('\n')
	}
	bw.WriteString("\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write obj failed: %w", err)
	}
	return nil
}
