package skm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadObj 读取OBJ文本中的 v/vt/vn 数据，返回扁平缓冲。
// 面、分组、材质等语句被忽略：属性按文件中的出现顺序与形状顶点对齐。
func ReadObj(rd io.Reader) (*ExternalMesh, error) {
	mesh := &ExternalMesh{}
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "v":
			mesh.Vertices, err = appendFloats(mesh.Vertices, fields[1:], 3, 3)
		case "vn":
			mesh.Normals, err = appendFloats(mesh.Normals, fields[1:], 3, 3)
		case "vt":
			// 只有 u 时 v 取0
			mesh.TexCoords, err = appendFloats(mesh.TexCoords, fields[1:], 1, 2)
		}
		if err != nil {
			return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj failed: %w", err)
	}
	return mesh, nil
}

// appendFloats 至少需要 min 个分量，读取前 n 个，缺少的补0，多余的分量（如 w）被忽略
func appendFloats(dst []float32, fields []string, min, n int) ([]float32, error) {
	if len(fields) < min {
		return dst, fmt.Errorf("expected %d components, got %d", min, len(fields))
	}
	for i := 0; i < n; i++ {
		if i >= len(fields) {
			dst = append(dst, 0)
			continue
		}
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return dst, fmt.Errorf("parse %q: %w", fields[i], err)
		}
		dst = append(dst, float32(f))
	}
	return dst, nil
}

func LoadObj(path string) (*ExternalMesh, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()
	return ReadObj(f)
}
