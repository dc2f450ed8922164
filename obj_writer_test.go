package skm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

func triShape() *Shape {
	return NewShape("tri", []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []Triangle{{0, 1, 2}})
}

func TestWriteObjPositionsOnly(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteObj(buf, triShape(), DefaultOffsets); err != nil {
		t.Fatal(err)
	}
	want := "# " + Banner + "\n\n" +
		"# 3 Vertices\n" +
		"# 0 Texture coordinates\n" +
		"# 0 Normals\n" +
		"# 1 Faces\n" +
		"\no tri\n\n" +
		"v 0 0 0\nv 1 0 0\nv 0 1 0\n\n" +
		"f 1 2 3\n\n"
	if buf.String() != want {
		t.Errorf("got\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteObjFaces(t *testing.T) {
	uvs := Some([]vec2.T{{0, 0}, {1, 0}, {0, 1}})
	normals := Some([]vec3.T{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})

	tests := []struct {
		name    string
		uvs     Channel[vec2.T]
		normals Channel[vec3.T]
		off     Offsets
		want    string
	}{
		{"Positions", None[vec2.T](), None[vec3.T](), DefaultOffsets, "f 1 2 3"},
		{"UVs", uvs, None[vec3.T](), DefaultOffsets, "f 1/1 2/2 3/3"},
		// UV缺失时省略该组
		{"Normals", None[vec2.T](), normals, DefaultOffsets, "f 1/1 2/2 3/3"},
		{"All", uvs, normals, DefaultOffsets, "f 1/1/1 2/2/2 3/3/3"},
		{"Offsets", uvs, normals, Offsets{V: 10, VT: 20, VN: 30}, "f 10/20/30 11/21/31 12/22/32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := triShape()
			s.UVs = tt.uvs
			s.Normals = tt.normals
			buf := &bytes.Buffer{}
			if err := WriteObj(buf, s, tt.off); err != nil {
				t.Fatal(err)
			}
			var faces []string
			for _, line := range strings.Split(buf.String(), "\n") {
				if strings.HasPrefix(line, "f ") {
					faces = append(faces, line)
				}
			}
			if len(faces) != 1 || faces[0] != tt.want {
				t.Errorf("got %q, want %q", faces, tt.want)
			}
		})
	}
}

func TestWriteObjChannels(t *testing.T) {
	s := triShape()
	s.Name = ""
	s.UVs = Some([]vec2.T{{0.25, 0.25}, {1, 0}, {0, 1}})
	s.Normals = Some([]vec3.T{{0, 0, 1}, {0, 0.5, 1}, {0, 0, 1}})

	buf := &bytes.Buffer{}
	if err := WriteObj(buf, s, DefaultOffsets); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"# 3 Texture coordinates\n",
		"# 3 Normals\n",
		"vt 0.25 0.75\n",
		"vt 1 1\n",
		"vn 0 0.5 1\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q", want)
		}
	}
	if strings.Contains(out, "\no ") {
		t.Errorf("unnamed shape should not write an object line")
	}
	if strings.Index(out, "vt ") > strings.Index(out, "vn ") {
		t.Errorf("vt lines should precede vn lines")
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, bytes.ErrTooLarge
}

func TestWriteObjError(t *testing.T) {
	if err := WriteObj(failWriter{}, triShape(), DefaultOffsets); err == nil {
		t.Errorf("expected write error")
	}
}
