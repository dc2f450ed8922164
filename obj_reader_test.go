package skm

import (
	"reflect"
	"strings"
	"testing"
)

func TestReadObj(t *testing.T) {
	src := `# comment
mtllib a.mtl
o thing
v 1 2 3
v 4 5 6 1.0
vt 0.5 0.25
vt 0 1 0
vn 0 0 1
vn 0 1 0
usemtl mat
f 1/1/1 2/2/2 1/1/1
`
	mesh, err := ReadObj(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(mesh.Vertices, []float32{1, 2, 3, 4, 5, 6}) {
		t.Errorf("vertices got %v", mesh.Vertices)
	}
	if !reflect.DeepEqual(mesh.TexCoords, []float32{0.5, 0.25, 0, 1}) {
		t.Errorf("texcoords got %v", mesh.TexCoords)
	}
	if !reflect.DeepEqual(mesh.Normals, []float32{0, 0, 1, 0, 1, 0}) {
		t.Errorf("normals got %v", mesh.Normals)
	}
	if mesh.VertexCount() != 2 || mesh.TexCoordCount() != 2 || mesh.NormalCount() != 2 {
		t.Errorf("counts got %d %d %d", mesh.VertexCount(), mesh.TexCoordCount(), mesh.NormalCount())
	}
}

func TestReadObjErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line string
	}{
		{"BadNumber", "v 0 0 0\nv 1 x 0\n", "line 2"},
		{"ShortVertex", "v 1 2\n", "line 1"},
		{"EmptyTexCoord", "# c\n\nvt\n", "line 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadObj(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Errorf("error %q does not name %s", err, tt.line)
			}
		})
	}
}

func TestReadObjShortTexCoord(t *testing.T) {
	mesh, err := ReadObj(strings.NewReader("v 0 0 0\nvt 0.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(mesh.TexCoords, []float32{0.5, 0}) {
		t.Errorf("texcoords got %v, want [0.5 0]", mesh.TexCoords)
	}
}
