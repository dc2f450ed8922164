package skm

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flywave/go3d/vec3"
)

func writeModel(t *testing.T, dir, name string, shapes ...*Shape) string {
	t.Helper()
	m := NewModel()
	m.Shapes = shapes
	path := filepath.Join(dir, name)
	if err := ModelWriteTo(path, m); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConverter(opts Options) (*Converter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Converter{Options: opts, Chooser: SingleChooser{}, Out: out}, out
}

func TestAssetToObj(t *testing.T) {
	dir := t.TempDir()
	src := writeModel(t, dir, "quad.skm", skinnedQuad())

	tests := []struct {
		name string
		skin bool
		want string
	}{
		{"BindPose", false, "v 1 1 0\n"},
		{"Skinned", true, "v 0 4 0.25\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := filepath.Join(dir, tt.name+".obj")
			c, _ := testConverter(Options{Skin: tt.skin})
			if err := c.AssetToObj(src, dst); err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(dst)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range []string{"o quad\n", tt.want, "f 1/1/1 2/2/2 3/3/3\n"} {
				if !strings.Contains(string(data), want) {
					t.Errorf("obj lacks %q", want)
				}
			}
		})
	}
}

func TestAssetToObjWarnsOnOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := writeModel(t, dir, "quad.skm", quadShape())
	dst := filepath.Join(dir, "quad.obj")
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, out := testConverter(Options{})
	if err := c.AssetToObj(src, dst); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("no overwrite warning: %q", out)
	}
	data, _ := os.ReadFile(dst)
	if strings.HasPrefix(string(data), "old") {
		t.Errorf("target was not overwritten")
	}
}

func TestAssetToObjErrors(t *testing.T) {
	dir := t.TempDir()
	empty := writeModel(t, dir, "empty.skm")
	two := writeModel(t, dir, "two.skm", quadShape(), quadShape())

	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"Missing", filepath.Join(dir, "none.skm"), ErrLoad},
		{"MissingCause", filepath.Join(dir, "none.skm"), fs.ErrNotExist},
		{"NoShapes", empty, ErrNoShapes},
		{"Ambiguous", two, ErrAmbiguousShape},
		{"Format", filepath.Join(dir, "x.fbx"), ErrLoad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testConverter(Options{})
			err := c.AssetToObj(tt.src, filepath.Join(dir, tt.name+".obj"))
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestObjToAssetRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		inPlace bool
	}{
		{"Suffixed", false},
		{"InPlace", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			asset := writeModel(t, dir, "quad.skm", skinnedQuad())
			obj := filepath.Join(dir, "quad.obj")

			c, out := testConverter(Options{Skin: true, InPlace: tt.inPlace})
			if err := c.AssetToObj(asset, obj); err != nil {
				t.Fatal(err)
			}
			if err := c.ObjToAsset(obj, asset); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out.String(), "vertices: updated") {
				t.Errorf("missing report: %q", out)
			}

			dst := asset + ".skm"
			if tt.inPlace {
				dst = asset
			} else if _, err := os.Stat(dst); err != nil {
				t.Fatalf("expected %s: %v", dst, err)
			}
			m, err := ModelReadFrom(dst)
			if err != nil {
				t.Fatal(err)
			}
			checkVec3s(t, m.Shapes[0].Positions, skinnedQuad().Positions)
		})
	}
}

func TestObjToAssetSelectsShape(t *testing.T) {
	dir := t.TempDir()
	a, b := quadShape(), quadShape()
	a.Name, b.Name = "a", "b"
	asset := writeModel(t, dir, "pair.skm", a, b, triShape())
	obj := filepath.Join(dir, "moved.obj")
	if err := os.WriteFile(obj, []byte("v 0 0 5\nv 1 0 5\nv 1 1 5\nv 0 1 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _ := testConverter(Options{InPlace: true})
	if err := c.ObjToAsset(obj, asset); !errors.Is(err, ErrAmbiguousShape) {
		t.Fatalf("got %v, want ambiguous", err)
	}

	c.Chooser = IndexChooser(1)
	if err := c.ObjToAsset(obj, asset); err != nil {
		t.Fatal(err)
	}
	m, err := ModelReadFrom(asset)
	if err != nil {
		t.Fatal(err)
	}
	checkVec3s(t, m.Shapes[0].Positions, quadShape().Positions)
	checkVec3s(t, m.Shapes[1].Positions, []vec3.T{{0, 0, 5}, {1, 0, 5}, {1, 1, 5}, {0, 1, 5}})
}

func TestObjToAssetNoMatch(t *testing.T) {
	dir := t.TempDir()
	asset := writeModel(t, dir, "quad.skm", quadShape())
	obj := filepath.Join(dir, "line.obj")
	if err := os.WriteFile(obj, []byte("v 0 0 0\nv 1 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _ := testConverter(Options{})
	err := c.ObjToAsset(obj, asset)
	var nm *NoMatchingShapeError
	if !errors.As(err, &nm) || nm.Expected != 2 {
		t.Fatalf("got %v", err)
	}
	if !errors.Is(err, ErrNoMatchingShape) {
		t.Errorf("should unwrap to ErrNoMatchingShape")
	}
	if _, err := os.Stat(asset + ".skm"); err == nil {
		t.Errorf("nothing should be written on failure")
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	src := writeModel(t, dir, "quad.skm", skinnedQuad())
	c, _ := testConverter(Options{})

	glb := filepath.Join(dir, "quad.glb")
	if err := c.Convert(src, glb); err != nil {
		t.Fatal(err)
	}
	a, err := OpenAsset(glb)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.GetShapes()) != 1 || len(a.GetShapes()[0].Bones) != 2 {
		t.Errorf("glb lost shapes or bones")
	}

	if err := c.Convert(glb, filepath.Join(dir, "quad.obj")); err != nil {
		t.Fatal(err)
	}
	if err := c.Convert(filepath.Join(dir, "quad.obj"), glb); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(glb + ".glb"); err != nil {
		t.Errorf("expected suffixed glb: %v", err)
	}

	if err := c.Convert("a.txt", "b.obj"); !errors.Is(err, ErrUnsupportedConversion) {
		t.Errorf("got %v, want unsupported", err)
	}
}

func TestImportPath(t *testing.T) {
	c := NewConverter(Options{})
	if got := c.ImportPath("a/b.glb"); got != "a/b.glb.glb" {
		t.Errorf("got %s", got)
	}
	c.InPlace = true
	if got := c.ImportPath("a/b.glb"); got != "a/b.glb" {
		t.Errorf("got %s", got)
	}
}

func TestObjToAssetMissingObj(t *testing.T) {
	dir := t.TempDir()
	asset := writeModel(t, dir, "quad.skm", quadShape())
	c, _ := testConverter(Options{})
	err := c.ObjToAsset(filepath.Join(dir, "none.obj"), asset)
	if !errors.Is(err, ErrLoad) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want load error wrapping not-exist", err)
	}
}

func TestAssetToAssetWarnsOnLostInfluences(t *testing.T) {
	dir := t.TempDir()
	s := skinnedQuad()
	s.AddBone(Bone{Transform: IdentityTransform, Weights: []VertexWeight{{3, 0}}})
	src := writeModel(t, dir, "quad.skm", s)

	c, out := testConverter(Options{})
	if err := c.AssetToAsset(src, filepath.Join(dir, "quad.glb")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1 bone influences") {
		t.Errorf("no influence warning: %q", out)
	}

	out.Reset()
	if err := c.AssetToAsset(src, filepath.Join(dir, "copy.skm")); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("skm output should not warn: %q", out)
	}
}
