package loaders

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/spaghettifunk/meshview/engine/core"
	"github.com/spaghettifunk/meshview/engine/renderer/metadata"
)

const cubeObj = `# unit cube, 8 positions, 12 triangles
o cube
v -0.5 -0.5  0.5
v  0.5 -0.5  0.5
v  0.5  0.5  0.5
v -0.5  0.5  0.5
v -0.5 -0.5 -0.5
v  0.5 -0.5 -0.5
v  0.5  0.5 -0.5
v -0.5  0.5 -0.5
s off
f 1 2 3
f 1 3 4
f 6 5 8
f 6 8 7
f 4 3 7
f 4 7 8
f 5 6 2
f 5 2 1
f 2 6 7
f 2 7 3
f 5 1 4
f 5 4 8
`

const texturedTriangleObj = `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
vn 0 0 1
vn 0 0 1
f 1/1/1 2/2/2 3/3/3
`

func checkInvariants(t *testing.T, mesh *metadata.MeshData) {
	t.Helper()
	n := mesh.NumVertices()
	if mesh.NumIndices() != n {
		t.Fatalf("NumIndices()=%d; want NumVertices()=%d", mesh.NumIndices(), n)
	}
	if got := len(mesh.Positions()); got != 3*n {
		t.Fatalf("len(Positions())=%d; want %d", got, 3*n)
	}
	if mesh.HasNormals() && len(mesh.Normals()) != 3*n {
		t.Fatalf("len(Normals())=%d; want %d", len(mesh.Normals()), 3*n)
	}
	if mesh.HasTextureCoords() && len(mesh.TextureCoords()) != 2*n {
		t.Fatalf("len(TextureCoords())=%d; want %d", len(mesh.TextureCoords()), 2*n)
	}
	for i, idx := range mesh.Indices() {
		if idx != uint32(i) {
			t.Fatalf("Indices()[%d]=%d; want %d", i, idx, i)
		}
	}
}

func TestLoadObj_Cube(t *testing.T) {
	mesh, err := LoadObj(strings.NewReader(cubeObj))
	if err != nil {
		t.Fatalf("LoadObj(cube) err=%v", err)
	}
	checkInvariants(t, mesh)
	if mesh.NumVertices() != 36 || mesh.NumIndices() != 36 {
		t.Fatalf("NumVertices()=%d NumIndices()=%d; want 36 36", mesh.NumVertices(), mesh.NumIndices())
	}
	if mesh.HasNormals() || mesh.HasTextureCoords() {
		t.Fatalf("HasNormals()=%t HasTextureCoords()=%t; want false false", mesh.HasNormals(), mesh.HasTextureCoords())
	}
	// Third face "f 6 5 8" starts at output vertex 6.
	if got := mesh.Position(6); got != [3]float32{0.5, -0.5, -0.5} {
		t.Fatalf("Position(6)=%v; want [0.5 -0.5 -0.5]", got)
	}
	if got := mesh.Position(35); got != [3]float32{-0.5, 0.5, -0.5} {
		t.Fatalf("Position(35)=%v; want [-0.5 0.5 -0.5]", got)
	}
}

func TestLoadObj_UnreferencedAttributesAreAbsent(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1 2 3
`
	mesh, err := LoadObj(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadObj err=%v", err)
	}
	checkInvariants(t, mesh)
	if mesh.Normals() != nil || mesh.TextureCoords() != nil {
		t.Fatalf("Normals()=%v TextureCoords()=%v; want nil nil", mesh.Normals(), mesh.TextureCoords())
	}
	if mesh.Stride() != 3 {
		t.Fatalf("Stride()=%d; want 3", mesh.Stride())
	}
}

func TestLoadObj_FullCorners(t *testing.T) {
	mesh, err := LoadObj(strings.NewReader(texturedTriangleObj))
	if err != nil {
		t.Fatalf("LoadObj err=%v", err)
	}
	checkInvariants(t, mesh)
	if got := len(mesh.Normals()); got != 9 {
		t.Fatalf("len(Normals())=%d; want 9", got)
	}
	if got := len(mesh.TextureCoords()); got != 6 {
		t.Fatalf("len(TextureCoords())=%d; want 6", got)
	}
	if uv, ok := mesh.TextureCoord(1); !ok || uv != [2]float32{1, 0} {
		t.Fatalf("TextureCoord(1)=%v,%t; want [1 0],true", uv, ok)
	}
	if mesh.Stride() != 8 {
		t.Fatalf("Stride()=%d; want 8", mesh.Stride())
	}
	want := []float32{
		0, 0, 0, 0, 0, 1, 0, 0,
		1, 0, 0, 0, 0, 1, 1, 0,
		0, 1, 0, 0, 0, 1, 0, 1,
	}
	got := mesh.Interleaved()
	if len(got) != len(want) {
		t.Fatalf("len(Interleaved())=%d; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Interleaved()[%d]=%v; want %v", i, got[i], want[i])
		}
	}
}

func TestLoadObj_PerCornerDivergence(t *testing.T) {
	// Position 1 is shared by both faces with different normals; each corner
	// becomes its own output vertex.
	src := `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
vn 0 0 1
vn 1 0 0
f 1//1 2//1 3//1
f 1//2 3//2 4//2
`
	mesh, err := LoadObj(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadObj err=%v", err)
	}
	checkInvariants(t, mesh)
	if mesh.NumVertices() != 6 {
		t.Fatalf("NumVertices()=%d; want 6", mesh.NumVertices())
	}
	if mesh.HasTextureCoords() {
		t.Fatalf("HasTextureCoords()=true; want false for v//vn corners")
	}
	n0, _ := mesh.Normal(0)
	n3, _ := mesh.Normal(3)
	if mesh.Position(0) != mesh.Position(3) || n0 == n3 {
		t.Fatalf("vertex 0 and 3: positions %v %v normals %v %v; want same position, different normals",
			mesh.Position(0), mesh.Position(3), n0, n3)
	}
}

func TestLoadObj_TolerantInput(t *testing.T) {
	src := "# exported\r\n\r\nmtllib cube.mtl\r\nv 0 0 0 1.0\r\nv 1 0 0\r\nv 0 1 0\r\nvt 0.5 0.5 0\r\ng tri\r\nusemtl none\r\nf 1/1 2/1 3/1\r\n"
	mesh, err := LoadObj(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadObj err=%v", err)
	}
	checkInvariants(t, mesh)
	if !mesh.HasTextureCoords() || mesh.HasNormals() {
		t.Fatalf("HasTextureCoords()=%t HasNormals()=%t; want true false", mesh.HasTextureCoords(), mesh.HasNormals())
	}
}

func TestLoadObj_Empty(t *testing.T) {
	mesh, err := LoadObj(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadObj(\"\") err=%v", err)
	}
	if mesh.NumVertices() != 0 || mesh.NumIndices() != 0 {
		t.Fatalf("NumVertices()=%d NumIndices()=%d; want 0 0", mesh.NumVertices(), mesh.NumIndices())
	}
}

func TestLoadObj_Errors(t *testing.T) {
	tcs := []struct {
		name string
		src  string
		want error
		line int
	}{
		{name: "no positions", src: "f 1 2 3\n", want: core.ErrIndexOutOfRange, line: 1},
		{name: "quad", src: "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n", want: core.ErrUnsupportedFace, line: 5},
		{name: "two corners", src: "v 0 0 0\nv 1 0 0\nf 1 2\n", want: core.ErrUnsupportedFace, line: 3},
		{name: "short vertex", src: "v 0 0\n", want: core.ErrMalformedLine, line: 1},
		{name: "bad float", src: "v 0 zero 0\n", want: core.ErrMalformedLine, line: 1},
		{name: "short texcoord", src: "vt 0\n", want: core.ErrMalformedLine, line: 1},
		{name: "short normal", src: "vn 0 1\n", want: core.ErrMalformedLine, line: 1},
		{name: "bad index", src: "v 0 0 0\nf a 1 1\n", want: core.ErrMalformedLine, line: 2},
		{name: "zero index", src: "v 0 0 0\nf 0 1 1\n", want: core.ErrIndexOutOfRange, line: 2},
		{name: "negative index", src: "v 0 0 0\nf -1 1 1\n", want: core.ErrIndexOutOfRange, line: 2},
		{name: "forward reference", src: "v 0 0 0\nv 1 0 0\nf 1 2 3\nv 0 1 0\n", want: core.ErrIndexOutOfRange, line: 3},
		{name: "texture out of range", src: "v 0 0 0\nvt 0 0\nf 1/2 1/1 1/1\n", want: core.ErrIndexOutOfRange, line: 3},
		{name: "normal out of range", src: "v 0 0 0\nf 1//1 1//1 1//1\n", want: core.ErrIndexOutOfRange, line: 2},
		{name: "mixed layout in face", src: "v 0 0 0\nvt 0 0\nf 1/1 1 1\n", want: core.ErrMalformedLine, line: 3},
		{name: "mixed layout across faces", src: "v 0 0 0\nvn 0 0 1\nf 1 1 1\nf 1//1 1//1 1//1\n", want: core.ErrMalformedLine, line: 4},
		{name: "invalid utf8", src: "v 0 0 0\n\xff\xfe\n", want: core.ErrStream, line: 2},
	}

	for _, tc := range tcs {
		mesh, err := LoadObj(strings.NewReader(tc.src))
		if err == nil {
			t.Fatalf("%s: LoadObj()=%v; want error %v", tc.name, mesh, tc.want)
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: LoadObj() err=%v; want %v", tc.name, err, tc.want)
		}
		var le *core.LoadError
		if !errors.As(err, &le) {
			t.Fatalf("%s: LoadObj() err=%T; want *core.LoadError", tc.name, err)
		}
		if le.Line != tc.line {
			t.Fatalf("%s: LoadError.Line=%d; want %d", tc.name, le.Line, tc.line)
		}
	}
}

func TestLoadObj_ReadFailure(t *testing.T) {
	_, err := LoadObj(iotest.ErrReader(errors.New("disk gone")))
	if !errors.Is(err, core.ErrStream) {
		t.Fatalf("LoadObj(ErrReader) err=%v; want %v", err, core.ErrStream)
	}
}

func TestLoadObj_AccessorsReturnCopies(t *testing.T) {
	mesh, err := LoadObj(strings.NewReader(texturedTriangleObj))
	if err != nil {
		t.Fatalf("LoadObj err=%v", err)
	}
	p := mesh.Positions()
	p[0] = 42
	idx := mesh.Indices()
	idx[1] = 7
	if mesh.Positions()[0] != 0 || mesh.Indices()[1] != 1 {
		t.Fatalf("mesh mutated through accessor copies")
	}
}

func TestModelLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.obj")
	if err := os.WriteFile(path, []byte(cubeObj), 0o644); err != nil {
		t.Fatal(err)
	}

	ml := &ModelLoader{}
	res, err := ml.Load(path, metadata.ResourceTypeModel, nil)
	if err != nil {
		t.Fatalf("Load(%q) err=%v", path, err)
	}
	if res.Name != "cube" || res.FullPath != path || res.Type != metadata.ResourceTypeModel {
		t.Fatalf("Load(%q)=%+v; want name cube, model type", path, res)
	}
	mesh, ok := res.Data.(*metadata.MeshData)
	if !ok {
		t.Fatalf("Load(%q).Data=%T; want *metadata.MeshData", path, res.Data)
	}
	if mesh.NumIndices() != 36 {
		t.Fatalf("NumIndices()=%d; want 36", mesh.NumIndices())
	}
	if err := ml.Unload(res); err != nil {
		t.Fatalf("Unload err=%v", err)
	}
}

func TestModelLoader_LoadFailures(t *testing.T) {
	dir := t.TempDir()
	ml := &ModelLoader{}

	if _, err := ml.Load(filepath.Join(dir, "missing.obj"), metadata.ResourceTypeModel, nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load(missing) err=%v; want os.ErrNotExist", err)
	}

	bad := filepath.Join(dir, "quad.obj")
	if err := os.WriteFile(bad, []byte("v 0 0 0\nf 1 1 1 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ml.Load(bad, metadata.ResourceTypeModel, nil)
	if !errors.Is(err, core.ErrUnsupportedFace) || !strings.Contains(err.Error(), bad) {
		t.Fatalf("Load(quad) err=%v; want ErrUnsupportedFace mentioning the path", err)
	}

	if _, err := ml.Load(bad, metadata.ResourceTypeNone, nil); err == nil {
		t.Fatalf("Load(none type) err=nil; want error")
	}
}

func TestModelLoader_SampleAsset(t *testing.T) {
	path := filepath.Join("..", "..", "..", "assets", "models", "cube.obj")
	res, err := (&ModelLoader{}).Load(path, metadata.ResourceTypeModel, nil)
	if err != nil {
		t.Fatalf("Load(%q) err=%v", path, err)
	}
	mesh := res.Data.(*metadata.MeshData)
	checkInvariants(t, mesh)
	if mesh.NumVertices() != 36 || !mesh.HasNormals() || mesh.HasTextureCoords() {
		t.Fatalf("sample cube: %d vertices normals=%t texcoords=%t; want 36 with normals only",
			mesh.NumVertices(), mesh.HasNormals(), mesh.HasTextureCoords())
	}
	if n, _ := mesh.Normal(0); n != [3]float32{0, 0, 1} {
		t.Fatalf("Normal(0)=%v; want front face normal", n)
	}
}
