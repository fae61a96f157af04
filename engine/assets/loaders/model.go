package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spaghettifunk/meshview/engine/core"
	"github.com/spaghettifunk/meshview/engine/renderer/metadata"
)

// maxLineSize bounds a single OBJ line; the scanner default of 64KiB is too
// small for exporters that write long comment headers.
const maxLineSize = 1024 * 1024

type ModelLoader struct{}

// Load opens the OBJ file at path and parses it with LoadObj. The file is
// closed on every return path.
func (ml *ModelLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if assetType != metadata.ResourceTypeModel {
		return nil, fmt.Errorf("model loader cannot load %s resources", assetType)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mesh, err := LoadObj(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	core.LogDebug("loaded model '%s': %d vertices, %d indices, normals=%t, texcoords=%t",
		path, mesh.NumVertices(), mesh.NumIndices(), mesh.HasNormals(), mesh.HasTextureCoords())

	return &metadata.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		Type:     metadata.ResourceTypeModel,
		DataSize: uint64(mesh.NumVertices()*4*mesh.Stride() + mesh.NumIndices()*4),
		Data:     mesh,
	}, nil
}

func (ml *ModelLoader) Unload(*metadata.Resource) error {
	return nil
}

// faceLayout records which optional attributes a face corner carries.
type faceLayout struct {
	texture bool
	normal  bool
}

func (l faceLayout) String() string {
	switch {
	case l.texture && l.normal:
		return "v/vt/vn"
	case l.texture:
		return "v/vt"
	case l.normal:
		return "v//vn"
	default:
		return "v"
	}
}

type objParser struct {
	positions [][3]float32
	texcoords [][2]float32
	normals   [][3]float32

	positionRefs []int
	texcoordRefs []int
	normalRefs   []int

	layout    faceLayout
	hasLayout bool
}

// LoadObj reads an OBJ subset (v, vt, vn and triangular f directives) from r
// and flattens it into one output vertex per face corner. Other directives,
// comments and blank lines are ignored. The reader is consumed but not closed.
//
// Every failure is a *core.LoadError wrapping one of core.ErrMalformedLine,
// core.ErrUnsupportedFace, core.ErrIndexOutOfRange or core.ErrStream.
func LoadObj(r io.Reader) (*metadata.MeshData, error) {
	p := &objParser{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !utf8.ValidString(line) {
			return nil, &core.LoadError{Line: lineNo, Text: line, Err: fmt.Errorf("%w: invalid UTF-8", core.ErrStream)}
		}
		if err := p.parseLine(line); err != nil {
			return nil, &core.LoadError{Line: lineNo, Text: strings.TrimSpace(line), Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &core.LoadError{Line: lineNo + 1, Err: fmt.Errorf("%w: %v", core.ErrStream, err)}
	}

	mesh, err := p.flatten()
	if err != nil {
		return nil, &core.LoadError{Err: err}
	}
	return mesh, nil
}

func (p *objParser) parseLine(line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}

	switch tokens[0] {
	case "v":
		v, err := parseFloats(tokens[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(tokens[1:], 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, [2]float32{v[0], v[1]})
	case "vn":
		v, err := parseFloats(tokens[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, [3]float32{v[0], v[1], v[2]})
	case "f":
		return p.parseFace(tokens[1:])
	default:
		// Comments, groups, materials, smoothing groups and anything else.
	}
	return nil
}

// parseFloats parses the first n tokens. Extra tokens, such as the optional
// w component of a position, are ignored.
func parseFloats(tokens []string, n int) ([]float32, error) {
	if len(tokens) < n {
		return nil, fmt.Errorf("%w: expected %d values, got %d", core.ErrMalformedLine, n, len(tokens))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(tokens[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", core.ErrMalformedLine, tokens[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *objParser) parseFace(corners []string) error {
	if len(corners) != 3 {
		return fmt.Errorf("%w: got %d corners", core.ErrUnsupportedFace, len(corners))
	}

	// Resolve all three corners before appending so a bad corner leaves no
	// partial face behind.
	var pos, tex, nrm [3]int
	for i, corner := range corners {
		c, layout, err := p.parseCorner(corner)
		if err != nil {
			return err
		}
		if !p.hasLayout {
			p.layout = layout
			p.hasLayout = true
		} else if layout != p.layout {
			return fmt.Errorf("%w: corner %q uses layout %s, earlier faces use %s", core.ErrMalformedLine, corner, layout, p.layout)
		}
		pos[i], tex[i], nrm[i] = c[0], c[1], c[2]
	}

	p.positionRefs = append(p.positionRefs, pos[:]...)
	if p.layout.texture {
		p.texcoordRefs = append(p.texcoordRefs, tex[:]...)
	}
	if p.layout.normal {
		p.normalRefs = append(p.normalRefs, nrm[:]...)
	}
	return nil
}

// parseCorner splits a "v", "v/vt", "v//vn" or "v/vt/vn" token into 0-based
// indices, checked against the pools read so far.
func (p *objParser) parseCorner(corner string) ([3]int, faceLayout, error) {
	var out [3]int
	var layout faceLayout

	fields := strings.Split(corner, "/")
	if len(fields) > 3 {
		return out, layout, fmt.Errorf("%w: corner %q has more than three fields", core.ErrMalformedLine, corner)
	}

	var err error
	if out[0], err = resolveIndex(fields[0], len(p.positions), "position"); err != nil {
		return out, layout, err
	}
	if len(fields) > 1 && fields[1] != "" {
		layout.texture = true
		if out[1], err = resolveIndex(fields[1], len(p.texcoords), "texture"); err != nil {
			return out, layout, err
		}
	}
	if len(fields) > 2 {
		layout.normal = true
		if out[2], err = resolveIndex(fields[2], len(p.normals), "normal"); err != nil {
			return out, layout, err
		}
	}
	return out, layout, nil
}

func resolveIndex(field string, poolSize int, pool string) (int, error) {
	idx, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s index %q", core.ErrMalformedLine, pool, field)
	}
	// Relative (negative) indices are not supported and land here too.
	if idx < 1 || idx > poolSize {
		return 0, fmt.Errorf("%w: %s index %d, %d declared", core.ErrIndexOutOfRange, pool, idx, poolSize)
	}
	return idx - 1, nil
}

func (p *objParser) flatten() (*metadata.MeshData, error) {
	n := len(p.positionRefs)
	if len(p.texcoordRefs) != 0 && len(p.texcoordRefs) != n {
		return nil, fmt.Errorf("%w: %d texture references for %d corners", core.ErrInvalidMesh, len(p.texcoordRefs), n)
	}
	if len(p.normalRefs) != 0 && len(p.normalRefs) != n {
		return nil, fmt.Errorf("%w: %d normal references for %d corners", core.ErrInvalidMesh, len(p.normalRefs), n)
	}

	positions := make([]float32, 0, n*metadata.PositionComponents)
	var texcoords, normals []float32
	if len(p.texcoordRefs) != 0 {
		texcoords = make([]float32, 0, n*metadata.TexcoordComponents)
	}
	if len(p.normalRefs) != 0 {
		normals = make([]float32, 0, n*metadata.NormalComponents)
	}
	indices := make([]uint32, 0, n)

	for i, ref := range p.positionRefs {
		positions = append(positions, p.positions[ref][:]...)
		if texcoords != nil {
			texcoords = append(texcoords, p.texcoords[p.texcoordRefs[i]][:]...)
		}
		if normals != nil {
			normals = append(normals, p.normals[p.normalRefs[i]][:]...)
		}
		indices = append(indices, uint32(i))
	}

	return metadata.NewMeshData(positions, normals, texcoords, indices)
}
