package utils

import (
	"bytes"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/voxmesh/vox"
)

const generator = "voxmesh VOX -> GLB"

// BuildGLB lays out one parent node per entry with a child node per model.
// Every color group becomes a primitive whose material comes from the
// entry's palette and material table.
func BuildGLB(entries []vox.PackEntry) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator
	for i := range entries {
		e := &entries[i]
		parent := len(doc.Nodes)
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: e.Name})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, parent)

		materials := make(map[uint8]int)
		for mi := range e.Models {
			m := &e.Models[mi]
			if m.Mesh == nil || m.Mesh.QuadCount() == 0 {
				continue
			}
			meshIdx, err := writeMesh(doc, e, m, materials)
			if err != nil {
				return nil, fmt.Errorf("%s: model %q: %w", e.Name, m.Name, err)
			}
			extras := map[string]any{"model_id": m.ModelID, "kind": m.Kind.String()}
			if !m.Visible {
				extras["hidden"] = true
			}
			node := &gltf.Node{
				Name:   m.Name,
				Mesh:   gltf.Index(meshIdx),
				Matrix: nodeMatrix(m.World),
				Extras: extras,
			}
			doc.Nodes[parent].Children = append(doc.Nodes[parent].Children, len(doc.Nodes))
			doc.Nodes = append(doc.Nodes, node)
		}
	}
	return doc, nil
}

func writeMesh(doc *gltf.Document, e *vox.PackEntry, m *vox.MeshModel, materials map[uint8]int) (int, error) {
	mesh := &gltf.Mesh{Name: m.Name}
	for gi := range m.Mesh.Groups {
		g := &m.Mesh.Groups[gi]
		if len(g.Quads) == 0 {
			continue
		}
		positions, normals, indices := flatQuads(g)

		posAccessor := modeler.WritePosition(doc, positions)
		normalAccessor := modeler.WriteNormal(doc, normals)
		indicesAccessor := modeler.WriteIndices(doc, indices)

		mat, ok := materials[g.Color]
		if !ok {
			mat = len(doc.Materials)
			doc.Materials = append(doc.Materials, material(e, g.Color))
			materials[g.Color] = mat
		}
		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION: posAccessor,
				gltf.NORMAL:   normalAccessor,
			},
			Indices:  gltf.Index(indicesAccessor),
			Material: gltf.Index(mat),
		})
	}
	if len(mesh.Primitives) == 0 {
		return 0, fmt.Errorf("mesh has no faces")
	}
	doc.Meshes = append(doc.Meshes, mesh)
	return len(doc.Meshes) - 1, nil
}

// flatQuads gives every quad its own four corners so each face carries a
// flat normal.
func flatQuads(g *vox.FaceGroup) ([][3]float32, [][3]float32, []uint32) {
	positions := make([][3]float32, 0, len(g.Quads)*4)
	normals := make([][3]float32, 0, len(g.Quads)*4)
	indices := make([]uint32, 0, len(g.Quads)*6)
	for _, q := range g.Quads {
		p0, p1, p2 := g.Positions[q[0]], g.Positions[q[1]], g.Positions[q[2]]
		n := faceNormal(p0, p1, p2)
		base := uint32(len(positions))
		for _, vi := range q {
			positions = append(positions, g.Positions[vi])
			normals = append(normals, n)
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return positions, normals, indices
}

func faceNormal(p0, p1, p2 [3]float32) [3]float32 {
	vec1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
	vec2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
	cross := [3]float32{
		vec1[1]*vec2[2] - vec1[2]*vec2[1],
		vec1[2]*vec2[0] - vec1[0]*vec2[2],
		vec1[0]*vec2[1] - vec1[1]*vec2[0],
	}
	length := math32.Sqrt(cross[0]*cross[0] + cross[1]*cross[1] + cross[2]*cross[2])
	if length > 0 {
		cross[0] /= length
		cross[1] /= length
		cross[2] /= length
	}
	return cross
}

func material(e *vox.PackEntry, color uint8) *gltf.Material {
	rgba := e.Palette[color]
	props := e.Materials[color]
	alpha := rgba[3] * (1 - props.Transmission)

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{float64(rgba[0]), float64(rgba[1]), float64(rgba[2]), float64(alpha)},
		MetallicFactor:  gltf.Float(float64(props.Metallic)),
		RoughnessFactor: gltf.Float(float64(props.Roughness)),
	}
	m := &gltf.Material{
		Name:                 fmt.Sprintf("%s_%d", props.Kind, color),
		PBRMetallicRoughness: pbr,
		AlphaMode:            gltf.AlphaOpaque,
	}
	if alpha < 1 {
		m.AlphaMode = gltf.AlphaBlend
	}
	if props.Emission > 0 {
		for i := 0; i < 3; i++ {
			m.EmissiveFactor[i] = float64(rgba[i] * props.Emission)
		}
	}
	return m
}

// nodeMatrix flattens a world matrix in the column-major order glTF expects.
func nodeMatrix(world mgl32.Mat4) [16]float64 {
	var out [16]float64
	for i, v := range world {
		out[i] = float64(v)
	}
	return out
}

// EncodeGLB serializes doc as a binary glTF.
func EncodeGLB(doc *gltf.Document) ([]byte, error) {
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
