// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"path/filepath"

	"github.com/cpmech/godisp/shp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"
)

// Vert holds vertex data. C holds the reference (never displaced) coordinates;
// displaced coordinates live in a separate buffer owned by the displaced problem.
type Vert struct {
	Id  int       `json:"i"` // id
	Tag int       `json:"t"` // tag
	C   []float64 `json:"c"` // reference coordinates (size==Ndim)
}

// Cell holds cell data: the connectivity shared by the reference and displaced meshes
type Cell struct {

	// input data
	Id    int    `json:"i"`  // id
	Tag   int    `json:"t"`  // tag
	Part  int    `json:"p"`  // partition id
	Type  string `json:"y"`  // geometry type; e.g. "qua4"
	Verts []int  `json:"v"`  // vertices
	FTags []int  `json:"ft"` // face tags (2D or 3D)

	// derived
	Shp *shp.Shape `json:"-"` // shape structure
}

// CellFaceId structure
type CellFaceId struct {
	C   *Cell // cell
	Fid int   // face id
}

// Mesh holds the connectivity table and reference coordinates shared by the
// reference and displaced representations. Topology is never duplicated: a
// displaced mesh is this structure plus a second coordinate buffer indexed
// by the same vertex ids.
type Mesh struct {

	// input data
	Verts []*Vert `json:"verts"` // vertices
	Cells []*Cell `json:"cells"` // cells

	// derived data
	Ndim int     // space dimension
	Xmin float64 // min x coordinate
	Ymin float64 // min y coordinate
	Zmin float64 // min z coordinate
	Xmax float64 // max x coordinate
	Ymax float64 // max y coordinate
	Zmax float64 // max z coordinate

	// derived: maps
	VertTag2verts map[int][]*Vert      // vertex tag => set of vertices
	CellTag2cells map[int][]*Cell      // cell tag => set of cells
	FaceTag2cells map[int][]CellFaceId // face tag => set of cells on boundary
	Part2cells    map[int][]*Cell      // partition number => set of cells
	VertPart      []int                // [nverts] smallest partition id among cells sharing each vertex

	// distributed-run data
	Distr     bool // distributed/parallel run with more than one partition
	Collected bool // reference coordinates are consistent on all processors
}

// ReadMsh reads a mesh for FE analyses
//  Note: returns nil on errors
func ReadMsh(dir, fn string, goroutineId int) (o *Mesh, err error) {

	// read file
	o = new(Mesh)
	b := io.ReadFile(filepath.Join(dir, fn))

	// decode
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("ReadMsh: cannot unmarshal mesh file %q", fn)
	}

	// derived data
	err = o.CalcDerived(goroutineId)
	if err != nil {
		return nil, err
	}
	return
}

// CalcDerived computes dimensions, maps and allocates shapes.
// It must be called whenever Verts or Cells change (topology change).
func (o *Mesh) CalcDerived(goroutineId int) (err error) {

	// check
	if len(o.Verts) < 2 {
		return chk.Err("at least 2 vertices are required in mesh")
	}
	if len(o.Cells) < 1 {
		return chk.Err("at least 1 cell is required in mesh")
	}

	// vertex related derived data
	o.Ndim = len(o.Verts[0].C)
	o.Xmin = o.Verts[0].C[0]
	o.Ymin = o.Verts[0].C[1]
	o.Xmax = o.Xmin
	o.Ymax = o.Ymin
	o.VertTag2verts = make(map[int][]*Vert)
	for i, v := range o.Verts {

		// check vertex id
		if v.Id != i {
			return chk.Err("vertices ids must coincide with order in \"verts\" list. %d != %d", v.Id, i)
		}

		// tags
		if v.Tag < 0 {
			verts := o.VertTag2verts[v.Tag]
			o.VertTag2verts[v.Tag] = append(verts, v)
		}

		// limits
		o.Xmin = utl.Min(o.Xmin, v.C[0])
		o.Xmax = utl.Max(o.Xmax, v.C[0])
		o.Ymin = utl.Min(o.Ymin, v.C[1])
		o.Ymax = utl.Max(o.Ymax, v.C[1])
		if len(v.C) > 2 {
			o.Zmin = utl.Min(o.Zmin, v.C[2])
			o.Zmax = utl.Max(o.Zmax, v.C[2])
		}
	}

	// cell related derived data
	o.CellTag2cells = make(map[int][]*Cell)
	o.FaceTag2cells = make(map[int][]CellFaceId)
	o.Part2cells = make(map[int][]*Cell)
	o.VertPart = make([]int, len(o.Verts))
	for i := range o.VertPart {
		o.VertPart[i] = -1
	}
	for i, c := range o.Cells {

		// check id and tag
		if c.Id != i {
			return chk.Err("cells ids must coincide with order in \"cells\" list. %d != %d", c.Id, i)
		}

		// tags
		cells := o.CellTag2cells[c.Tag]
		o.CellTag2cells[c.Tag] = append(cells, c)
		for j, ftag := range c.FTags {
			if ftag < 0 {
				pairs := o.FaceTag2cells[ftag]
				o.FaceTag2cells[ftag] = append(pairs, CellFaceId{c, j})
			}
		}

		// partition maps
		cells = o.Part2cells[c.Part]
		o.Part2cells[c.Part] = append(cells, c)
		for _, v := range c.Verts {
			if o.VertPart[v] < 0 || c.Part < o.VertPart[v] {
				o.VertPart[v] = c.Part
			}
		}

		// get shape structure
		c.Shp = shp.Get(c.Type, goroutineId)
		if c.Shp == nil {
			return chk.Err("cannot allocate shape structure for cell type = %q", c.Type)
		}
	}

	// distributed run?
	o.Distr = mpi.IsOn() && len(o.Part2cells) > 1
	o.Collected = !o.Distr
	return
}

// IsSerial tells whether all cells live in a single partition
func (o *Mesh) IsSerial() bool {
	return len(o.Part2cells) <= 1
}

// Collect makes reference coordinates consistent on all processors. Each
// vertex is contributed by the smallest partition id among its cells and
// summed across processors with a blocking collective. The collective
// completes before any dependent step proceeds.
func (o *Mesh) Collect() {
	if o.Collected || !o.Distr {
		o.Collected = true
		return
	}
	comm := mpi.NewCommunicator(nil)
	rank := comm.Rank()
	n := len(o.Verts) * o.Ndim
	buf := make([]float64, n)
	wsp := make([]float64, n)
	for _, v := range o.Verts {
		if o.VertPart[v.Id] == rank {
			for j := 0; j < o.Ndim; j++ {
				buf[v.Id*o.Ndim+j] = v.C[j]
			}
		}
	}
	comm.AllReduceSum(wsp, buf)
	for _, v := range o.Verts {
		for j := 0; j < o.Ndim; j++ {
			v.C[j] = wsp[v.Id*o.Ndim+j]
		}
	}
	o.Collected = true
}

// CellCoords returns the coordinates matrix [ndim][nverts] of a cell,
// gathered from the given coordinates buffer x [nverts_global][ndim].
// If x is nil, reference coordinates are used.
func (o *Mesh) CellCoords(cid int, x [][]float64) (X [][]float64) {
	c := o.Cells[cid]
	X = make([][]float64, o.Ndim)
	for i := 0; i < o.Ndim; i++ {
		X[i] = make([]float64, len(c.Verts))
		for j, v := range c.Verts {
			if x == nil {
				X[i][j] = o.Verts[v].C[i]
			} else {
				X[i][j] = x[v][i]
			}
		}
	}
	return
}
