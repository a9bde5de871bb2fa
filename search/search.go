// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package search implements geometric search data: spatial indices over the
// current (possibly displaced) geometry for proximity and contact detection
package search

import (
	"github.com/cpmech/godisp/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/gm"
)

// default constants
var (
	Ndiv = 20   // default bins n-division
	TolC = 1e-8 // default tolerance to compare coordinates
)

// Kind defines the kind of geometric search
type Kind int

// search kinds
const (
	NodeToNode Kind = iota // node against node proximity
	NodeToFace             // node against boundary face proximity
	QpToFace               // quadrature point against boundary face proximity
)

// kinds lists all search kinds
var kinds = []Kind{NodeToNode, NodeToFace, QpToFace}

// QpRef locates one boundary-face quadrature point
type QpRef struct {
	Cid int // cell id
	Fid int // face id (local)
	Idx int // index of integration point on face
}

// Data owns the spatial indices over current geometry, categorised by search
// kind. Indices are valid only between an Update (or Reinit) call and the
// next geometry change: a read after a coordinate change without an
// intervening Update uses stale data.
type Data struct {

	// input
	msh  *inp.Mesh   // shared connectivity and reference coordinates
	x    [][]float64 // current coordinates buffer [nverts][ndim]; nil => reference
	ndiv int         // bins n-division
	tol  float64     // coordinates comparison tolerance

	// id sets; derived from connectivity only; rebuilt by Reinit
	nodeIds []int   // all vertex ids
	bndIds  []int   // vertex ids on tagged boundary faces
	qpRefs  []QpRef // boundary-face quadrature points

	// indices
	bins  map[Kind]*gm.Bins // one spatial index per kind
	fresh map[Kind]bool     // whether index agrees with current coordinates
}

// New returns a new geometric search data structure operating on the given
// coordinates buffer. If x is nil, reference coordinates are used.
func New(msh *inp.Mesh, x [][]float64, ndiv int, tol float64) (o *Data, err error) {
	o = new(Data)
	o.msh = msh
	o.x = x
	o.ndiv = ndiv
	if o.ndiv < 1 {
		o.ndiv = Ndiv
	}
	o.tol = tol
	if o.tol <= 0 {
		o.tol = TolC
	}
	o.bins = make(map[Kind]*gm.Bins)
	o.fresh = make(map[Kind]bool)
	err = o.Reinit()
	return
}

// Reinit fully rebuilds all indices, including the connectivity-derived id
// sets. Must be called after any topology change.
func (o *Data) Reinit() (err error) {

	// all nodes
	o.nodeIds = make([]int, len(o.msh.Verts))
	for i := range o.msh.Verts {
		o.nodeIds[i] = i
	}

	// boundary nodes and boundary-face quadrature points
	o.bndIds = o.bndIds[:0]
	o.qpRefs = o.qpRefs[:0]
	seen := make(map[int]bool)
	for _, pairs := range o.msh.FaceTag2cells {
		for _, pair := range pairs {
			c := pair.C
			for _, l := range c.Shp.FaceLocalVerts[pair.Fid] {
				v := c.Verts[l]
				if !seen[v] {
					seen[v] = true
					o.bndIds = append(o.bndIds, v)
				}
			}
			_, ipsFace, err := c.Shp.GetIps(0, 0)
			if err != nil {
				return chk.Err("cannot get face integration points of cell %d:\n%v", c.Id, err)
			}
			for idx := range ipsFace {
				o.qpRefs = append(o.qpRefs, QpRef{c.Id, pair.Fid, idx})
			}
		}
	}

	// build indices
	return o.Update(kinds...)
}

// Update incrementally refreshes the indices of the given kinds (all kinds if
// none is given) against the current coordinates. Connectivity is assumed
// stable; call Reinit after topology changes instead.
func (o *Data) Update(which ...Kind) (err error) {
	if len(which) == 0 {
		which = kinds
	}
	for _, kind := range which {
		switch kind {
		case NodeToNode:
			err = o.rebinNodes(kind, o.nodeIds)
		case NodeToFace:
			err = o.rebinNodes(kind, o.bndIds)
		case QpToFace:
			err = o.rebinQps(kind)
		default:
			err = chk.Err("unknown search kind %d", kind)
		}
		if err != nil {
			return
		}
		o.fresh[kind] = true
	}
	return
}

// MarkStale flags all indices as disagreeing with current coordinates.
// Called by the displaced problem right after a geometry change.
func (o *Data) MarkStale() {
	for _, kind := range kinds {
		o.fresh[kind] = false
	}
}

// Fresh tells whether the index of the given kind agrees with current
// coordinates. A query on a non-fresh index returns stale results.
func (o *Data) Fresh(kind Kind) bool {
	return o.fresh[kind]
}

// FindNode returns the id of the node located at y, or -1
func (o *Data) FindNode(y []float64) int {
	return o.findAt(NodeToNode, y)
}

// FindBoundNode returns the id of the boundary node located at y, or -1
func (o *Data) FindBoundNode(y []float64) int {
	return o.findAt(NodeToFace, y)
}

// FindNodesAlongLine returns the ids of nodes along segment a-b
func (o *Data) FindNodesAlongLine(a, b []float64) []int {
	return o.bins[NodeToNode].FindAlongSegment(a, b, o.tol)
}

// FindFaceQp returns the boundary-face quadrature point located at y.
// Returns ok==false if none is found.
func (o *Data) FindFaceQp(y []float64) (qp QpRef, ok bool) {
	id := o.findAt(QpToFace, y)
	if id < 0 {
		return
	}
	return o.qpRefs[id], true
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

// findAt returns the id of the entry located at y within the coordinates
// tolerance, or -1
func (o *Data) findAt(kind Kind, y []float64) int {
	id, sqDist := o.bins[kind].FindClosest(y)
	if id < 0 || sqDist > o.tol*o.tol {
		return -1
	}
	return id
}

// coord returns the current coordinates of vertex v
func (o *Data) coord(v int) []float64 {
	if o.x == nil {
		return o.msh.Verts[v].C
	}
	return o.x[v]
}

// limits computes the current bounding box, padded by the tolerance
func (o *Data) limits() (xi, xf []float64) {
	ndim := o.msh.Ndim
	xi = make([]float64, ndim)
	xf = make([]float64, ndim)
	for j := 0; j < ndim; j++ {
		xi[j] = o.coord(0)[j]
		xf[j] = xi[j]
	}
	for v := 1; v < len(o.msh.Verts); v++ {
		c := o.coord(v)
		for j := 0; j < ndim; j++ {
			if c[j] < xi[j] {
				xi[j] = c[j]
			}
			if c[j] > xf[j] {
				xf[j] = c[j]
			}
		}
	}
	δ := o.tol * 2
	for j := 0; j < ndim; j++ {
		xi[j] -= δ
		xf[j] += δ
	}
	return
}

// rebinNodes rebuilds one node index from the given id set
func (o *Data) rebinNodes(kind Kind, ids []int) (err error) {
	xi, xf := o.limits()
	bins := new(gm.Bins)
	bins.Init(xi, xf, o.ndivs())
	for _, v := range ids {
		bins.Append(o.coord(v), v, nil)
	}
	o.bins[kind] = bins
	return
}

// ndivs returns the number of divisions along each dimension
func (o *Data) ndivs() (ndiv []int) {
	ndiv = make([]int, o.msh.Ndim)
	for j := range ndiv {
		ndiv[j] = o.ndiv
	}
	return
}

// rebinQps rebuilds the boundary-face quadrature point index
func (o *Data) rebinQps(kind Kind) (err error) {
	xi, xf := o.limits()
	bins := new(gm.Bins)
	bins.Init(xi, xf, o.ndivs())
	for id, ref := range o.qpRefs {
		c := o.msh.Cells[ref.Cid]
		_, ipsFace, err := c.Shp.GetIps(0, 0)
		if err != nil {
			return err
		}
		X := o.msh.CellCoords(ref.Cid, o.x)
		err = c.Shp.CalcAtFaceIp(X, ipsFace[ref.Idx], ref.Fid)
		if err != nil {
			return chk.Err("cannot compute face data of cell %d:\n%v", ref.Cid, err)
		}
		y := make([]float64, o.msh.Ndim)
		for i := 0; i < o.msh.Ndim; i++ {
			for k, n := range c.Shp.FaceLocalVerts[ref.Fid] {
				y[i] += c.Shp.Sf[k] * X[i][n]
			}
		}
		bins.Append(y, id, nil)
	}
	o.bins[kind] = bins
	return
}
