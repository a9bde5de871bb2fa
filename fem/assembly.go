// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/godisp/shp"
)

// Assembly holds the worker-local state of the element assembly protocol:
// the current element, face, nodes and neighbor being visited, the local
// residual and Jacobian blocks, and the caches of contributions awaiting
// accumulation. One Assembly exists per worker; it is always passed
// explicitly to the problem operations and is never shared between workers.
type Assembly struct {

	// constants
	Id   int      // worker id
	Coup [][]bool // coupling among nodal variables [nvars][nvars]

	// current element
	Cid     int          // current cell id; -1 => none
	Shape   *shp.Shape   // worker copy of shape structure for current cell
	X       [][]float64  // [ndim][nverts] coordinates of current cell
	IpsElem []shp.Ipoint // integration points of current cell
	IpsFace []shp.Ipoint // integration points on faces of current cell
	Umap    []int        // [nu] global equation numbers of current element
	Fe      []float64    // [nu] element residual
	Ke      [][]float64  // [nu][nu] element Jacobian

	// quadrature data of current element; set by reinit
	Xip  [][]float64 // [nip][ndim] real coordinates of integration points
	Jdet []float64   // [nip] determinant of Jacobian at integration points

	// current face
	Fid    int         // current face id; -1 => none
	FTag   int         // boundary tag of current face; 0 => none
	Xfip   [][]float64 // [nipf][ndim] real coordinates of face integration points
	Nfvecs [][]float64 // [nipf][ndim] face normal vectors (times face Jacobian)

	// custom evaluation points within current element
	Pts  [][]float64 // physical coordinates
	Rpts [][]float64 // natural coordinates

	// current nodes
	Vid   int     // current node id; -1 => none
	Nmap  []int   // equation numbers of all variables at current node
	Vids  []int   // current node set
	Nmaps [][]int // equation numbers per node of current node set

	// current neighbor
	NeighCid   int         // neighbor cell id; -1 => none
	NeighShape *shp.Shape  // worker copy of shape structure for neighbor
	NeighX     [][]float64 // neighbor coordinates
	NeighUmap  []int       // [nn] neighbor equation numbers
	Fn         []float64   // [nn] neighbor residual
	Kn         [][]float64 // [nn][nn] neighbor-neighbor Jacobian
	Ken        [][]float64 // [nu][nn] element-neighbor Jacobian
	Kne        [][]float64 // [nn][nu] neighbor-element Jacobian
	NeighPts   [][]float64 // physical points within neighbor
	NeighRpts  [][]float64 // natural coordinates of NeighPts
	NeighVids  []int       // node set on neighbor side
	NeighNmaps [][]int     // equation numbers per node on neighbor side

	// scalar variables
	ScalMap []int       // equation numbers of scalar variables
	Fs      []float64   // scalar residual
	Ks      [][]float64 // scalar-scalar Jacobian
	Kso     [][]float64 // [nscal][nu] scalar-element Jacobian
	Kos     [][]float64 // [nu][nscal] element-scalar Jacobian

	// caches
	resCache []cachedVec
	jacCache []cachedMat

	// quadrature rule override; 0 => shape default
	nip  int
	nipf int
}

// cachedVec holds one cached residual contribution
type cachedVec struct {
	rmap []int
	vals []float64
}

// cachedMat holds one cached Jacobian contribution
type cachedMat struct {
	rmap []int
	cmap []int
	vals [][]float64
}

// SetQuadratureRules overrides the default integration rules used when
// preparing elements. Zero selects the shape default.
func (o *Assembly) SetQuadratureRules(nip, nipf int) {
	o.nip = nip
	o.nipf = nipf
}

// HasElem tells whether an element is currently bound
func (o *Assembly) HasElem() bool {
	return o.Cid >= 0
}

// HasNeighbor tells whether a neighbor is currently bound
func (o *Assembly) HasNeighbor() bool {
	return o.NeighCid >= 0
}

// ClearCaches drops all cached contributions without accumulating them
func (o *Assembly) ClearCaches() {
	o.resCache = o.resCache[:0]
	o.jacCache = o.jacCache[:0]
}

// resetElem clears all element-dependent state
func (o *Assembly) resetElem() {
	o.Fid = -1
	o.FTag = 0
	o.Pts = nil
	o.Rpts = nil
	o.Xip = nil
	o.Jdet = nil
	o.Xfip = nil
	o.Nfvecs = nil
	o.resetNeighbor()
}

// resetNeighbor clears all neighbor-dependent state
func (o *Assembly) resetNeighbor() {
	o.NeighCid = -1
	o.NeighShape = nil
	o.NeighX = nil
	o.NeighUmap = nil
	o.Fn = nil
	o.Kn = nil
	o.Ken = nil
	o.Kne = nil
	o.NeighPts = nil
	o.NeighRpts = nil
	o.NeighVids = nil
	o.NeighNmaps = nil
}

// zeroElem zeroes the element residual and Jacobian
func (o *Assembly) zeroElem() {
	la.Vector(o.Fe).Fill(0)
	for i := range o.Ke {
		la.Vector(o.Ke[i]).Fill(0)
	}
}

// cacheRes appends a copy of the given residual block to the residual cache
func (o *Assembly) cacheRes(rmap []int, vals []float64) {
	r := make([]int, len(rmap))
	v := make([]float64, len(vals))
	copy(r, rmap)
	copy(v, vals)
	o.resCache = append(o.resCache, cachedVec{r, v})
}

// cacheJac appends a copy of the given Jacobian block to the Jacobian cache
func (o *Assembly) cacheJac(rmap, cmap []int, vals [][]float64) {
	r := make([]int, len(rmap))
	c := make([]int, len(cmap))
	copy(r, rmap)
	copy(c, cmap)
	v := utl.Alloc(len(vals), len(cmap))
	for i := range vals {
		copy(v[i], vals[i])
	}
	o.jacCache = append(o.jacCache, cachedMat{r, c, v})
}
