// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package dirac implements the registry of point sources: concentrated loads
// located by physical coordinates on the current (possibly displaced) geometry
package dirac

import (
	"sort"

	"github.com/cpmech/godisp/inp"

	"github.com/cpmech/gosl/chk"
)

// Tol is the default tolerance for containment checks in natural coordinates
var Tol = 1e-8

// Point holds one point source
type Point struct {
	Y   []float64 // physical coordinates
	R   []float64 // natural coordinates within host cell
	Cid int       // host cell id
}

// Info holds the registry of point sources. Host cells are found against the
// given coordinates buffer; after the geometry changes, UpdatePointLocator
// must be called to re-locate all points.
type Info struct {
	msh    *inp.Mesh   // shared connectivity and reference coordinates
	x      [][]float64 // current coordinates buffer; nil => reference
	points []*Point    // all registered points
	byCell map[int][]int
}

// New returns a new point source registry operating on the given coordinates
// buffer. If x is nil, reference coordinates are used.
func New(msh *inp.Mesh, x [][]float64) *Info {
	return &Info{msh: msh, x: x, byCell: make(map[int][]int)}
}

// AddPoint registers a new point source at physical coordinates y and returns
// the id of the host cell. Returns an error if y lies outside the mesh.
func (o *Info) AddPoint(y []float64) (cid int, err error) {
	cid, r, err := o.locate(y)
	if err != nil {
		return
	}
	yy := make([]float64, len(y))
	copy(yy, y)
	o.points = append(o.points, &Point{yy, r, cid})
	o.byCell[cid] = append(o.byCell[cid], len(o.points)-1)
	return
}

// SetCoords rebinds the registry to another coordinates buffer. Call
// UpdatePointLocator afterwards to re-locate the points.
func (o *Info) SetCoords(x [][]float64) {
	o.x = x
}

// ClearPoints removes all registered points
func (o *Info) ClearPoints() {
	o.points = o.points[:0]
	o.byCell = make(map[int][]int)
}

// NumPoints returns the total number of registered points
func (o *Info) NumPoints() int {
	return len(o.points)
}

// UpdatePointLocator re-locates all registered points against the current
// coordinates. A point whose host cell changed is re-assigned; a point that
// no longer lies inside any cell causes an error.
func (o *Info) UpdatePointLocator() (err error) {
	o.byCell = make(map[int][]int)
	for i, p := range o.points {
		cid, r, err := o.locate(p.Y)
		if err != nil {
			return chk.Err("point source %d at %v lies outside mesh after geometry change:\n%v", i, p.Y, err)
		}
		p.Cid = cid
		p.R = r
		o.byCell[cid] = append(o.byCell[cid], i)
	}
	return
}

// Elements returns the sorted ids of cells hosting at least one point
func (o *Info) Elements() (cids []int) {
	for cid := range o.byCell {
		cids = append(cids, cid)
	}
	sort.Ints(cids)
	return
}

// Points returns the physical coordinates of the points hosted by cell cid
func (o *Info) Points(cid int) (ys [][]float64) {
	for _, i := range o.byCell[cid] {
		ys = append(ys, o.points[i].Y)
	}
	return
}

// NatCoords returns the natural coordinates of the points hosted by cell cid
func (o *Info) NatCoords(cid int) (rs [][]float64) {
	for _, i := range o.byCell[cid] {
		rs = append(rs, o.points[i].R)
	}
	return
}

// locate finds the cell containing physical point y, via bounding-box
// pre-filter followed by inverse mapping and containment check
func (o *Info) locate(y []float64) (cid int, r []float64, err error) {
	ndim := o.msh.Ndim
	for _, c := range o.msh.Cells {
		if !o.inBbox(c, y) {
			continue
		}
		X := o.msh.CellCoords(c.Id, o.x)
		rr := make([]float64, 3)
		if e := c.Shp.InvMap(rr, y, X); e != nil {
			continue
		}
		if c.Shp.Contains(rr, Tol) {
			return c.Id, rr[:ndim], nil
		}
	}
	err = chk.Err("cannot find cell containing point %v", y)
	return
}

// inBbox tells whether y lies within the (padded) bounding box of cell c
func (o *Info) inBbox(c *inp.Cell, y []float64) bool {
	ndim := o.msh.Ndim
	for j := 0; j < ndim; j++ {
		lo, hi := o.coord(c.Verts[0])[j], o.coord(c.Verts[0])[j]
		for _, v := range c.Verts[1:] {
			cj := o.coord(v)[j]
			if cj < lo {
				lo = cj
			}
			if cj > hi {
				hi = cj
			}
		}
		δ := Tol * (hi - lo + 1)
		if y[j] < lo-δ || y[j] > hi+δ {
			return false
		}
	}
	return true
}

// coord returns the current coordinates of vertex v
func (o *Info) coord(v int) []float64 {
	if o.x == nil {
		return o.msh.Verts[v].C
	}
	return o.x[v]
}
