// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dirac

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/godisp/inp"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// unitSquare builds a unit square split into two triangles
func unitSquare(tst *testing.T) *inp.Mesh {
	msh := &inp.Mesh{
		Verts: []*inp.Vert{
			{Id: 0, C: []float64{0, 0}},
			{Id: 1, C: []float64{1, 0}},
			{Id: 2, C: []float64{1, 1}},
			{Id: 3, C: []float64{0, 1}},
		},
		Cells: []*inp.Cell{
			{Id: 0, Tag: -1, Type: "tri3", Verts: []int{0, 1, 2}, FTags: []int{-10, -12, 0}},
			{Id: 1, Tag: -1, Type: "tri3", Verts: []int{0, 2, 3}, FTags: []int{0, -11, -13}},
		},
	}
	err := msh.CalcDerived(0)
	if err != nil {
		tst.Errorf("cannot build mesh:\n%v", err)
		return nil
	}
	return msh
}

func Test_dirac01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dirac01. point registration and lookup")

	msh := unitSquare(tst)
	if msh == nil {
		return
	}
	o := New(msh, nil)
	chk.IntAssert(o.NumPoints(), 0)
	if o.Elements() != nil {
		tst.Errorf("empty registry must host no elements\n")
		return
	}

	// below the diagonal
	cid, err := o.AddPoint([]float64{0.6, 0.2})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(cid, 0)

	// above the diagonal
	cid, err = o.AddPoint([]float64{0.7, 0.9})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(cid, 1)

	// registry view
	chk.IntAssert(o.NumPoints(), 2)
	chk.Ints(tst, "elements", o.Elements(), []int{0, 1})
	chk.IntAssert(len(o.Points(0)), 1)
	chk.IntAssert(len(o.NatCoords(1)), 1)
	chk.Array(tst, "point in cell 0", 1e-15, o.Points(0)[0], []float64{0.6, 0.2})

	// outside the mesh
	_, err = o.AddPoint([]float64{2, 2})
	if err == nil {
		tst.Errorf("registration outside the mesh must fail\n")
		return
	}
	chk.IntAssert(o.NumPoints(), 2)

	// clear
	o.ClearPoints()
	chk.IntAssert(o.NumPoints(), 0)
}

func Test_dirac02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dirac02. points are re-located when the geometry moves")

	msh := unitSquare(tst)
	if msh == nil {
		return
	}

	// explicit coordinates buffer, starting at the reference configuration
	x := make([][]float64, len(msh.Verts))
	for _, v := range msh.Verts {
		x[v.Id] = []float64{v.C[0], v.C[1]}
	}
	o := New(msh, x)
	_, err := o.AddPoint([]float64{0.6, 0.2})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	_, err = o.AddPoint([]float64{0.7, 0.9})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Ints(tst, "elements", o.Elements(), []int{0, 1})

	// shift the geometry to the right; the first point changes host cell
	for _, xv := range x {
		xv[0] += 0.5
	}
	err = o.UpdatePointLocator()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Ints(tst, "elements after shift", o.Elements(), []int{1})
	chk.IntAssert(len(o.Points(1)), 2)

	// shifting further pushes a point off the mesh
	for _, xv := range x {
		xv[0] += 5
	}
	err = o.UpdatePointLocator()
	if err == nil {
		tst.Errorf("re-location of a point off the mesh must fail\n")
	}
}
