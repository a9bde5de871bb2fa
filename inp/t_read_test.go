// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_msh01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("msh01")

	msh, err := ReadMsh("data", "dsy01.msh", 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	io.Pforan("ndim=%d nverts=%d ncells=%d\n", msh.Ndim, len(msh.Verts), len(msh.Cells))
	chk.IntAssert(msh.Ndim, 2)
	chk.IntAssert(len(msh.Verts), 6)
	chk.IntAssert(len(msh.Cells), 2)
	chk.Float64(tst, "xmin", 1e-17, msh.Xmin, 0)
	chk.Float64(tst, "xmax", 1e-17, msh.Xmax, 2)
	chk.Float64(tst, "ymin", 1e-17, msh.Ymin, 0)
	chk.Float64(tst, "ymax", 1e-17, msh.Ymax, 1)

	// tag maps
	chk.IntAssert(len(msh.VertTag2verts[-100]), 1)
	chk.IntAssert(len(msh.CellTag2cells[-1]), 2)
	chk.IntAssert(len(msh.FaceTag2cells[-10]), 2)
	chk.IntAssert(len(msh.FaceTag2cells[-12]), 1)
	chk.IntAssert(len(msh.FaceTag2cells[-13]), 1)

	// serial run with a single partition
	if !msh.IsSerial() {
		tst.Errorf("mesh with a single partition must be serial\n")
		return
	}
	if !msh.Collected {
		tst.Errorf("serial mesh must have consistent coordinates\n")
	}

	// coordinates matrix of cell 1, reference buffer
	X := msh.CellCoords(1, nil)
	chk.Deep2(tst, "X of cell 1", 1e-17, X, [][]float64{
		{1, 2, 2, 1},
		{0, 0, 1, 1},
	})
}

func Test_sim01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim01")

	sim, err := ReadSim("data/dsy01.sim", true, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	io.Pforan("key=%q ndim=%d\n", sim.Key, sim.Ndim)
	chk.IntAssert(sim.Ndim, 2)
	chk.IntAssert(len(sim.Variables), 4)
	chk.IntAssert(len(sim.Displacements), 2)
	if sim.Key != "dsy01" {
		tst.Errorf("wrong simulation key: %q\n", sim.Key)
		return
	}

	// functions
	load, err := sim.Functions.Get("load")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "load(0)", 1e-15, load.F(0, nil), 1.0)
	zero, err := sim.Functions.Get("zero")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "zero(1)", 1e-15, zero.F(1, nil), 0)

	// unknown function
	_, err = sim.Functions.Get("unknown")
	if err == nil {
		tst.Errorf("lookup of unknown function must fail\n")
	}
}
