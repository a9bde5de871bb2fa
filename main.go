// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/godisp/fem"
	"github.com/cpmech/godisp/inp"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			if mpi.WorldRank() == 0 {
				io.PfRed("\nERROR: %v\n", err)
			}
		}
		mpi.Stop()
	}()
	mpi.Start()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "data/dsy01", ".sim", true)
	verbose := io.ArgToBool(1, true)
	erasePrev := io.ArgToBool(2, true)
	nsteps := io.ArgToInt(3, 10)
	doprof := io.ArgToInt(4, 0)

	// message
	if mpi.WorldRank() == 0 && verbose {
		io.PfWhite("\nGodisp -- Displaced Geometry Synchronisation\n\n")
		io.Pf("%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"erase previous results", "erasePrev", erasePrev,
			"number of steps", "nsteps", nsteps,
			"profiling: 0=none 1=CPU 2=MEM", "doprof", doprof,
		))
	}

	// profiling?
	switch doprof {
	case 1:
		defer utl.ProfCPU("/tmp/godisp", "cpu.pprof", true)()
	case 2:
		defer utl.ProfMEM("/tmp/godisp", "mem.pprof", true)()
	}

	// simulation and problems
	sim, err := inp.ReadSim(fnamepath, erasePrev, 0)
	if err != nil {
		chk.Panic("cannot read simulation:\n%v", err)
	}
	prim, err := fem.NewPrimal(sim)
	if err != nil {
		chk.Panic("cannot allocate primal problem:\n%v", err)
	}
	dp, err := fem.NewDisplaced(prim)
	if err != nil {
		chk.Panic("cannot allocate displaced problem:\n%v", err)
	}
	err = dp.Init()
	if err != nil {
		chk.Panic("cannot initialise displaced problem:\n%v", err)
	}

	// displacement amplitude function
	fcn, err := sim.Functions.Get("load")
	if err != nil {
		chk.Panic("cannot get amplitude function:\n%v", err)
	}

	// drive a stretch of the geometry and keep both problems in sync
	sys := prim.System()
	sol := make([]float64, sys.Neqs)
	dt := 1.0 / float64(nsteps)
	for i := 0; i <= nsteps; i++ {
		t := dt * float64(i)
		amp := fcn.F(t, nil) * t
		for _, v := range sim.Msh.Verts {
			for j, name := range sim.Displacements {
				sol[sys.Eq(v.Id, name)] = amp * v.C[j]
			}
		}
		err = prim.SetSolution(sol)
		if err != nil {
			chk.Panic("cannot set solution:\n%v", err)
		}
		prim.PushSolutions()
		err = dp.UpdateMesh()
		if err != nil {
			chk.Panic("cannot update displaced geometry:\n%v", err)
		}
		if mpi.WorldRank() == 0 && verbose {
			xmin, xmax := limits(dp.Xd)
			io.Pf("t=%6.3f  amp=%6.3f  x=[%8.4f,%8.4f]  y=[%8.4f,%8.4f]\n", t, amp, xmin[0], xmax[0], xmin[1], xmax[1])
		}
	}
	if mpi.WorldRank() == 0 && verbose {
		io.Pf("\n%v\n", dp)
	}
}

// limits computes the bounding box of a coordinates buffer
func limits(x [][]float64) (xmin, xmax []float64) {
	ndim := len(x[0])
	xmin = make([]float64, ndim)
	xmax = make([]float64, ndim)
	copy(xmin, x[0])
	copy(xmax, x[0])
	for _, xv := range x {
		for j := 0; j < ndim; j++ {
			xmin[j] = utl.Min(xmin[j], xv[j])
			xmax[j] = utl.Max(xmax[j], xv[j])
		}
	}
	return
}
