// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"runtime"

	"github.com/cpmech/gosl/io"

	"github.com/cpmech/godisp/dirac"
	"github.com/cpmech/godisp/inp"
)

// Primal implements the problem on the reference geometry. It owns the
// authoritative variable systems, the tag registry and the coupling matrix;
// the displaced problem shadows its systems and delegates tag operations
// back to it.
type Primal struct {
	base

	// input
	Sim *inp.Simulation // simulation input data

	// state
	Converged bool // last solve converged

	// communication
	ghostedCells []int        // cells whose dofs must be sent beyond sparsity
	ghostedBnds  map[int]bool // boundary face tags ghosted to all processors

	// coordinate systems
	csys map[int]string // cell tag => coordinate system; absent => cartesian
}

// NewPrimal allocates the primal problem from simulation input data:
// variable systems with deterministic numbering, a tag registry with the
// default residual vector and system matrix, a full coupling matrix and an
// empty point source registry.
func NewPrimal(sim *inp.Simulation) (o *Primal, err error) {

	// split variables into systems
	var nlVars, auxVars, nlScal, auxScal []string
	for _, v := range sim.Variables {
		switch {
		case v.Aux && v.Scalar:
			auxScal = append(auxScal, v.Name)
		case v.Aux:
			auxVars = append(auxVars, v.Name)
		case v.Scalar:
			nlScal = append(nlScal, v.Name)
		default:
			nlVars = append(nlVars, v.Name)
		}
	}
	if len(nlVars) == 0 {
		return nil, confErr("variable", "(no nonlinear nodal variable defined)")
	}

	// systems
	sys := NewSys("nl", sim.Msh, nlVars, nlScal)
	aux := NewSys("aux", sim.Msh, auxVars, auxScal)

	// coupling matrix: full by default
	nvars := len(nlVars)
	coup := make([][]bool, nvars)
	for i := 0; i < nvars; i++ {
		coup[i] = make([]bool, nvars)
		for j := 0; j < nvars; j++ {
			coup[i][j] = true
		}
	}

	// tag registry with default tags
	nzmax := 0
	for _, c := range sim.Msh.Cells {
		nu := len(c.Verts) * nvars
		nzmax += nu * nu
	}
	nscal := len(nlScal)
	nzmax += nscal*nscal + 2*nscal*sys.Neqs
	if nzmax < 1 {
		nzmax = 1
	}
	tags := NewTagRegistry(sys.Neqs, nzmax)
	tags.AddVectorTag("residual")
	tags.AddMatrixTag("system")

	// workers
	nworkers := sim.Data.Nworkers
	if nworkers < 1 {
		nworkers = runtime.NumCPU()
	}

	// problem
	o = new(Primal)
	o.Sim = sim
	o.ghostedBnds = make(map[int]bool)
	o.csys = make(map[int]string)
	o.initBase(sim.Key, sim.Msh, nil, sys, aux, tags, coup, dirac.New(sim.Msh, nil), nworkers)
	return
}

// NumWorkers returns the number of workers used in node passes
func (o *Primal) NumWorkers() int { return o.nworkers }

// Transient tells whether the simulation keeps solution history
func (o *Primal) Transient() bool { return o.Sim.Data.Transient }

// SetConverged records the convergence state of the last solve
func (o *Primal) SetConverged(flag bool) { o.Converged = flag }

// SetCoupling replaces the coupling matrix among nonlinear nodal variables
func (o *Primal) SetCoupling(coup [][]bool) (err error) {
	nvars := len(o.sys.Vars)
	if len(coup) != nvars {
		return invErr("coupling matrix must be %d by %d", nvars, nvars)
	}
	for _, row := range coup {
		if len(row) != nvars {
			return invErr("coupling matrix must be %d by %d", nvars, nvars)
		}
	}
	o.coup = coup
	return
}

// SetCoordSystem assigns a coordinate system to the cells with given tag
func (o *Primal) SetCoordSystem(ctag int, name string) (err error) {
	if _, ok := o.msh.CellTag2cells[ctag]; !ok {
		return confErr("cell tag", io.Sf("%d", ctag))
	}
	o.csys[ctag] = name
	return
}

// CoordSystem returns the coordinate system of the cells with given tag.
// Cartesian is the default.
func (o *Primal) CoordSystem(ctag int) string {
	if name, ok := o.csys[ctag]; ok {
		return name
	}
	return "cartesian"
}

// SetSolution copies a new current solution into the nonlinear system
func (o *Primal) SetSolution(sol []float64) error {
	return o.sys.CopySolVec(sol)
}

// SetAuxSolution copies a new current solution into the auxiliary system
func (o *Primal) SetAuxSolution(sol []float64) error {
	return o.aux.CopySolVec(sol)
}

// PushSolutions rotates the solution history of both systems
func (o *Primal) PushSolutions() {
	o.sys.PushSol()
	o.aux.PushSol()
}

// AddGhostedCell marks a cell whose equations must be communicated to other
// processors beyond the sparsity-derived ones
func (o *Primal) AddGhostedCell(cid int) (err error) {
	if cid < 0 || cid >= len(o.msh.Cells) {
		return confErr("cell", io.Sf("#%d", cid))
	}
	o.ghostedCells = append(o.ghostedCells, cid)
	return
}

// ExtraSendEqs returns the equations of all ghosted cells
func (o *Primal) ExtraSendEqs() (eqs []int) {
	seen := make(map[int]bool)
	for _, cid := range o.ghostedCells {
		for _, v := range o.msh.Cells[cid].Verts {
			for _, eq := range o.sys.Eqs[v] {
				if !seen[eq] {
					seen[eq] = true
					eqs = append(eqs, eq)
				}
			}
		}
	}
	return
}

// GhostGhostedBoundaries makes the faces on the given boundary tags
// available on all processors. With a replicated mesh every processor
// already holds all boundary faces, so only tag validity is enforced here.
func (o *Primal) GhostGhostedBoundaries(ftags []int) (err error) {
	for _, ftag := range ftags {
		if _, ok := o.msh.FaceTag2cells[ftag]; !ok {
			return confErr("face tag", io.Sf("%d", ftag))
		}
		o.ghostedBnds[ftag] = true
	}
	return
}

// MeshChanged rebuilds everything derived from connectivity after a topology
// change: variable systems, tag storage and adjacency maps. The solution
// vectors are re-allocated; callers must set new solutions afterwards.
func (o *Primal) MeshChanged() (err error) {
	err = o.msh.CalcDerived(o.Sim.GoroutineId)
	if err != nil {
		return
	}
	sys := NewSys(o.sys.Name, o.msh, o.sys.Vars, o.sys.ScalVars)
	aux := NewSys(o.aux.Name, o.msh, o.aux.Vars, o.aux.ScalVars)
	nvars := len(sys.Vars)
	nzmax := 0
	for _, c := range o.msh.Cells {
		nu := len(c.Verts) * nvars
		nzmax += nu * nu
	}
	nscal := len(sys.ScalVars)
	nzmax += nscal*nscal + 2*nscal*sys.Neqs
	if nzmax < 1 {
		nzmax = 1
	}
	tags := NewTagRegistry(sys.Neqs, nzmax)
	for _, name := range o.tags.vecNames {
		tags.AddVectorTag(name)
	}
	for _, name := range o.tags.matNames {
		tags.AddMatrixTag(name)
	}
	o.initBase(o.name, o.msh, nil, sys, aux, tags, o.coup, o.drc, o.nworkers)
	return o.drc.UpdatePointLocator()
}
