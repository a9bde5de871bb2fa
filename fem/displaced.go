// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/godisp/dirac"
	"github.com/cpmech/godisp/search"
)

// dispRef resolves one displacement component: which shadow system holds it
// and at which variable index
type dispRef struct {
	sys *Sys // shadow system holding this displacement component
	idx int  // variable index within the system
}

// Displaced implements the problem on the displaced geometry. It shares the
// primal connectivity and tag registry, shadows the primal variable systems
// with independent solution storage, and owns the displaced coordinates
// buffer together with the geometric search data and point source registry
// operating on it. Element code sees the same protocol as on the primal
// problem; only the geometry differs.
type Displaced struct {
	base

	// links
	prim *Primal // the primal problem shadowed by this one

	// displaced geometry
	Xd [][]float64 // [nverts][ndim] displaced coordinates

	// searchers on displaced geometry
	Search *search.Data // spatial indices; nil before Init

	// derived
	dispRefs []dispRef // one per displacement component, in dimension order
}

// NewDisplaced allocates the displaced problem shadowing the given primal
// one. The displacement field must name existing variables, at most one per
// spatial dimension, in dimension order. Call Init before use.
func NewDisplaced(prim *Primal) (o *Displaced, err error) {

	// check displacement field
	names := prim.Sim.Displacements
	if len(names) == 0 {
		return nil, confErr("displacement field", "(no displacement variable defined)")
	}

	// shadow systems: same variables, same numbering, independent storage
	sys := NewSys(prim.sys.Name+"_displaced", prim.msh, prim.sys.Vars, prim.sys.ScalVars)
	aux := NewSys(prim.aux.Name+"_displaced", prim.msh, prim.aux.Vars, prim.aux.ScalVars)

	// resolve displacement components against the shadow systems
	o = new(Displaced)
	o.prim = prim
	o.dispRefs = make([]dispRef, len(names))
	for j, name := range names {
		if idx := sys.VarIndex(name); idx >= 0 {
			o.dispRefs[j] = dispRef{sys, idx}
			continue
		}
		if idx := aux.VarIndex(name); idx >= 0 {
			o.dispRefs[j] = dispRef{aux, idx}
			continue
		}
		return nil, confErr("variable", name)
	}

	// displaced coordinates start at the reference configuration
	o.Xd = make([][]float64, len(prim.msh.Verts))
	for _, v := range prim.msh.Verts {
		o.Xd[v.Id] = make([]float64, prim.msh.Ndim)
		copy(o.Xd[v.Id], v.C)
	}

	// tag registry and coupling matrix are the primal ones: tag ids, names
	// and storage are identical on both problems
	o.initBase(prim.name+"_displaced", prim.msh, o.Xd, sys, aux, prim.tags, prim.coup, dirac.New(prim.msh, o.Xd), prim.nworkers)
	return
}

// Primal returns the problem shadowed by this one
func (o *Displaced) Primal() *Primal { return o.prim }

// NumWorkers returns the number of workers used in node passes
func (o *Displaced) NumWorkers() int { return o.nworkers }

// Transient delegates the transient flag to the primal problem
func (o *Displaced) Transient() bool { return o.prim.Transient() }

// Converged delegates the convergence state to the primal problem
func (o *Displaced) Converged() bool { return o.prim.Converged }

// CoordSystem delegates the coordinate system lookup to the primal problem
func (o *Displaced) CoordSystem(ctag int) string { return o.prim.CoordSystem(ctag) }

// Init completes the setup: attaches the extra send list of the primal
// problem to the shadow systems, copies the primal solutions, builds the
// spatial indices and moves the geometry to the current displacements.
func (o *Displaced) Init() (err error) {
	o.sys.SetExtraSendList(o.prim.ExtraSendEqs)
	o.aux.SetExtraSendList(o.prim.ExtraSendEqs)
	err = o.SyncSolutions()
	if err != nil {
		return
	}
	o.Search, err = search.New(o.msh, o.Xd, o.prim.Sim.Search.Ndiv, o.prim.Sim.Search.Tol)
	if err != nil {
		return
	}
	return o.UpdateMesh()
}

// SyncSolutions copies the current, old and older solutions of both primal
// systems into the shadow systems. Values are copied, never aliased.
func (o *Displaced) SyncSolutions() (err error) {
	err = o.sys.CopySolFrom(o.prim.sys)
	if err != nil {
		return
	}
	return o.aux.CopySolFrom(o.prim.aux)
}

// SyncSolutionsVecs copies the given solution vectors into the shadow
// systems, instead of the primal current solutions
func (o *Displaced) SyncSolutionsVecs(sol, aux []float64) (err error) {
	err = o.sys.CopySolVec(sol)
	if err != nil {
		return
	}
	return o.aux.CopySolVec(aux)
}

// UpdateMesh copies the primal solutions into the shadow systems and moves
// every node of the displaced geometry to reference position plus
// displacement. Requires a geometry consistent on all processors; the
// spatial indices and point sources are refreshed afterwards.
func (o *Displaced) UpdateMesh() (err error) {
	err = o.SyncSolutions()
	if err != nil {
		return
	}
	return o.moveNodes()
}

// UpdateMeshVecs moves the displaced geometry using the given solution
// vectors instead of the primal current solutions
func (o *Displaced) UpdateMeshVecs(sol, aux []float64) (err error) {
	err = o.SyncSolutionsVecs(sol, aux)
	if err != nil {
		return
	}
	return o.moveNodes()
}

// moveNodes recomputes all displaced coordinates from the shadow solutions
// and refreshes the structures indexing the new geometry
func (o *Displaced) moveNodes() (err error) {

	if o.Search == nil {
		return invErr("cannot update displaced geometry of %q: Init was not called", o.name)
	}

	// every processor visits every node, owned or not; a distributed
	// geometry must be made consistent first
	if o.msh.Distr && !o.msh.Collected {
		o.msh.Collect()
	}

	// reference position plus displacement, all nodes, all dimensions
	ndim := o.msh.Ndim
	verts := o.msh.Verts
	nodePass(len(verts), o.nworkers, func(worker, vid int) {
		for j := 0; j < ndim; j++ {
			o.Xd[vid][j] = verts[vid].C[j]
		}
		for j, ref := range o.dispRefs {
			o.Xd[vid][j] += ref.sys.Sol[ref.sys.Eqs[vid][ref.idx]]
		}
	})

	// indices over the new geometry
	o.Search.MarkStale()
	err = o.Search.Update()
	if err != nil {
		return
	}
	return o.drc.UpdatePointLocator()
}

// UndisplaceMesh moves every node of the displaced geometry back to its
// reference position. The spatial indices are left stale on purpose:
// topology modification runs next and triggers a full MeshChanged.
func (o *Displaced) UndisplaceMesh() {
	ndim := o.msh.Ndim
	verts := o.msh.Verts
	nodePass(len(verts), o.nworkers, func(worker, vid int) {
		for j := 0; j < ndim; j++ {
			o.Xd[vid][j] = verts[vid].C[j]
		}
	})
	if o.Search != nil {
		o.Search.MarkStale()
	}
}

// MeshChanged rebuilds everything derived from connectivity after a topology
// change: shadow systems, displaced coordinates, adjacency maps and spatial
// indices. The primal problem must have processed the change first.
func (o *Displaced) MeshChanged() (err error) {

	// shadow systems follow the new numbering
	sys := NewSys(o.sys.Name, o.msh, o.sys.Vars, o.sys.ScalVars)
	aux := NewSys(o.aux.Name, o.msh, o.aux.Vars, o.aux.ScalVars)
	for j, ref := range o.dispRefs {
		if ref.sys == o.sys {
			o.dispRefs[j].sys = sys
		} else {
			o.dispRefs[j].sys = aux
		}
	}

	// displaced coordinates buffer follows the new vertex set
	o.Xd = make([][]float64, len(o.msh.Verts))
	for _, v := range o.msh.Verts {
		o.Xd[v.Id] = make([]float64, o.msh.Ndim)
		copy(o.Xd[v.Id], v.C)
	}

	drc := o.drc
	drc.SetCoords(o.Xd)
	o.initBase(o.name, o.msh, o.Xd, sys, aux, o.prim.tags, o.prim.coup, drc, o.nworkers)
	o.sys.SetExtraSendList(o.prim.ExtraSendEqs)
	o.aux.SetExtraSendList(o.prim.ExtraSendEqs)

	// full re-derivation of the spatial indices
	err = o.SyncSolutions()
	if err != nil {
		return
	}
	o.Search, err = search.New(o.msh, o.Xd, o.prim.Sim.Search.Ndiv, o.prim.Sim.Search.Tol)
	if err != nil {
		return
	}
	return o.moveNodes()
}

// UpdateGeomSearch refreshes the spatial indices of the given kinds (all if
// none is given) against the current displaced geometry
func (o *Displaced) UpdateGeomSearch(kinds ...search.Kind) (err error) {
	if o.Search == nil {
		return invErr("cannot update geometric search of %q: Init was not called", o.name)
	}
	return o.Search.Update(kinds...)
}

// SaveOldSolutions stashes the old and older solutions of both shadow systems
func (o *Displaced) SaveOldSolutions() {
	o.sys.SaveOldSolutions()
	o.aux.SaveOldSolutions()
}

// RestoreOldSolutions restores the stashed old and older solutions of both
// shadow systems
func (o *Displaced) RestoreOldSolutions() (err error) {
	err = o.sys.RestoreOldSolutions()
	if err != nil {
		return
	}
	return o.aux.RestoreOldSolutions()
}

// String returns a one-line description of the displaced problem
func (o *Displaced) String() string {
	return io.Sf("%q: %d nodes, %d cells, %d+%d equations", o.name, len(o.msh.Verts), len(o.msh.Cells), o.sys.Neqs, o.aux.Neqs)
}
