// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"sort"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/godisp/inp"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// readProblem loads the two-quads simulation and builds both problems
func readProblem(tst *testing.T, nworkers int) (prim *Primal, dp *Displaced, ok bool) {
	sim, err := inp.ReadSim("data/dsy01.sim", true, 0)
	if err != nil {
		tst.Errorf("cannot read simulation:\n%v", err)
		return
	}
	if nworkers > 0 {
		sim.Data.Nworkers = nworkers
	}
	prim, err = NewPrimal(sim)
	if err != nil {
		tst.Errorf("cannot allocate primal problem:\n%v", err)
		return
	}
	dp, err = NewDisplaced(prim)
	if err != nil {
		tst.Errorf("cannot allocate displaced problem:\n%v", err)
		return
	}
	err = dp.Init()
	if err != nil {
		tst.Errorf("cannot initialise displaced problem:\n%v", err)
		return
	}
	return prim, dp, true
}

func Test_disp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp01. geometry follows the displacement field")

	prim, dp, ok := readProblem(tst, 0)
	if !ok {
		return
	}
	msh := prim.Mesh()

	// fresh problem sits at the reference configuration
	for _, v := range msh.Verts {
		chk.Array(tst, io.Sf("initial x%d", v.Id), 1e-17, dp.Xd[v.Id], v.C)
	}

	// move node 2 by 0.5 along x
	sol := make([]float64, prim.System().Neqs)
	sol[prim.System().Eq(2, "ux")] = 0.5
	err := prim.SetSolution(sol)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = dp.UpdateMesh()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Array(tst, "x2", 1e-15, dp.Xd[2], []float64{2.5, 0})
	chk.Array(tst, "x1", 1e-15, dp.Xd[1], []float64{1, 0})
	chk.Array(tst, "x5", 1e-15, dp.Xd[5], []float64{2, 1})

	// zero field must reproduce the reference configuration exactly
	err = prim.SetSolution(make([]float64, prim.System().Neqs))
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = dp.UpdateMesh()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	for _, v := range msh.Verts {
		chk.Array(tst, io.Sf("zeroed x%d", v.Id), 1e-17, dp.Xd[v.Id], v.C)
	}

	// undisplacing is idempotent
	prim.SetSolution(sol)
	err = dp.UpdateMesh()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	dp.UndisplaceMesh()
	dp.UndisplaceMesh()
	for _, v := range msh.Verts {
		chk.Array(tst, io.Sf("undisplaced x%d", v.Id), 1e-17, dp.Xd[v.Id], v.C)
	}

	// synchronisation copies values; it never aliases storage
	eq := prim.System().Eq(2, "ux")
	err = dp.SyncSolutions()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	prim.System().Sol[eq] = 99
	chk.Float64(tst, "shadow sol", 1e-17, dp.System().Sol[eq], 0.5)

	// explicit vectors variant
	sol2 := make([]float64, prim.System().Neqs)
	aux2 := make([]float64, prim.AuxSystem().Neqs)
	sol2[eq] = -0.25
	err = dp.UpdateMeshVecs(sol2, aux2)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Array(tst, "x2 from vecs", 1e-15, dp.Xd[2], []float64{1.75, 0})

	// history stash
	dp.SaveOldSolutions()
	dp.System().SolOld[eq] = 123
	err = dp.RestoreOldSolutions()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "restored old sol", 1e-17, dp.System().SolOld[eq], 0)
}

func Test_disp02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp02. node pass is deterministic for any worker count")

	var results [][][]float64
	for _, nw := range []int{1, 3} {
		prim, dp, ok := readProblem(tst, nw)
		if !ok {
			return
		}
		sol := make([]float64, prim.System().Neqs)
		for i := range sol {
			sol[i] = 0.01 * float64(i+1)
		}
		prim.SetSolution(sol)
		err := dp.UpdateMesh()
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		results = append(results, dp.Xd)
	}
	for vid := range results[0] {
		chk.Array(tst, io.Sf("x%d", vid), 1e-17, results[1][vid], results[0][vid])
	}
}

func Test_disp03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp03. variable lookup and error taxonomy")

	prim, dp, ok := readProblem(tst, 0)
	if !ok {
		return
	}

	// lookups
	if !dp.HasVariable("ux") || !dp.HasVariable("temp") || dp.HasVariable("nope") {
		tst.Errorf("wrong nodal variable lookup\n")
		return
	}
	if !dp.HasScalarVariable("lambda") || dp.HasScalarVariable("ux") {
		tst.Errorf("wrong scalar variable lookup\n")
		return
	}
	v, err := dp.Variable("temp")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if v.Sys != dp.AuxSystem() {
		tst.Errorf("variable %q must live in the auxiliary system\n", v.Key)
		return
	}

	// unknown names give configuration errors
	var cerr *ConfigurationError
	_, err = dp.Variable("nope")
	if !errors.As(err, &cerr) {
		tst.Errorf("lookup of unknown variable must give ConfigurationError; got %v\n", err)
		return
	}
	_, err = dp.ScalarVariable("ux")
	if !errors.As(err, &cerr) {
		tst.Errorf("lookup of unknown scalar must give ConfigurationError; got %v\n", err)
		return
	}

	// node on boundary
	a := dp.NewAssembly(0)
	err = dp.ReinitNodeFace(a, 0, -10)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Ints(tst, "Nmap at node 0", a.Nmap, []int{0, 1})

	// node off the boundary breaks an invariant
	var verr *InvariantViolation
	err = dp.ReinitNodeFace(a, 3, -10)
	if !errors.As(err, &verr) {
		tst.Errorf("node off boundary must give InvariantViolation; got %v\n", err)
		return
	}

	// unknown face tag is a configuration problem
	err = dp.ReinitNodeFace(a, 0, -99)
	if !errors.As(err, &cerr) {
		tst.Errorf("unknown face tag must give ConfigurationError; got %v\n", err)
		return
	}

	// accumulating without an element breaks an invariant
	b := dp.NewAssembly(1)
	err = dp.AddResidual(b, []int{0})
	if !errors.As(err, &verr) {
		tst.Errorf("accumulation without element must give InvariantViolation; got %v\n", err)
		return
	}

	// restoring without saving breaks an invariant
	err = dp.RestoreOldSolutions()
	if !errors.As(err, &verr) {
		tst.Errorf("restore without save must give InvariantViolation; got %v\n", err)
		return
	}

	// flags and coordinate systems are delegated to the primal problem
	if dp.Transient() != prim.Transient() {
		tst.Errorf("wrong transient flag delegation\n")
		return
	}
	prim.SetConverged(true)
	if !dp.Converged() {
		tst.Errorf("wrong convergence delegation\n")
		return
	}
	if dp.CoordSystem(-1) != "cartesian" {
		tst.Errorf("default coordinate system must be cartesian\n")
		return
	}
	err = prim.SetCoordSystem(-1, "cylindrical")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if dp.CoordSystem(-1) != "cylindrical" {
		tst.Errorf("wrong coordinate system delegation\n")
		return
	}
	err = prim.SetCoordSystem(-99, "cylindrical")
	if !errors.As(err, &cerr) {
		tst.Errorf("unknown cell tag must give ConfigurationError; got %v\n", err)
		return
	}
}

func Test_disp04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp04. tag delegation and contribution accumulation")

	prim, dp, ok := readProblem(tst, 0)
	if !ok {
		return
	}

	// one registry for both problems
	if dp.Tags() != prim.Tags() {
		tst.Errorf("displaced problem must delegate tags to the primal one\n")
		return
	}
	id := dp.Tags().AddVectorTag("aux1")
	idOnPrim, err := prim.Tags().VectorTagID("aux1")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(id, idOnPrim)
	name, err := dp.Tags().VectorTagName(id)
	if err != nil || name != "aux1" {
		tst.Errorf("wrong tag name: %q (%v)\n", name, err)
		return
	}
	_, err = dp.Tags().VectorTagID("ghost")
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		tst.Errorf("unknown tag must give ConfigurationError; got %v\n", err)
		return
	}

	// element equation map is vertex-major
	a := dp.NewAssembly(0)
	err = dp.Prepare(a, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Ints(tst, "Umap of cell 0", a.Umap, []int{0, 1, 2, 3, 8, 9, 6, 7})

	// direct accumulation
	for i := range a.Fe {
		a.Fe[i] = 1.0
	}
	err = dp.AddResidual(a, []int{id})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	vec, err := dp.Tags().Vec(id)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "vec[0]", 1e-17, vec[0], 1)
	chk.Float64(tst, "vec[9]", 1e-17, vec[9], 1)
	chk.Float64(tst, "vec[4]", 1e-17, vec[4], 0)

	// cached accumulation adds on top
	dp.CacheResidual(a)
	dp.CacheResidual(a)
	err = dp.AddCachedResiduals(a, []int{id})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "vec[0] after cache", 1e-17, vec[0], 3)

	// cache is cleared after accumulation
	err = dp.AddCachedResiduals(a, []int{id})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "vec[0] after empty cache", 1e-17, vec[0], 3)

	// cached accumulation into a raw vector
	dp.CacheResidual(a)
	raw := make([]float64, prim.System().Neqs)
	err = dp.AddCachedResidualVec(a, raw)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Float64(tst, "raw[0]", 1e-17, raw[0], 1)

	// Jacobian blocks
	for i := range a.Ke {
		for j := range a.Ke[i] {
			a.Ke[i][j] = 1.0
		}
	}
	err = dp.AddJacobian(a, []int{0})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	dp.CacheJacobian(a)
	err = dp.AddCachedJacobians(a, []int{0})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// scalar variable blocks
	err = dp.ReinitScalars(a)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Ints(tst, "ScalMap", a.ScalMap, []int{12})
	err = dp.ReinitOffDiagScalars(a)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(len(a.Kso), 1)
	chk.IntAssert(len(a.Kso[0]), 8)
	chk.IntAssert(len(a.Kos), 8)
}

func Test_disp05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp05. element data tracks the displaced geometry")

	prim, dp, ok := readProblem(tst, 0)
	if !ok {
		return
	}

	// uniform displacement: every node moves 0.2 along x
	sol := make([]float64, prim.System().Neqs)
	for _, v := range prim.Mesh().Verts {
		sol[prim.System().Eq(v.Id, "ux")] = 0.2
	}
	prim.SetSolution(sol)
	err := dp.UpdateMesh()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// integration point coordinates shift; Jacobians do not
	a := dp.NewAssembly(0)
	b := prim.NewAssembly(0)
	err = dp.ReinitElem(a, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = prim.ReinitElem(b, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	for i := range a.Xip {
		chk.Float64(tst, io.Sf("xip%d", i), 1e-15, a.Xip[i][0], b.Xip[i][0]+0.2)
		chk.Float64(tst, io.Sf("yip%d", i), 1e-15, a.Xip[i][1], b.Xip[i][1])
		chk.Float64(tst, io.Sf("jdet%d", i), 1e-15, a.Jdet[i], b.Jdet[i])
	}

	// face data on the left boundary
	err = dp.ReinitElemFace(a, 3)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(a.FTag, -13)
	chk.Array(tst, "left normal", 1e-15, a.Nfvecs[0], []float64{-0.5, 0})
	chk.Float64(tst, "xfip", 1e-15, a.Xfip[0][0], 0.2)

	// neighbor across the internal face
	err = dp.ReinitNeighbor(a, 0, 1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(a.NeighCid, 1)
	chk.IntAssert(a.FTag, 0)
	chk.Ints(tst, "NeighUmap", a.NeighUmap, []int{2, 3, 4, 5, 10, 11, 8, 9})

	// boundary faces have no neighbor
	err = dp.ReinitNeighbor(a, 0, 0)
	var verr *InvariantViolation
	if !errors.As(err, &verr) {
		tst.Errorf("neighbor across boundary face must give InvariantViolation; got %v\n", err)
		return
	}

	// physical points are inverse-mapped against the displaced geometry
	err = dp.ReinitElemPhys(a, 0, [][]float64{{0.7, 0.5}})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Array(tst, "rpt", 1e-9, a.Rpts[0], []float64{0, 0})
}

func Test_disp06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp06. point sources follow the displaced geometry")

	prim, dp, ok := readProblem(tst, 0)
	if !ok {
		return
	}

	// an element without point sources reports none and stays untouched
	a := dp.NewAssembly(0)
	has, err := dp.ReinitDirac(a, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if has {
		tst.Errorf("element without point sources must report none\n")
		return
	}
	if a.HasElem() {
		tst.Errorf("assembly must stay untouched when no point source exists\n")
		return
	}

	// register a point near the internal face, inside cell 1
	cid, err := dp.Dirac().AddPoint([]float64{1.1, 0.5})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(cid, 1)
	has, err = dp.ReinitDirac(a, 1)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if !has || len(a.Pts) != 1 {
		tst.Errorf("element must see its point source\n")
		return
	}

	// a uniform displacement moves cell 0 over the point
	sol := make([]float64, prim.System().Neqs)
	for _, v := range prim.Mesh().Verts {
		sol[prim.System().Eq(v.Id, "ux")] = 0.2
	}
	prim.SetSolution(sol)
	err = dp.UpdateMesh()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Ints(tst, "elements with point sources", dp.Dirac().Elements(), []int{0})

	// a displacement pushing the geometry off the point must fail
	for _, v := range prim.Mesh().Verts {
		sol[prim.System().Eq(v.Id, "ux")] = 5.0
	}
	prim.SetSolution(sol)
	err = dp.UpdateMesh()
	if err == nil {
		tst.Errorf("moving the geometry off a point source must fail\n")
	}
}

func Test_disp07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp07. spatial indices track the displaced geometry")

	prim, dp, ok := readProblem(tst, 0)
	if !ok {
		return
	}

	// the bottom edge holds three nodes at the reference configuration
	ids := dp.Search.FindNodesAlongLine([]float64{0, 0}, []float64{2, 0})
	sort.Ints(ids)
	chk.Ints(tst, "bottom nodes", ids, []int{0, 1, 2})

	// lifting node 2 removes it from the bottom edge
	sol := make([]float64, prim.System().Neqs)
	sol[prim.System().Eq(2, "uy")] = 0.5
	prim.SetSolution(sol)
	err := dp.UpdateMesh()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	ids = dp.Search.FindNodesAlongLine([]float64{0, 0}, []float64{2, 0})
	sort.Ints(ids)
	chk.Ints(tst, "bottom nodes after lift", ids, []int{0, 1})

	// point query at the new position
	chk.IntAssert(dp.Search.FindNode([]float64{2, 0.5}), 2)

	// direct buffer changes leave the indices stale until refreshed
	dp.Xd[2][1] = 0.9
	dp.Search.MarkStale()
	if dp.Search.Fresh(0) {
		tst.Errorf("index must be stale after a geometry change\n")
		return
	}
	err = dp.UpdateGeomSearch()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	if !dp.Search.Fresh(0) {
		tst.Errorf("index must be fresh after the update\n")
		return
	}
	chk.IntAssert(dp.Search.FindNode([]float64{2, 0.9}), 2)
}

func Test_disp08(tst *testing.T) {

	//verbose()
	chk.PrintTitle("disp08. topology change rebuilds both problems")

	prim, dp, ok := readProblem(tst, 0)
	if !ok {
		return
	}
	msh := prim.Mesh()

	// a point source registered before the change, inside cell 1
	cid, err := dp.Dirac().AddPoint([]float64{1.1, 0.5})
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(cid, 1)

	// grow the strip by one column: two vertices and one qua4. The right
	// edge of cell 1 becomes internal and the new cell takes its face tag
	msh.Verts = append(msh.Verts,
		&inp.Vert{Id: 6, Tag: 0, C: []float64{3, 0}},
		&inp.Vert{Id: 7, Tag: 0, C: []float64{3, 1}},
	)
	msh.Cells[1].FTags[1] = 0
	msh.Cells = append(msh.Cells, &inp.Cell{
		Id: 2, Tag: -1, Part: 0, Type: "qua4",
		Verts: []int{2, 6, 7, 5},
		FTags: []int{-10, -12, -11, 0},
	})
	err = prim.MeshChanged()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = dp.MeshChanged()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}

	// both systems follow the new numbering: 8 nodes, 2 nodal vars, 1 scalar
	chk.IntAssert(prim.System().Neqs, 17)
	chk.IntAssert(dp.System().Neqs, 17)
	chk.IntAssert(prim.System().Eq(6, "ux"), 12)
	chk.IntAssert(dp.System().Eq(7, "uy"), 15)

	// tag registry stays shared and keeps its ids over the rebuilt storage
	if dp.Tags() != prim.Tags() {
		tst.Errorf("tag registry must stay shared after a topology change\n")
		return
	}
	id, err := dp.Tags().VectorTagID("residual")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(id, 0)
	vec, err := dp.Tags().Vec(id)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(len(vec), 17)
	id, err = dp.Tags().MatrixTagID("system")
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.IntAssert(id, 0)

	// element maps on the new cell are vertex-major on the new numbering
	a := dp.NewAssembly(0)
	err = dp.Prepare(a, 2)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Ints(tst, "Umap of cell 2", a.Umap, []int{4, 5, 12, 13, 14, 15, 10, 11})
	err = dp.ReinitScalars(a)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Ints(tst, "ScalMap", a.ScalMap, []int{16})

	// displaced coordinates cover the new vertices
	chk.IntAssert(len(dp.Xd), 8)
	chk.Array(tst, "x7", 1e-17, dp.Xd[7], []float64{3, 1})

	// the point source is re-located on the new topology
	chk.Ints(tst, "elements with point sources", dp.Dirac().Elements(), []int{1})

	// spatial indices see the new geometry
	chk.IntAssert(dp.Search.FindNode([]float64{3, 0}), 6)
	ids := dp.Search.FindNodesAlongLine([]float64{0, 0}, []float64{3, 0})
	sort.Ints(ids)
	chk.Ints(tst, "bottom nodes", ids, []int{0, 1, 2, 6})

	// the rebuilt problems keep working: a displacement moves the new cell
	sol := make([]float64, prim.System().Neqs)
	sol[prim.System().Eq(6, "ux")] = 0.25
	err = prim.SetSolution(sol)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = dp.UpdateMesh()
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Array(tst, "x6", 1e-15, dp.Xd[6], []float64{3.25, 0})
	chk.Array(tst, "x5", 1e-15, dp.Xd[5], []float64{2, 1})
}
