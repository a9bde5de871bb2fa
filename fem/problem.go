// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem implements the primal and displaced finite element problems
// and the element assembly protocol shared by both
package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/godisp/dirac"
	"github.com/cpmech/godisp/inp"
	"github.com/cpmech/godisp/shp"
)

// workerShape returns a worker-local copy of the shape structure.
// Worker 0 uses the shared factory instance.
func workerShape(geoType string, worker int) *shp.Shape {
	return shp.Get(geoType, worker)
}

// VarRef identifies one solution variable within a problem
type VarRef struct {
	Key    string // variable name
	Sys    *Sys   // system holding it
	Index  int    // index within the system's variable list
	Scalar bool   // global scalar variable
}

// Problem defines the element assembly protocol: binding worker state to
// elements, faces, nodes and neighbors of a geometry, and accumulating
// local contributions into tagged global vectors and matrices. It is
// implemented by both the primal problem (reference geometry) and the
// displaced problem (displaced geometry); element code written against this
// interface runs unchanged on either.
type Problem interface {

	// data access
	Name() string
	Mesh() *inp.Mesh
	Coords() [][]float64
	System() *Sys
	AuxSystem() *Sys
	Tags() *TagRegistry
	Dirac() *dirac.Info
	NewAssembly(worker int) *Assembly

	// variable lookup
	HasVariable(name string) bool
	HasScalarVariable(name string) bool
	Variable(name string) (*VarRef, error)
	ScalarVariable(name string) (*VarRef, error)

	// element preparation
	Prepare(a *Assembly, cid int) error
	PrepareFace(a *Assembly, cid, fid int) error
	PrepareNeighbor(a *Assembly, cid, fid int) error

	// reinitialisation against current geometry
	ReinitElem(a *Assembly, cid int) error
	ReinitElemPhys(a *Assembly, cid int, pts [][]float64) error
	ReinitElemFace(a *Assembly, fid int) error
	ReinitNode(a *Assembly, vid int) error
	ReinitNodeFace(a *Assembly, vid, ftag int) error
	ReinitNodes(a *Assembly, vids []int) error
	ReinitNodesNeighbor(a *Assembly, vids []int) error
	ReinitNeighbor(a *Assembly, cid, fid int) error
	ReinitNeighborPhys(a *Assembly, ncid int, pts [][]float64) error
	ReinitDirac(a *Assembly, cid int) (bool, error)
	ReinitScalars(a *Assembly) error
	ReinitOffDiagScalars(a *Assembly) error

	// residual accumulation
	AddResidual(a *Assembly, tagIds []int) error
	AddResidualNeighbor(a *Assembly, tagIds []int) error
	CacheResidual(a *Assembly) error
	CacheResidualNeighbor(a *Assembly) error
	AddCachedResiduals(a *Assembly, tagIds []int) error
	AddCachedResidualVec(a *Assembly, f []float64) error

	// Jacobian accumulation
	AddJacobian(a *Assembly, tagIds []int) error
	AddJacobianNeighbor(a *Assembly, tagIds []int) error
	CacheJacobian(a *Assembly) error
	CacheJacobianNeighbor(a *Assembly) error
	AddCachedJacobians(a *Assembly, tagIds []int) error
}

// both problems implement the full protocol
var (
	_ Problem = (*Primal)(nil)
	_ Problem = (*Displaced)(nil)
)

// base implements the assembly protocol over one coordinates buffer. The
// primal problem embeds it bound to the reference coordinates; the displaced
// problem embeds it bound to the displaced coordinates buffer while sharing
// the primal tag registry.
type base struct {
	name     string
	msh      *inp.Mesh
	x        [][]float64 // current coordinates; nil => reference
	sys      *Sys        // nonlinear system
	aux      *Sys        // auxiliary system
	tags     *TagRegistry
	coup     [][]bool // coupling among nodal variables
	drc      *dirac.Info
	nworkers int

	// derived
	vert2cells [][]int // [nverts] ids of cells sharing each vertex
}

// initBase sets the shared fields and derives the vertex-to-cells map
func (o *base) initBase(name string, msh *inp.Mesh, x [][]float64, sys, aux *Sys, tags *TagRegistry, coup [][]bool, drc *dirac.Info, nworkers int) {
	o.name = name
	o.msh = msh
	o.x = x
	o.sys = sys
	o.aux = aux
	o.tags = tags
	o.coup = coup
	o.drc = drc
	o.nworkers = nworkers
	o.vert2cells = make([][]int, len(msh.Verts))
	for _, c := range msh.Cells {
		for _, v := range c.Verts {
			o.vert2cells[v] = append(o.vert2cells[v], c.Id)
		}
	}
}

// Name returns the name of this problem
func (o *base) Name() string { return o.name }

// Mesh returns the shared connectivity and reference coordinates
func (o *base) Mesh() *inp.Mesh { return o.msh }

// Coords returns the coordinates buffer this problem assembles on.
// nil means reference coordinates.
func (o *base) Coords() [][]float64 { return o.x }

// System returns the nonlinear variable system
func (o *base) System() *Sys { return o.sys }

// AuxSystem returns the auxiliary variable system
func (o *base) AuxSystem() *Sys { return o.aux }

// Tags returns the tag registry
func (o *base) Tags() *TagRegistry { return o.tags }

// Dirac returns the point source registry
func (o *base) Dirac() *dirac.Info { return o.drc }

// NewAssembly returns a new worker-local assembly bound to this problem's
// coupling matrix
func (o *base) NewAssembly(worker int) *Assembly {
	return &Assembly{Id: worker, Coup: o.coup, Cid: -1, Vid: -1, NeighCid: -1}
}

// variable lookup ///////////////////////////////////////////////////////////////////////////////

// HasVariable tells whether a nodal variable with given name exists in the
// nonlinear or auxiliary system
func (o *base) HasVariable(name string) bool {
	return o.sys.HasVar(name) || o.aux.HasVar(name)
}

// HasScalarVariable tells whether a global scalar variable with given name exists
func (o *base) HasScalarVariable(name string) bool {
	return o.sys.HasScalVar(name) || o.aux.HasScalVar(name)
}

// Variable returns the nodal variable with given name
func (o *base) Variable(name string) (v *VarRef, err error) {
	if j := o.sys.VarIndex(name); j >= 0 {
		return &VarRef{name, o.sys, j, false}, nil
	}
	if j := o.aux.VarIndex(name); j >= 0 {
		return &VarRef{name, o.aux, j, false}, nil
	}
	return nil, confErr("variable", name)
}

// ScalarVariable returns the global scalar variable with given name
func (o *base) ScalarVariable(name string) (v *VarRef, err error) {
	if j := o.sys.ScalVarIndex(name); j >= 0 {
		return &VarRef{name, o.sys, j, true}, nil
	}
	if j := o.aux.ScalVarIndex(name); j >= 0 {
		return &VarRef{name, o.aux, j, true}, nil
	}
	return nil, confErr("scalar variable", name)
}

// element preparation ///////////////////////////////////////////////////////////////////////////

// Prepare binds the element with given cell id to the assembly: gathers its
// coordinates from the current buffer, builds the equation map and zeroes
// the local residual and Jacobian
func (o *base) Prepare(a *Assembly, cid int) (err error) {
	if cid < 0 || cid >= len(o.msh.Cells) {
		return confErr("cell", io.Sf("#%d", cid))
	}
	c := o.msh.Cells[cid]
	a.Cid = cid
	a.Shape = workerShape(c.Type, a.Id)
	a.X = o.msh.CellCoords(cid, o.x)
	a.IpsElem, a.IpsFace, err = a.Shape.GetIps(a.nip, a.nipf)
	if err != nil {
		return
	}
	nvars := len(o.sys.Vars)
	nu := len(c.Verts) * nvars
	a.Umap = make([]int, nu)
	for m, v := range c.Verts {
		for j := 0; j < nvars; j++ {
			a.Umap[m*nvars+j] = o.sys.Eqs[v][j]
		}
	}
	if len(a.Fe) == nu {
		a.zeroElem()
	} else {
		a.Fe = make([]float64, nu)
		a.Ke = utl.Alloc(nu, nu)
	}
	a.resetElem()
	return
}

// PrepareFace binds an element and selects one of its faces
func (o *base) PrepareFace(a *Assembly, cid, fid int) (err error) {
	err = o.Prepare(a, cid)
	if err != nil {
		return
	}
	if fid < 0 || fid >= len(a.Shape.FaceLocalVerts) {
		return confErr("face", io.Sf("#%d of cell %d", fid, cid))
	}
	a.Fid = fid
	return
}

// PrepareNeighbor binds an element and the neighbor across one of its faces:
// gathers the neighbor coordinates, builds its equation map and zeroes all
// neighbor blocks
func (o *base) PrepareNeighbor(a *Assembly, cid, fid int) (err error) {
	err = o.PrepareFace(a, cid, fid)
	if err != nil {
		return
	}
	ncid, err := o.neighborAcross(cid, fid)
	if err != nil {
		return
	}
	n := o.msh.Cells[ncid]
	a.NeighCid = ncid
	a.NeighShape = workerShape(n.Type, a.Id)
	a.NeighX = o.msh.CellCoords(ncid, o.x)
	nvars := len(o.sys.Vars)
	nn := len(n.Verts) * nvars
	a.NeighUmap = make([]int, nn)
	for m, v := range n.Verts {
		for j := 0; j < nvars; j++ {
			a.NeighUmap[m*nvars+j] = o.sys.Eqs[v][j]
		}
	}
	a.Fn = make([]float64, nn)
	a.Kn = utl.Alloc(nn, nn)
	a.Ken = utl.Alloc(len(a.Umap), nn)
	a.Kne = utl.Alloc(nn, len(a.Umap))
	return
}

// reinitialisation //////////////////////////////////////////////////////////////////////////////

// ReinitElem recomputes the quadrature data of the element with given cell
// id against the current geometry: real coordinates and Jacobian
// determinants at all integration points. Binds the element first if needed.
func (o *base) ReinitElem(a *Assembly, cid int) (err error) {
	if a.Cid != cid {
		err = o.Prepare(a, cid)
		if err != nil {
			return
		}
	}
	nip := len(a.IpsElem)
	a.Xip = utl.Alloc(nip, o.msh.Ndim)
	a.Jdet = make([]float64, nip)
	for i, ip := range a.IpsElem {
		err = a.Shape.CalcAtIp(a.X, ip, true)
		if err != nil {
			return chk.Err("cannot reinitialise cell %d at integration point %d:\n%v", cid, i, err)
		}
		a.Jdet[i] = a.Shape.J
		y := a.Shape.IpRealCoords(a.X, ip)
		copy(a.Xip[i], y)
	}
	return
}

// ReinitElemPhys binds the element with given cell id and evaluates it at
// the given physical points instead of its quadrature rule. Each point is
// inverse-mapped to natural coordinates against the current geometry.
func (o *base) ReinitElemPhys(a *Assembly, cid int, pts [][]float64) (err error) {
	if a.Cid != cid {
		err = o.Prepare(a, cid)
		if err != nil {
			return
		}
	}
	a.Pts = pts
	a.Rpts = make([][]float64, len(pts))
	for i, y := range pts {
		r := make([]float64, 3)
		err = a.Shape.InvMap(r, y, a.X)
		if err != nil {
			return chk.Err("cannot inverse-map point %v into cell %d:\n%v", y, cid, err)
		}
		a.Rpts[i] = r[:o.msh.Ndim]
	}
	return
}

// ReinitElemFace recomputes the face quadrature data of the currently bound
// element: real coordinates and normal vectors at all face integration points
func (o *base) ReinitElemFace(a *Assembly, fid int) (err error) {
	if !a.HasElem() {
		return invErr("cannot reinitialise face: no element is bound to assembly %d", a.Id)
	}
	if fid < 0 || fid >= len(a.Shape.FaceLocalVerts) {
		return confErr("face", io.Sf("#%d of cell %d", fid, a.Cid))
	}
	a.Fid = fid
	a.FTag = 0
	if ftags := o.msh.Cells[a.Cid].FTags; fid < len(ftags) {
		a.FTag = ftags[fid]
	}
	nipf := len(a.IpsFace)
	a.Xfip = utl.Alloc(nipf, o.msh.Ndim)
	a.Nfvecs = utl.Alloc(nipf, o.msh.Ndim)
	for i, ipf := range a.IpsFace {
		err = a.Shape.CalcAtFaceIp(a.X, ipf, fid)
		if err != nil {
			return chk.Err("cannot reinitialise face %d of cell %d:\n%v", fid, a.Cid, err)
		}
		copy(a.Nfvecs[i], a.Shape.Fnvec)
		for k, n := range a.Shape.FaceLocalVerts[fid] {
			for j := 0; j < o.msh.Ndim; j++ {
				a.Xfip[i][j] += a.Shape.Sf[k] * a.X[j][n]
			}
		}
	}
	return
}

// ReinitNode binds one node to the assembly and builds the equation map of
// all variables at it
func (o *base) ReinitNode(a *Assembly, vid int) (err error) {
	if vid < 0 || vid >= len(o.msh.Verts) {
		return confErr("node", io.Sf("#%d", vid))
	}
	a.Vid = vid
	a.Nmap = make([]int, len(o.sys.Vars))
	copy(a.Nmap, o.sys.Eqs[vid])
	return
}

// ReinitNodeFace binds one node lying on the boundary with given face tag.
// Fails if the tag is unknown or the node does not lie on that boundary.
func (o *base) ReinitNodeFace(a *Assembly, vid, ftag int) (err error) {
	pairs, ok := o.msh.FaceTag2cells[ftag]
	if !ok {
		return confErr("face tag", io.Sf("%d", ftag))
	}
	found := false
	for _, pair := range pairs {
		for _, l := range pair.C.Shp.FaceLocalVerts[pair.Fid] {
			if pair.C.Verts[l] == vid {
				found = true
			}
		}
	}
	if !found {
		return invErr("node %d does not lie on boundary with face tag %d", vid, ftag)
	}
	return o.ReinitNode(a, vid)
}

// ReinitNodes binds a set of nodes to the assembly
func (o *base) ReinitNodes(a *Assembly, vids []int) (err error) {
	a.Vids = make([]int, len(vids))
	copy(a.Vids, vids)
	a.Nmaps = make([][]int, len(vids))
	for i, vid := range vids {
		if vid < 0 || vid >= len(o.msh.Verts) {
			return confErr("node", io.Sf("#%d", vid))
		}
		a.Nmaps[i] = make([]int, len(o.sys.Vars))
		copy(a.Nmaps[i], o.sys.Eqs[vid])
	}
	return
}

// ReinitNodesNeighbor binds a set of nodes on the neighbor side
func (o *base) ReinitNodesNeighbor(a *Assembly, vids []int) (err error) {
	a.NeighVids = make([]int, len(vids))
	copy(a.NeighVids, vids)
	a.NeighNmaps = make([][]int, len(vids))
	for i, vid := range vids {
		if vid < 0 || vid >= len(o.msh.Verts) {
			return confErr("node", io.Sf("#%d", vid))
		}
		a.NeighNmaps[i] = make([]int, len(o.sys.Vars))
		copy(a.NeighNmaps[i], o.sys.Eqs[vid])
	}
	return
}

// ReinitNeighbor binds the element with given cell id, the neighbor across
// face fid and recomputes the face quadrature data between them
func (o *base) ReinitNeighbor(a *Assembly, cid, fid int) (err error) {
	err = o.PrepareNeighbor(a, cid, fid)
	if err != nil {
		return
	}
	err = o.ReinitElemFace(a, fid)
	if err != nil {
		return
	}
	// internal faces carry no boundary tag; 0 stands in for "none"
	a.FTag = 0
	return
}

// ReinitNeighborPhys binds the element with given cell id as neighbor and
// evaluates it at the given physical points
func (o *base) ReinitNeighborPhys(a *Assembly, ncid int, pts [][]float64) (err error) {
	if ncid < 0 || ncid >= len(o.msh.Cells) {
		return confErr("cell", io.Sf("#%d", ncid))
	}
	n := o.msh.Cells[ncid]
	a.NeighCid = ncid
	a.NeighShape = workerShape(n.Type, a.Id)
	a.NeighX = o.msh.CellCoords(ncid, o.x)
	nvars := len(o.sys.Vars)
	nn := len(n.Verts) * nvars
	a.NeighUmap = make([]int, nn)
	for m, v := range n.Verts {
		for j := 0; j < nvars; j++ {
			a.NeighUmap[m*nvars+j] = o.sys.Eqs[v][j]
		}
	}
	a.Fn = make([]float64, nn)
	a.Kn = utl.Alloc(nn, nn)
	a.NeighPts = pts
	a.NeighRpts = make([][]float64, len(pts))
	for i, y := range pts {
		r := make([]float64, 3)
		err = a.NeighShape.InvMap(r, y, a.NeighX)
		if err != nil {
			return chk.Err("cannot inverse-map point %v into neighbor cell %d:\n%v", y, ncid, err)
		}
		a.NeighRpts[i] = r[:o.msh.Ndim]
	}
	return
}

// ReinitDirac binds the element with given cell id against the point sources
// it hosts. Returns hasPoints==false, with the assembly untouched, when the
// element hosts no point source.
func (o *base) ReinitDirac(a *Assembly, cid int) (hasPoints bool, err error) {
	pts := o.drc.Points(cid)
	if len(pts) == 0 {
		return false, nil
	}
	err = o.ReinitElemPhys(a, cid, pts)
	if err != nil {
		return
	}
	return true, nil
}

// ReinitScalars binds the global scalar variables to the assembly
func (o *base) ReinitScalars(a *Assembly) (err error) {
	nscal := len(o.sys.ScalEqs)
	a.ScalMap = make([]int, nscal)
	copy(a.ScalMap, o.sys.ScalEqs)
	a.Fs = make([]float64, nscal)
	a.Ks = utl.Alloc(nscal, nscal)
	return
}

// ReinitOffDiagScalars prepares the coupling blocks between the global
// scalar variables and the currently bound element
func (o *base) ReinitOffDiagScalars(a *Assembly) (err error) {
	if !a.HasElem() {
		return invErr("cannot prepare scalar coupling blocks: no element is bound to assembly %d", a.Id)
	}
	if a.ScalMap == nil {
		err = o.ReinitScalars(a)
		if err != nil {
			return
		}
	}
	nscal := len(a.ScalMap)
	nu := len(a.Umap)
	a.Kso = utl.Alloc(nscal, nu)
	a.Kos = utl.Alloc(nu, nscal)
	return
}

// residual accumulation /////////////////////////////////////////////////////////////////////////

// AddResidual accumulates the element residual into the tagged vectors
func (o *base) AddResidual(a *Assembly, tagIds []int) (err error) {
	if !a.HasElem() {
		return invErr("cannot add residual: no element is bound to assembly %d", a.Id)
	}
	return o.scatterVec(a.Umap, a.Fe, tagIds)
}

// AddResidualNeighbor accumulates the neighbor residual into the tagged vectors
func (o *base) AddResidualNeighbor(a *Assembly, tagIds []int) (err error) {
	if !a.HasNeighbor() {
		return invErr("cannot add neighbor residual: no neighbor is bound to assembly %d", a.Id)
	}
	return o.scatterVec(a.NeighUmap, a.Fn, tagIds)
}

// CacheResidual copies the element residual into the worker cache for later
// accumulation
func (o *base) CacheResidual(a *Assembly) (err error) {
	if !a.HasElem() {
		return invErr("cannot cache residual: no element is bound to assembly %d", a.Id)
	}
	a.cacheRes(a.Umap, a.Fe)
	return
}

// CacheResidualNeighbor copies the neighbor residual into the worker cache
func (o *base) CacheResidualNeighbor(a *Assembly) (err error) {
	if !a.HasNeighbor() {
		return invErr("cannot cache neighbor residual: no neighbor is bound to assembly %d", a.Id)
	}
	a.cacheRes(a.NeighUmap, a.Fn)
	return
}

// AddCachedResiduals accumulates all cached residual contributions into the
// tagged vectors and clears the cache
func (o *base) AddCachedResiduals(a *Assembly, tagIds []int) (err error) {
	for _, e := range a.resCache {
		err = o.scatterVec(e.rmap, e.vals, tagIds)
		if err != nil {
			return
		}
	}
	a.resCache = a.resCache[:0]
	return
}

// AddCachedResidualVec accumulates all cached residual contributions
// directly into the given vector and clears the cache
func (o *base) AddCachedResidualVec(a *Assembly, f []float64) (err error) {
	for _, e := range a.resCache {
		for i, I := range e.rmap {
			if I < 0 || I >= len(f) {
				return invErr("cached residual equation %d is out of range. size = %d", I, len(f))
			}
			f[I] += e.vals[i]
		}
	}
	a.resCache = a.resCache[:0]
	return
}

// Jacobian accumulation /////////////////////////////////////////////////////////////////////////

// AddJacobian accumulates the element Jacobian into the tagged matrices,
// honouring the variable coupling matrix
func (o *base) AddJacobian(a *Assembly, tagIds []int) (err error) {
	if !a.HasElem() {
		return invErr("cannot add Jacobian: no element is bound to assembly %d", a.Id)
	}
	return o.scatterMatCoupled(a, a.Umap, a.Umap, a.Ke, tagIds)
}

// AddJacobianNeighbor accumulates the neighbor-neighbor and cross blocks
// into the tagged matrices
func (o *base) AddJacobianNeighbor(a *Assembly, tagIds []int) (err error) {
	if !a.HasNeighbor() {
		return invErr("cannot add neighbor Jacobian: no neighbor is bound to assembly %d", a.Id)
	}
	err = o.scatterMatCoupled(a, a.NeighUmap, a.NeighUmap, a.Kn, tagIds)
	if err != nil {
		return
	}
	if a.Ken != nil {
		err = o.scatterMatCoupled(a, a.Umap, a.NeighUmap, a.Ken, tagIds)
		if err != nil {
			return
		}
	}
	if a.Kne != nil {
		err = o.scatterMatCoupled(a, a.NeighUmap, a.Umap, a.Kne, tagIds)
	}
	return
}

// CacheJacobian copies the element Jacobian into the worker cache
func (o *base) CacheJacobian(a *Assembly) (err error) {
	if !a.HasElem() {
		return invErr("cannot cache Jacobian: no element is bound to assembly %d", a.Id)
	}
	a.cacheJac(a.Umap, a.Umap, a.Ke)
	return
}

// CacheJacobianNeighbor copies the neighbor Jacobian blocks into the worker cache
func (o *base) CacheJacobianNeighbor(a *Assembly) (err error) {
	if !a.HasNeighbor() {
		return invErr("cannot cache neighbor Jacobian: no neighbor is bound to assembly %d", a.Id)
	}
	a.cacheJac(a.NeighUmap, a.NeighUmap, a.Kn)
	if a.Ken != nil {
		a.cacheJac(a.Umap, a.NeighUmap, a.Ken)
	}
	if a.Kne != nil {
		a.cacheJac(a.NeighUmap, a.Umap, a.Kne)
	}
	return
}

// AddCachedJacobians accumulates all cached Jacobian contributions into the
// tagged matrices and clears the cache
func (o *base) AddCachedJacobians(a *Assembly, tagIds []int) (err error) {
	for _, e := range a.jacCache {
		err = o.scatterMat(e.rmap, e.cmap, e.vals, tagIds)
		if err != nil {
			return
		}
	}
	a.jacCache = a.jacCache[:0]
	return
}

// auxiliary /////////////////////////////////////////////////////////////////////////////////////

// scatterVec accumulates a local vector into the tagged global vectors
func (o *base) scatterVec(rmap []int, vals []float64, tagIds []int) (err error) {
	for _, id := range tagIds {
		v, err := o.tags.Vec(id)
		if err != nil {
			return err
		}
		for i, I := range rmap {
			v[I] += vals[i]
		}
	}
	return
}

// scatterMat accumulates a local matrix into the tagged global matrices
func (o *base) scatterMat(rmap, cmap []int, vals [][]float64, tagIds []int) (err error) {
	for _, id := range tagIds {
		m, err := o.tags.Mat(id)
		if err != nil {
			return err
		}
		for i, I := range rmap {
			for j, J := range cmap {
				m.Put(I, J, vals[i][j])
			}
		}
	}
	return
}

// scatterMatCoupled accumulates a local matrix, skipping entries between
// variable pairs switched off in the coupling matrix
func (o *base) scatterMatCoupled(a *Assembly, rmap, cmap []int, vals [][]float64, tagIds []int) (err error) {
	nvars := len(o.sys.Vars)
	for _, id := range tagIds {
		m, err := o.tags.Mat(id)
		if err != nil {
			return err
		}
		for i, I := range rmap {
			for j, J := range cmap {
				if a.Coup != nil && !a.Coup[i%nvars][j%nvars] {
					continue
				}
				m.Put(I, J, vals[i][j])
			}
		}
	}
	return
}

// neighborAcross finds the cell sharing all vertices of face fid of cell cid
func (o *base) neighborAcross(cid, fid int) (ncid int, err error) {
	c := o.msh.Cells[cid]
	fverts := make(map[int]bool)
	for _, l := range c.Shp.FaceLocalVerts[fid] {
		fverts[c.Verts[l]] = true
	}
	for _, other := range o.vert2cells[c.Verts[c.Shp.FaceLocalVerts[fid][0]]] {
		if other == cid {
			continue
		}
		count := 0
		for _, v := range o.msh.Cells[other].Verts {
			if fverts[v] {
				count++
			}
		}
		if count == len(fverts) {
			return other, nil
		}
	}
	return -1, invErr("cell %d has no neighbor across face %d", cid, fid)
}
