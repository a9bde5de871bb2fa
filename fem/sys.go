// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/godisp/inp"
)

// Sys holds one variable system: an ordered set of nodal (and global scalar)
// unknowns over the mesh, with a deterministic equation numbering and the
// solution vectors attached to it. The primal problem owns the authoritative
// systems; the displaced problem owns shadow systems with identical
// numbering but independent solution storage.
type Sys struct {

	// essential
	Name string    // name of this system; e.g. "nl" or "nl_displaced"
	Msh  *inp.Mesh // shared connectivity and reference coordinates

	// variables and numbering
	Vars     []string // nodal variable keys, in registration order
	ScalVars []string // global scalar variable keys
	Nodes    []*Node  // active nodes length = number of vertices
	Eqs      [][]int  // [nverts][nvars] equation numbers, vertex-major
	ScalEqs  []int    // [nscalvars] equation numbers, after all nodal ones
	Neqs     int      // total number of equations

	// solution vectors
	Sol      []float64 // current solution
	SolOld   []float64 // previous solution
	SolOlder []float64 // solution before previous

	// save/restore stash for mesh update transactions
	savedOld   []float64
	savedOlder []float64
	hasSaved   bool

	// communication
	extraSend func() []int // provider of extra equations to communicate
}

// NewSys returns a new variable system with deterministic vertex-major
// equation numbering: equations of all variables at a vertex are contiguous,
// vertices are visited in id order, and scalar variables come last.
func NewSys(name string, msh *inp.Mesh, vars, scalVars []string) (o *Sys) {
	o = new(Sys)
	o.Name = name
	o.Msh = msh
	o.Vars = vars
	o.ScalVars = scalVars
	o.Nodes = make([]*Node, len(msh.Verts))
	o.Eqs = make([][]int, len(msh.Verts))
	eq := 0
	for _, v := range msh.Verts {
		o.Nodes[v.Id] = NewNode(v)
		o.Eqs[v.Id] = make([]int, len(vars))
		for j, key := range vars {
			o.Eqs[v.Id][j] = eq
			o.Nodes[v.Id].AddDofAndEq(key, eq)
			eq++
		}
	}
	o.ScalEqs = make([]int, len(scalVars))
	for j := range scalVars {
		o.ScalEqs[j] = eq
		eq++
	}
	o.Neqs = eq
	o.Sol = make([]float64, o.Neqs)
	o.SolOld = make([]float64, o.Neqs)
	o.SolOlder = make([]float64, o.Neqs)
	return
}

// HasVar tells whether this system holds the nodal variable with given key
func (o *Sys) HasVar(key string) bool {
	return o.VarIndex(key) >= 0
}

// HasScalVar tells whether this system holds the scalar variable with given key
func (o *Sys) HasScalVar(key string) bool {
	return o.ScalVarIndex(key) >= 0
}

// VarIndex returns the index of the nodal variable with given key, or -1
func (o *Sys) VarIndex(key string) int {
	for j, k := range o.Vars {
		if k == key {
			return j
		}
	}
	return -1
}

// ScalVarIndex returns the index of the scalar variable with given key, or -1
func (o *Sys) ScalVarIndex(key string) int {
	for j, k := range o.ScalVars {
		if k == key {
			return j
		}
	}
	return -1
}

// Eq returns the equation number of variable key at vertex vid, or -1
func (o *Sys) Eq(vid int, key string) int {
	j := o.VarIndex(key)
	if j < 0 {
		return -1
	}
	return o.Eqs[vid][j]
}

// CopySolFrom copies all solution vectors from another system with the same
// numbering. Values are copied, never aliased: subsequent changes to src do
// not show through o.
func (o *Sys) CopySolFrom(src *Sys) (err error) {
	if src.Neqs != o.Neqs {
		return invErr("cannot copy solutions: systems %q and %q have different sizes. %d != %d", src.Name, o.Name, src.Neqs, o.Neqs)
	}
	copy(o.Sol, src.Sol)
	copy(o.SolOld, src.SolOld)
	copy(o.SolOlder, src.SolOlder)
	return
}

// CopySolVec copies an explicit current-solution vector into this system
func (o *Sys) CopySolVec(sol []float64) (err error) {
	if len(sol) != o.Neqs {
		return invErr("cannot copy solution vector into %q: sizes differ. %d != %d", o.Name, len(sol), o.Neqs)
	}
	copy(o.Sol, sol)
	return
}

// PushSol rotates the solution history: older takes old, old takes current
func (o *Sys) PushSol() {
	copy(o.SolOlder, o.SolOld)
	copy(o.SolOld, o.Sol)
}

// SaveOldSolutions stashes the old and older solutions so that a mesh update
// transaction can temporarily overwrite them
func (o *Sys) SaveOldSolutions() {
	if o.savedOld == nil {
		o.savedOld = make([]float64, o.Neqs)
		o.savedOlder = make([]float64, o.Neqs)
	}
	copy(o.savedOld, o.SolOld)
	copy(o.savedOlder, o.SolOlder)
	o.hasSaved = true
}

// RestoreOldSolutions restores the stashed old and older solutions
func (o *Sys) RestoreOldSolutions() (err error) {
	if !o.hasSaved {
		return invErr("cannot restore old solutions of %q: nothing was saved", o.Name)
	}
	copy(o.SolOld, o.savedOld)
	copy(o.SolOlder, o.savedOlder)
	return
}

// SetExtraSendList attaches a provider of extra equation numbers that must
// be communicated to other processors beyond the sparsity-derived ones
func (o *Sys) SetExtraSendList(f func() []int) {
	o.extraSend = f
}

// ExtraSendList returns the extra equations to communicate, or nil
func (o *Sys) ExtraSendList() []int {
	if o.extraSend == nil {
		return nil
	}
	return o.extraSend()
}
