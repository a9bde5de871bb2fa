// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// TagRegistry holds the named global assembly targets: tagged residual
// vectors and tagged Jacobian matrices. There is exactly one registry per
// simulation, owned by the primal problem; the displaced problem delegates
// every tag operation to it, so tag ids and names are identical on both and
// contributions from either geometry accumulate into the same storage.
type TagRegistry struct {

	// vectors
	vecNames  []string
	vecByName map[string]int
	vecs      [][]float64

	// matrices
	matNames  []string
	matByName map[string]int
	mats      []*la.Triplet

	// allocation data
	neq   int // number of equations
	nzmax int // maximum number of non-zeros for matrices
}

// NewTagRegistry returns a new registry allocating vectors with neq entries
// and matrices with space for nzmax non-zeros
func NewTagRegistry(neq, nzmax int) *TagRegistry {
	return &TagRegistry{
		vecByName: make(map[string]int),
		matByName: make(map[string]int),
		neq:       neq,
		nzmax:     nzmax,
	}
}

// AddVectorTag registers (or finds) a tagged residual vector and returns its
// id. Ids are dense and assigned in registration order.
func (o *TagRegistry) AddVectorTag(name string) (id int) {
	if id, ok := o.vecByName[name]; ok {
		return id
	}
	id = len(o.vecNames)
	o.vecByName[name] = id
	o.vecNames = append(o.vecNames, name)
	o.vecs = append(o.vecs, make([]float64, o.neq))
	return
}

// AddMatrixTag registers (or finds) a tagged Jacobian matrix and returns its id
func (o *TagRegistry) AddMatrixTag(name string) (id int) {
	if id, ok := o.matByName[name]; ok {
		return id
	}
	id = len(o.matNames)
	o.matByName[name] = id
	o.matNames = append(o.matNames, name)
	t := new(la.Triplet)
	t.Init(o.neq, o.neq, o.nzmax)
	o.mats = append(o.mats, t)
	return
}

// VectorTagID returns the id of the tagged vector with given name
func (o *TagRegistry) VectorTagID(name string) (id int, err error) {
	id, ok := o.vecByName[name]
	if !ok {
		err = confErr("vector tag", name)
	}
	return
}

// MatrixTagID returns the id of the tagged matrix with given name
func (o *TagRegistry) MatrixTagID(name string) (id int, err error) {
	id, ok := o.matByName[name]
	if !ok {
		err = confErr("matrix tag", name)
	}
	return
}

// VectorTagName returns the name of the tagged vector with given id
func (o *TagRegistry) VectorTagName(id int) (name string, err error) {
	if id < 0 || id >= len(o.vecNames) {
		return "", confErr("vector tag", io.Sf("#%d", id))
	}
	return o.vecNames[id], nil
}

// MatrixTagName returns the name of the tagged matrix with given id
func (o *TagRegistry) MatrixTagName(id int) (name string, err error) {
	if id < 0 || id >= len(o.matNames) {
		return "", confErr("matrix tag", io.Sf("#%d", id))
	}
	return o.matNames[id], nil
}

// VectorTagExists tells whether a tagged vector with given name exists
func (o *TagRegistry) VectorTagExists(name string) bool {
	_, ok := o.vecByName[name]
	return ok
}

// MatrixTagExists tells whether a tagged matrix with given name exists
func (o *TagRegistry) MatrixTagExists(name string) bool {
	_, ok := o.matByName[name]
	return ok
}

// NumVectorTags returns the number of tagged vectors
func (o *TagRegistry) NumVectorTags() int {
	return len(o.vecNames)
}

// NumMatrixTags returns the number of tagged matrices
func (o *TagRegistry) NumMatrixTags() int {
	return len(o.matNames)
}

// Vec returns the storage of the tagged vector with given id
func (o *TagRegistry) Vec(id int) (v []float64, err error) {
	if id < 0 || id >= len(o.vecs) {
		return nil, confErr("vector tag", io.Sf("#%d", id))
	}
	return o.vecs[id], nil
}

// Mat returns the storage of the tagged matrix with given id
func (o *TagRegistry) Mat(id int) (m *la.Triplet, err error) {
	if id < 0 || id >= len(o.mats) {
		return nil, confErr("matrix tag", io.Sf("#%d", id))
	}
	return o.mats[id], nil
}

// ZeroVec zeroes the tagged vector with given id
func (o *TagRegistry) ZeroVec(id int) (err error) {
	v, err := o.Vec(id)
	if err != nil {
		return
	}
	la.Vector(v).Fill(0)
	return
}

// ZeroMat restarts the tagged matrix with given id
func (o *TagRegistry) ZeroMat(id int) (err error) {
	m, err := o.Mat(id)
	if err != nil {
		return
	}
	m.Start()
	return
}
