// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/godisp/inp"

// Dof holds information about one degree-of-freedom
type Dof struct {
	Key string // name of this dof; e.g. "ux"
	Eq  int    // equation number
}

// String returns the string representation of a Dof
func (o *Dof) String() string {
	return o.Key + " "
}

// Node holds the degrees-of-freedom attached to one vertex
type Node struct {
	Dofs []*Dof    // degrees-of-freedom
	Vert *inp.Vert // pointer to vertex
}

// NewNode returns a new node
func NewNode(v *inp.Vert) *Node {
	return &Node{Vert: v}
}

// AddDofAndEq adds a new dof with its equation number to the node.
// Repeated keys are ignored.
func (o *Node) AddDofAndEq(key string, eq int) {
	for _, dof := range o.Dofs {
		if dof.Key == key {
			return
		}
	}
	o.Dofs = append(o.Dofs, &Dof{key, eq})
}

// GetDof returns the dof with given key, or nil
func (o *Node) GetDof(key string) *Dof {
	for _, dof := range o.Dofs {
		if dof.Key == key {
			return dof
		}
	}
	return nil
}

// GetEq returns the equation number of the dof with given key, or -1
func (o *Node) GetEq(key string) int {
	if dof := o.GetDof(key); dof != nil {
		return dof.Eq
	}
	return -1
}
