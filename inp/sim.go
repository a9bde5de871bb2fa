// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data structures: simulation, mesh and functions
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
)

// Data holds global data for simulations
type Data struct {
	Desc      string `json:"desc"`      // description of simulation
	Mshfile   string `json:"mshfile"`   // file path of file with mesh data
	DirOut    string `json:"dirout"`    // directory for output; e.g. /tmp/godisp
	Nworkers  int    `json:"nworkers"`  // number of workers for node passes; 0 => number of CPUs
	Transient bool   `json:"transient"` // transient simulation
	ShowR     bool   `json:"showr"`     // show residuals
}

// SearchData holds geometric search settings
type SearchData struct {
	Ndiv int     `json:"ndiv"` // number of divisions for bins; 0 => default
	Tol  float64 `json:"tol"`  // tolerance to compare coordinates; 0 => default
}

// VarData holds the definition of one solution variable
type VarData struct {
	Name   string `json:"name"`   // variable name; e.g. "ux"
	Aux    bool   `json:"aux"`    // variable belongs to the auxiliary system
	Scalar bool   `json:"scalar"` // variable is a single global unknown, not a nodal field
}

// FuncData holds function definition
type FuncData struct {
	Name string     `json:"name"` // name of function. ex: zero, load, myfunction1, etc.
	Type string     `json:"type"` // type of function. ex: cte, rmp
	Prms dbf.Params `json:"prms"` // parameters
}

// FuncsData holds functions
type FuncsData []*FuncData

// Get returns function by name
func (o FuncsData) Get(name string) (fcn dbf.T, err error) {
	if name == "zero" || name == "none" {
		fcn = &dbf.Zero
		return
	}
	for _, f := range o {
		if f.Name == name {
			fcn = dbf.New(f.Type, f.Prms)
			return
		}
	}
	err = chk.Err("cannot find function named %q\n", name)
	return
}

// Simulation holds all simulation input data
type Simulation struct {

	// input
	Data          Data       `json:"data"`          // stores global simulation data
	Variables     []*VarData `json:"variables"`     // solution variables of primal and displaced systems
	Displacements []string   `json:"displacements"` // displacement field: ordered variable names, at most one per spatial dimension
	Search        SearchData `json:"search"`        // geometric search settings
	Functions     FuncsData  `json:"functions"`     // all functions used to drive solution fields

	// derived
	GoroutineId int    // id of goroutine to avoid race problems
	Key         string // simulation key; e.g. mysim01
	DirOut      string // output directory
	Ndim        int    // space dimension
	Msh         *Mesh  // the mesh
}

// ReadSim reads simulation file and sets derived quantities
//  Note: returns nil on errors
func ReadSim(simfilepath string, erasePrev bool, goroutineId int) (o *Simulation, err error) {

	// new sim
	o = new(Simulation)
	o.GoroutineId = goroutineId

	// read file
	b := io.ReadFile(simfilepath)

	// decode
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("ReadSim: cannot unmarshal simulation file %q", simfilepath)
	}

	// input directory and filename key
	dir := filepath.Dir(simfilepath)
	fn := filepath.Base(simfilepath)
	o.Key = io.FnKey(fn)

	// output directory
	o.DirOut = o.Data.DirOut
	if o.DirOut == "" {
		o.DirOut = "/tmp/godisp/" + o.Key
	}
	err = os.MkdirAll(o.DirOut, 0777)
	if err != nil {
		return nil, chk.Err("cannot create directory for output results (%s): %v", o.DirOut, err)
	}

	// erase previous simulation results
	if erasePrev {
		io.RemoveAll(io.Sf("%s/%s*", o.DirOut, o.Key))
	}

	// read mesh
	o.Msh, err = ReadMsh(dir, o.Data.Mshfile, goroutineId)
	if err != nil {
		return nil, chk.Err("ReadSim: cannot read mesh file:\n%v", err)
	}
	o.Ndim = o.Msh.Ndim

	// check displacement field
	if len(o.Displacements) > o.Ndim {
		return nil, chk.Err("ReadSim: number of displacement variables must not exceed the space dimension. %d > %d", len(o.Displacements), o.Ndim)
	}
	return
}
