// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// ipkey assembles the key of the integration points table
func ipkey(geoType string, nip int) string {
	return io.Sf("%s_%d", geoType, nip)
}

// Ipoint holds integration point data: {r, s, t, weight}
type Ipoint []float64

// integration point tables. key => "type_nip"
var ipsfactory = map[string][]Ipoint{}

// init integration point tables
func init() {

	g := 1.0 / math.Sqrt(3.0)

	// lin2
	ipsfactory["lin2_2"] = []Ipoint{
		{-g, 0, 0, 1},
		{g, 0, 0, 1},
	}

	// tri3
	ipsfactory["tri3_1"] = []Ipoint{
		{1.0 / 3.0, 1.0 / 3.0, 0, 1.0 / 2.0},
	}
	ipsfactory["tri3_3"] = []Ipoint{
		{1.0 / 6.0, 1.0 / 6.0, 0, 1.0 / 6.0},
		{2.0 / 3.0, 1.0 / 6.0, 0, 1.0 / 6.0},
		{1.0 / 6.0, 2.0 / 3.0, 0, 1.0 / 6.0},
	}

	// qua4
	ipsfactory["qua4_1"] = []Ipoint{
		{0, 0, 0, 4},
	}
	ipsfactory["qua4_4"] = []Ipoint{
		{-g, -g, 0, 1},
		{g, -g, 0, 1},
		{g, g, 0, 1},
		{-g, g, 0, 1},
	}
}

// defaultNips holds the default number of integration points per type
var defaultNips = map[string]int{
	"lin2": 2,
	"tri3": 3,
	"qua4": 4,
}

// GetIps returns the integration points of the element and of its faces
//  Input:
//   nip  -- number of integration points of element; 0 => default
//   nipf -- number of integration points of faces; 0 => default
func (o *Shape) GetIps(nip, nipf int) (ipsElem, ipsFace []Ipoint, err error) {

	// element
	if nip == 0 {
		nip = defaultNips[o.Type]
	}
	var ok bool
	ipsElem, ok = ipsfactory[ipkey(o.Type, nip)]
	if !ok {
		return nil, nil, chk.Err("cannot find integration points for %q with nip=%d", o.Type, nip)
	}

	// faces
	if o.Gndim == 1 {
		return
	}
	if nipf == 0 {
		nipf = defaultNips[o.FaceType]
	}
	ipsFace, ok = ipsfactory[ipkey(o.FaceType, nipf)]
	if !ok {
		return nil, nil, chk.Err("cannot find integration points for face %q with nipf=%d", o.FaceType, nipf)
	}
	return
}
