// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_shp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shp01. partition of unity and Kronecker property")

	for _, geoType := range []string{"lin2", "tri3", "qua4"} {

		// shape and identity mapping: x equals natural coordinates
		o := Get(geoType, 1)
		if o == nil {
			tst.Errorf("cannot get %q shape\n", geoType)
			return
		}
		x := o.NatCoords

		// partition of unity at integration points
		ips, _, err := o.GetIps(0, 0)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		for _, ip := range ips {
			err = o.CalcAtIp(x, ip, true)
			if err != nil {
				tst.Errorf("test failed:\n%v", err)
				return
			}
			sum := 0.0
			for _, s := range o.S {
				sum += s
			}
			chk.Float64(tst, io.Sf("%s: sum(S)", geoType), 1e-15, sum, 1)
			for j := 0; j < o.Gndim; j++ {
				sum = 0.0
				for n := 0; n < o.Nverts; n++ {
					sum += o.DSdR[n][j]
				}
				chk.Float64(tst, io.Sf("%s: sum(dSdR[%d])", geoType, j), 1e-14, sum, 0)
			}
		}

		// Kronecker property at nodes
		r := make([]float64, 3)
		for m := 0; m < o.Nverts; m++ {
			for j := 0; j < o.Gndim; j++ {
				r[j] = o.NatCoords[j][m]
			}
			err = o.CalcAtR(x, r, false)
			if err != nil {
				tst.Errorf("test failed:\n%v", err)
				return
			}
			for n := 0; n < o.Nverts; n++ {
				d := 0.0
				if m == n {
					d = 1.0
				}
				chk.Float64(tst, io.Sf("%s: S%d(node %d)", geoType, n, m), 1e-15, o.S[n], d)
			}
		}
	}
}

func Test_shp02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shp02. inverse mapping on distorted cells")

	type tcase struct {
		geoType string
		x       [][]float64
		rref    []float64
	}
	for _, tc := range []tcase{
		{"tri3", [][]float64{{0, 2, 0}, {0, 0, 3}}, []float64{0.25, 0.3}},
		{"qua4", [][]float64{{0, 2, 2.5, 0}, {0, 0, 1.5, 2}}, []float64{0.2, -0.4}},
	} {

		// real coordinates of the reference point
		o := Get(tc.geoType, 1)
		r := make([]float64, 3)
		copy(r, tc.rref)
		err := o.CalcAtR(tc.x, r, false)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		y := make([]float64, 2)
		for i := 0; i < 2; i++ {
			for n := 0; n < o.Nverts; n++ {
				y[i] += o.S[n] * tc.x[i][n]
			}
		}

		// inverse mapping must recover the reference point
		rout := make([]float64, 3)
		err = o.InvMap(rout, y, tc.x)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		chk.Array(tst, tc.geoType+": r", 1e-9, rout[:2], tc.rref)
		if !o.Contains(rout, 1e-8) {
			tst.Errorf("%s: point %v must be contained\n", tc.geoType, y)
		}
	}
}

func Test_shp03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shp03. integration rules and face normals")

	// weights of default rules cover the reference domains
	for _, tc := range []struct {
		geoType string
		area    float64
	}{
		{"lin2", 2},
		{"tri3", 0.5},
		{"qua4", 4},
	} {
		o := Get(tc.geoType, 1)
		ips, _, err := o.GetIps(0, 0)
		if err != nil {
			tst.Errorf("test failed:\n%v", err)
			return
		}
		sum := 0.0
		for _, ip := range ips {
			sum += ip[3]
		}
		chk.Float64(tst, tc.geoType+": sum(w)", 1e-15, sum, tc.area)
	}

	// unknown rule
	o := Get("qua4", 1)
	_, _, err := o.GetIps(7, 0)
	if err == nil {
		tst.Errorf("request of unknown integration rule must fail\n")
		return
	}

	// outward normal on the bottom face of the reference square
	_, ipsFace, err := o.GetIps(0, 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	err = o.CalcAtFaceIp(o.NatCoords, ipsFace[0], 0)
	if err != nil {
		tst.Errorf("test failed:\n%v", err)
		return
	}
	chk.Array(tst, "qua4: Fnvec(bottom)", 1e-15, o.Fnvec, []float64{0, -1})
}
