// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// register shapes
func init() {

	// lin2
	lin2 := &Shape{
		Type:   "lin2",
		Gndim:  1,
		Nverts: 2,
		NatCoords: [][]float64{
			{-1, 1},
		},
	}
	lin2.Func = func(S []float64, dSdR [][]float64, r []float64, derivs bool, idxface int) {
		S[0] = 0.5 * (1.0 - r[0])
		S[1] = 0.5 * (1.0 + r[0])
		if !derivs {
			return
		}
		dSdR[0][0] = -0.5
		dSdR[1][0] = 0.5
	}
	lin2.init_scratchpad()
	factory["lin2"] = lin2

	// tri3
	tri3 := &Shape{
		Type:          "tri3",
		FaceType:      "lin2",
		Gndim:         2,
		Nverts:        3,
		FaceNvertsMax: 2,
		FaceLocalVerts: [][]int{
			{0, 1}, {1, 2}, {2, 0},
		},
		NatCoords: [][]float64{
			{0, 1, 0},
			{0, 0, 1},
		},
	}
	tri3.Func = func(S []float64, dSdR [][]float64, r []float64, derivs bool, idxface int) {
		S[0] = 1.0 - r[0] - r[1]
		S[1] = r[0]
		S[2] = r[1]
		if !derivs {
			return
		}
		dSdR[0][0], dSdR[0][1] = -1.0, -1.0
		dSdR[1][0], dSdR[1][1] = 1.0, 0.0
		dSdR[2][0], dSdR[2][1] = 0.0, 1.0
	}
	tri3.FaceFunc = lin2.Func
	tri3.init_scratchpad()
	factory["tri3"] = tri3

	// qua4
	qua4 := &Shape{
		Type:          "qua4",
		FaceType:      "lin2",
		Gndim:         2,
		Nverts:        4,
		FaceNvertsMax: 2,
		FaceLocalVerts: [][]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0},
		},
		NatCoords: [][]float64{
			{-1, 1, 1, -1},
			{-1, -1, 1, 1},
		},
	}
	qua4.Func = func(S []float64, dSdR [][]float64, r []float64, derivs bool, idxface int) {
		s, t := r[0], r[1]
		S[0] = 0.25 * (1.0 - s) * (1.0 - t)
		S[1] = 0.25 * (1.0 + s) * (1.0 - t)
		S[2] = 0.25 * (1.0 + s) * (1.0 + t)
		S[3] = 0.25 * (1.0 - s) * (1.0 + t)
		if !derivs {
			return
		}
		dSdR[0][0], dSdR[0][1] = -0.25*(1.0-t), -0.25*(1.0-s)
		dSdR[1][0], dSdR[1][1] = 0.25*(1.0-t), -0.25*(1.0+s)
		dSdR[2][0], dSdR[2][1] = 0.25*(1.0+t), 0.25*(1.0+s)
		dSdR[3][0], dSdR[3][1] = -0.25*(1.0+t), 0.25*(1.0-s)
	}
	qua4.FaceFunc = lin2.Func
	qua4.init_scratchpad()
	factory["qua4"] = qua4
}
