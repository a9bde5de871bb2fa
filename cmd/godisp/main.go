// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// godisp runs displaced geometry scenarios described by YAML files
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"

	"github.com/cpmech/godisp/fem"
	"github.com/cpmech/godisp/inp"
)

// Scenario holds the parameters of one displaced geometry run
type Scenario struct {
	Title    string      `yaml:"Title"`
	SimFile  string      `yaml:"SimFile"`
	Steps    int         `yaml:"Steps"`
	Function string      `yaml:"Function"`
	Points   [][]float64 `yaml:"Points"` // point sources to track
}

// Parse decodes a YAML scenario
func (s *Scenario) Parse(data []byte) error {
	return yaml.Unmarshal(data, s)
}

// Print shows the scenario parameters
func (s *Scenario) Print() {
	fmt.Printf("\"%s\"\t= Title\n", s.Title)
	fmt.Printf("[%s]\t= SimFile\n", s.SimFile)
	fmt.Printf("[%d]\t\t= Steps\n", s.Steps)
	fmt.Printf("[%s]\t= Function\n", s.Function)
	fmt.Printf("%v\t= Points\n", s.Points)
}

var rootCmd = &cobra.Command{
	Use:   "godisp",
	Short: "Displaced geometry synchronisation runner",
	Long: `
Reads a simulation file, builds the primal and displaced problems and drives
the displacement field through a scenario, keeping both geometries in sync.`,
	Run: func(cmd *cobra.Command, args []string) {
		scnFile, err := cmd.Flags().GetString("scenario")
		if err != nil {
			panic(err)
		}
		scn := processInput(scnFile)
		runScenario(scn)
	},
}

func processInput(scnFile string) (scn *Scenario) {
	scn = &Scenario{Steps: 10, Function: "load"}
	if len(scnFile) == 0 {
		err := fmt.Errorf("must supply a scenario file (-s, --scenario) in YAML format")
		fmt.Println(err)
		os.Exit(1)
	}
	data, err := ioutil.ReadFile(scnFile)
	if err != nil {
		fmt.Printf("unable to read scenario file %q: %v\n", scnFile, err)
		os.Exit(1)
	}
	if err = scn.Parse(data); err != nil {
		fmt.Printf("unable to parse scenario file %q: %v\n", scnFile, err)
		os.Exit(1)
	}
	scn.Print()
	return
}

func runScenario(scn *Scenario) {

	// simulation and problems
	sim, err := inp.ReadSim(scn.SimFile, true, 0)
	if err != nil {
		panic(err)
	}
	prim, err := fem.NewPrimal(sim)
	if err != nil {
		panic(err)
	}
	dp, err := fem.NewDisplaced(prim)
	if err != nil {
		panic(err)
	}
	if err = dp.Init(); err != nil {
		panic(err)
	}

	// point sources to track across geometry changes
	for _, y := range scn.Points {
		cid, err := dp.Dirac().AddPoint(y)
		if err != nil {
			panic(err)
		}
		fmt.Printf("point %v starts in cell %d\n", y, cid)
	}

	// displacement amplitude function
	fcn, err := sim.Functions.Get(scn.Function)
	if err != nil {
		panic(err)
	}

	// drive a stretch of the geometry
	sys := prim.System()
	sol := make([]float64, sys.Neqs)
	dt := 1.0 / float64(scn.Steps)
	for i := 0; i <= scn.Steps; i++ {
		t := dt * float64(i)
		amp := fcn.F(t, nil) * t
		for _, v := range sim.Msh.Verts {
			for j, name := range sim.Displacements {
				sol[sys.Eq(v.Id, name)] = amp * v.C[j]
			}
		}
		if err = prim.SetSolution(sol); err != nil {
			panic(err)
		}
		prim.PushSolutions()
		if err = dp.UpdateMesh(); err != nil {
			panic(err)
		}
		fmt.Printf("t=%6.3f  amp=%6.3f  cells with point sources: %v\n", t, amp, dp.Dirac().Elements())
	}
	fmt.Printf("%v\n", dp)
}

func main() {
	rootCmd.Flags().StringP("scenario", "s", "", "YAML file describing the scenario:\n\t- SimFile\n\t- Steps\n\t- Function\n\t- Points")
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
