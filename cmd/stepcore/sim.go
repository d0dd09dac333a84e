package main

// Run a segment program against the software board and report what the
// step pins actually did.

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"stepcore/config"
	"stepcore/core"
	"stepcore/planner"
	"stepcore/targets/sim"
)

var (
	simProfile string
	simBudget  int
)

var simCmd = &cobra.Command{
	Use:   "sim <program>",
	Short: "Run a segment program on the simulated board",
	Args:  cobra.ExactArgs(1),
	RunE:  runSim,
}

func init() {
	simCmd.Flags().StringVar(&simProfile, "profile", "", "machine profile YAML (default: reference board)")
	simCmd.Flags().IntVar(&simBudget, "max-ticks", 10_000_000, "tick budget before the run is cut off")
	rootCmd.AddCommand(simCmd)
}

func runSim(cmd *cobra.Command, args []string) error {
	profile := config.Default()
	if simProfile != "" {
		p, err := config.LoadFile(simProfile)
		if err != nil {
			return err
		}
		profile = p
	}

	segments, err := loadProgram(args[0])
	if err != nil {
		return err
	}

	rig := sim.NewRig(profile.Wired())
	core.Init(rig.Hardware(), profile.MotorConfigs())
	queue := planner.NewQueue()
	core.SetPlanner(queue)

	ticks := 0
	for _, s := range segments {
		// The feed ring is smaller than a long program; top it up between
		// bursts of motion the way a G-code mainloop would.
		for queue.Push(s) != nil {
			core.RequestExec()
			rig.C.Drain()
			n := rig.C.Step(256)
			if n == 0 {
				break
			}
			ticks += n
		}
	}
	core.RequestExec()
	rig.C.Drain()
	ticks += rig.C.Run(simBudget - ticks)

	fmt.Printf("profile %s: %d segments, %d ticks (%.3f ms of motion)\n",
		profile.Name, len(segments), ticks, float64(ticks)/core.FrequencyDDA*1000)
	if queue.Dropped > 0 {
		fmt.Printf("dropped %d zero-length segments\n", queue.Dropped)
	}

	for i := 0; i < profile.Wired(); i++ {
		pin := rig.Motors[i].Step
		fmt.Printf("motor %d: %d pulses", i+1, pin.Rises())
		if mean, sigma, ok := edgeIntervalStats(pin.Edges); ok {
			fmt.Printf(", interval mean %.2f ticks sigma %.2f", mean, sigma)
		}
		fmt.Println()
	}
	return nil
}

// edgeIntervalStats summarizes the spacing of a pulse train.
func edgeIntervalStats(edges []int64) (mean, sigma float64, ok bool) {
	if len(edges) < 2 {
		return 0, 0, false
	}
	intervals := make([]float64, len(edges)-1)
	for i := 1; i < len(edges); i++ {
		intervals[i-1] = float64(edges[i] - edges[i-1])
	}
	mean = stat.Mean(intervals, nil)
	sigma = math.Sqrt(stat.Variance(intervals, nil))
	return mean, sigma, true
}
