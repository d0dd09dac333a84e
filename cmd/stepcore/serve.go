package main

// Serve live telemetry while a program runs on the simulated board. Useful
// for exercising dashboards without a machine on the bench.

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stepcore/config"
	"stepcore/core"
	"stepcore/host"
	"stepcore/planner"
	"stepcore/targets/sim"
)

var (
	serveAddr     string
	serveInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve <program>",
	Short: "Run a program on the simulated board and serve telemetry",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8716", "listen address for /status websocket")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 250*time.Millisecond, "snapshot interval")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	segments, err := loadProgram(args[0])
	if err != nil {
		return err
	}

	profile := config.Default()
	rig := sim.NewRig(profile.Wired())
	core.Init(rig.Hardware(), profile.MotorConfigs())
	queue := planner.NewQueue()
	core.SetPlanner(queue)

	go func() {
		// Pace the simulated board at roughly wall-clock DDA rate so the
		// snapshots have something to watch.
		for _, s := range segments {
			for queue.Push(s) != nil {
				rig.C.Step(core.FrequencyDDA / 100)
				time.Sleep(10 * time.Millisecond)
			}
			core.RequestExec()
			rig.C.Drain()
		}
		for rig.C.Step(core.FrequencyDDA/100) > 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}()

	fmt.Printf("serving telemetry on %s/status\n", serveAddr)
	return host.Serve(serveAddr, host.NewTelemetry(serveInterval))
}
