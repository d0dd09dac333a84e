package main

// Stream a segment program to a controller board over a serial link.

import (
	"fmt"

	"github.com/spf13/cobra"

	"stepcore/host"
)

var (
	streamDevice string
	streamBaud   int
)

var streamCmd = &cobra.Command{
	Use:   "stream <program>",
	Short: "Send a segment program over a serial link",
	Args:  cobra.ExactArgs(1),
	RunE:  runStream,
}

func init() {
	streamCmd.Flags().StringVar(&streamDevice, "device", "/dev/ttyACM0", "serial device path")
	streamCmd.Flags().IntVar(&streamBaud, "baud", 250000, "baud rate (ignored for USB CDC)")
	rootCmd.AddCommand(streamCmd)
}

func runStream(cmd *cobra.Command, args []string) error {
	segments, err := loadProgram(args[0])
	if err != nil {
		return err
	}

	cfg := host.DefaultLinkConfig(streamDevice)
	cfg.Baud = streamBaud
	port, err := host.Open(cfg)
	if err != nil {
		return err
	}
	link := host.NewLink(port)
	defer link.Close()

	if err := link.SendAll(segments); err != nil {
		return err
	}
	fmt.Printf("sent %d segments to %s\n", link.Sent, streamDevice)
	return nil
}
