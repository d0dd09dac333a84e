package main

// Segment program files: one segment per line.
//
//	line <s1> <s2> <s3> <s4> <s5> <s6> <microseconds>
//	dwell <microseconds>
//
// Blank lines and #-comments are skipped.

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"stepcore/core"
	"stepcore/planner"
)

func loadProgram(path string) ([]planner.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open program")
	}
	defer f.Close()

	var segments []planner.Segment
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "line":
			if len(fields) != core.Motors+2 {
				return nil, errors.Errorf("line %d: want %d step values and a duration",
					lineNo, core.Motors)
			}
			var steps [core.Motors]float64
			for i := 0; i < core.Motors; i++ {
				steps[i], err = strconv.ParseFloat(fields[1+i], 64)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d: step value %q", lineNo, fields[1+i])
				}
			}
			us, err := strconv.ParseFloat(fields[core.Motors+1], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: duration %q", lineNo, fields[core.Motors+1])
			}
			segments = append(segments, planner.Line(steps, us))
		case "dwell":
			if len(fields) != 2 {
				return nil, errors.Errorf("line %d: dwell takes one duration", lineNo)
			}
			us, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: duration %q", lineNo, fields[1])
			}
			segments = append(segments, planner.Dwell(us))
		default:
			return nil, errors.Errorf("line %d: unknown segment kind %q", lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read program")
	}
	return segments, nil
}
