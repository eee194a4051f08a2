package serialmux

import (
	"fmt"
	"strconv"
	"strings"
)

// SampleLine is one parsed measurement report from the device. The wire
// format is `uptime,hr,rr;rr;...`: device uptime in seconds, heart rate in
// BPM, then the RR intervals (milliseconds) observed since the previous
// report, semicolon-separated.
type SampleLine struct {
	UptimeSec     float64
	HR            float64
	RRIntervalsMs []float64
}

// IsStatusLine reports whether a payload is a JSON status report rather
// than a measurement. Status lines are informational and not parsed here.
func IsStatusLine(payload string) bool {
	return strings.HasPrefix(strings.TrimSpace(payload), "{")
}

// ParseSampleLine parses one measurement report.
func ParseSampleLine(line string) (SampleLine, error) {
	segments := strings.Split(strings.TrimSpace(line), ",")
	if len(segments) != 3 {
		return SampleLine{}, fmt.Errorf("invalid payload format: %q, expected 3 segments", line)
	}

	uptime, err := strconv.ParseFloat(segments[0], 64)
	if err != nil {
		return SampleLine{}, fmt.Errorf("failed to parse uptime: %w", err)
	}

	hr, err := strconv.ParseFloat(segments[1], 64)
	if err != nil {
		return SampleLine{}, fmt.Errorf("failed to parse heart rate: %w", err)
	}

	var rr []float64
	if segments[2] != "" {
		for _, field := range strings.Split(segments[2], ";") {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return SampleLine{}, fmt.Errorf("failed to parse RR interval %q: %w", field, err)
			}
			rr = append(rr, v)
		}
	}

	return SampleLine{UptimeSec: uptime, HR: hr, RRIntervalsMs: rr}, nil
}
