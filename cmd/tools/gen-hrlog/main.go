// Command gen-hrlog generates synthetic heart-monitor logs for testing
// replay and the dev-mode pipeline. Output is CSV in the device wire format
// (`uptime,hr,rr;rr;...`), one report per second, following a simple
// three-state emotional script: calm, stressed, amused.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/banshee-data/pulse.report/internal/units"
)

type state struct {
	name     string
	baseHR   float64
	hrWobble float64
	// rrJitterMs scales beat-to-beat variability: high when calm,
	// suppressed under stress.
	rrJitterMs float64
}

var script = []state{
	{name: "calm", baseHR: 62, hrWobble: 3, rrJitterMs: 45},
	{name: "stressed", baseHR: 95, hrWobble: 6, rrJitterMs: 12},
	{name: "amused", baseHR: 78, hrWobble: 5, rrJitterMs: 30},
}

func main() {
	output := flag.String("o", "sample.hrlog", "output path")
	seconds := flag.Int("n", 180, "seconds of data to generate")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(*seed))
	perState := *seconds / len(script)

	for i := 0; i < *seconds; i++ {
		st := script[min(i/max(perState, 1), len(script)-1)]

		hr := st.baseHR + st.hrWobble*math.Sin(float64(i)/10.0) + rng.NormFloat64()
		baseRR := units.RRMsFromBPM(hr)

		// Each one-second report carries the beats that fit in it.
		line := fmt.Sprintf("%d,%.0f,", i, hr)
		beats := int(math.Max(1, hr/60.0))
		for b := 0; b < beats; b++ {
			if b > 0 {
				line += ";"
			}
			rr := baseRR + rng.NormFloat64()*st.rrJitterMs
			line += fmt.Sprintf("%.0f", rr)
		}

		if _, err := fmt.Fprintln(f, line); err != nil {
			log.Fatalf("write failed: %v", err)
		}

		if (i+1)%60 == 0 {
			log.Printf("%d/%d seconds (%s)", i+1, *seconds, st.name)
		}
	}
	log.Printf("✓ Created: %s", *output)
}
