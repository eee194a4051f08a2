// Command hrv-plot renders the raw and cleaned RR series from a recorded
// heart-monitor log as a PNG, to eyeball what the artifact filter rejects.
package main

import (
	"bufio"
	"flag"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pulse.report/internal/hrv"
	"github.com/banshee-data/pulse.report/internal/serialmux"
)

func main() {
	input := flag.String("i", "sample.hrlog", "input log path")
	output := flag.String("o", "rr_cleaning.png", "output PNG path")
	flag.Parse()

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("failed to open input: %v", err)
	}
	defer f.Close()

	var raw []float64
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		if serialmux.IsStatusLine(scan.Text()) {
			continue
		}
		sample, err := serialmux.ParseSampleLine(scan.Text())
		if err != nil {
			log.Printf("skipping line: %v", err)
			continue
		}
		raw = append(raw, sample.RRIntervalsMs...)
	}
	if err := scan.Err(); err != nil {
		log.Fatalf("read failed: %v", err)
	}
	if len(raw) == 0 {
		log.Fatal("no RR intervals found in input")
	}

	cleaned := hrv.CleanRR(raw)
	log.Printf("%d raw intervals, %d after cleaning", len(raw), len(cleaned))

	p := plot.New()
	p.Title.Text = "RR intervals: raw vs cleaned"
	p.X.Label.Text = "beat index"
	p.Y.Label.Text = "RR (ms)"

	rawPts := make(plotter.XYs, len(raw))
	for i, v := range raw {
		rawPts[i] = plotter.XY{X: float64(i), Y: v}
	}
	cleanPts := make(plotter.XYs, len(cleaned))
	for i, v := range cleaned {
		cleanPts[i] = plotter.XY{X: float64(i), Y: v}
	}

	rawLine, err := plotter.NewLine(rawPts)
	if err != nil {
		log.Fatalf("failed to build raw series: %v", err)
	}
	rawLine.Color = color.RGBA{R: 200, G: 80, B: 80, A: 255}

	cleanLine, err := plotter.NewLine(cleanPts)
	if err != nil {
		log.Fatalf("failed to build cleaned series: %v", err)
	}
	cleanLine.Color = color.RGBA{R: 60, G: 120, B: 220, A: 255}

	p.Add(rawLine, cleanLine)
	p.Legend.Add("raw", rawLine)
	p.Legend.Add("cleaned", cleanLine)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, *output); err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}
	log.Printf("✓ Created: %s", *output)
}
