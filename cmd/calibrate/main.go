// Package main fits the field law's threshold and blend constants to a
// target single-ball look with CMA-ES.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/metaballs/config"
)

// evalRow is one line of calibrate_log.csv.
type evalRow struct {
	Eval               int     `csv:"eval"`
	Loss               float64 `csv:"loss"`
	Edge               float64 `csv:"edge"`
	Core               float64 `csv:"core"`
	Peak               float64 `csv:"peak"`
	Halo               float64 `csv:"halo"`
	ThresholdScale     float64 `csv:"threshold_scale"`
	CoreEdge           float64 `csv:"core_edge"`
	CoreWidth          float64 `csv:"core_width"`
	CoreWeight         float64 `csv:"core_weight"`
	HaloWeight         float64 `csv:"halo_weight"`
	BrightnessExponent float64 `csv:"brightness_exponent"`
}

// formatDuration formats a duration as MM:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%dm%02ds", m, d/time.Second)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	edge := flag.Float64("edge", 2.0, "Target visible edge in radii")
	core := flag.Float64("core", 1.0, "Target core edge in radii")
	peak := flag.Float64("peak", 0.9, "Target centre opacity")
	halo := flag.Float64("halo", 0.35, "Target opacity halfway between core and edge")
	maxEvals := flag.Int("max-evals", 400, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	params := NewParamVector()
	target := Target{Edge: *edge, Core: *core, Peak: *peak, Halo: *halo}
	evaluator := NewFitnessEvaluator(params, baseCfg.Derived.Law, target,
		[]float64{20, 40, 80}, baseCfg.Render.Threshold, baseCfg.Render.Glow)

	dim := params.Dim()
	initX := params.Normalize(params.Extract(baseCfg.Derived.Law))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation
	}

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestLoss := invalidPenalty
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			loss := evaluator.Evaluate(raw)
			evalCount++
			if loss < bestLoss {
				bestLoss = loss
				bestParams = raw
			}

			m := evaluator.LastMetrics()
			row := []evalRow{{
				Eval: evalCount, Loss: loss,
				Edge: m.Edge, Core: m.Core, Peak: m.Peak, Halo: m.Halo,
				ThresholdScale: raw[0], CoreEdge: raw[1], CoreWidth: raw[2],
				CoreWeight: raw[3], HaloWeight: raw[4], BrightnessExponent: raw[5],
			}}
			write := gocsv.MarshalWithoutHeaders
			if evalCount == 1 {
				write = gocsv.Marshal
			}
			if err := write(row, logFile); err != nil {
				log.Printf("failed to log evaluation: %v", err)
			}

			if evalCount%20 == 0 {
				fmt.Printf("Eval %d/%d: loss=%.5f edge=%.2f core=%.2f peak=%.2f (best=%.5f) | elapsed: %s\n",
					evalCount, *maxEvals, loss, m.Edge, m.Core, m.Peak, bestLoss,
					formatDuration(time.Since(startTime)))
			}
			return loss
		},
	}

	fmt.Printf("Calibrating %s law: %d parameters, population=%d, max_evals=%d\n",
		baseCfg.Derived.Law.Model, dim, popSize, *maxEvals)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("calibration ended: %v", err)
	}
	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best loss: %.6f\n", bestLoss)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, bestParams[i])
	}

	bestLaw := params.Apply(baseCfg.Derived.Law, bestParams)
	m := Measure(bestLaw, 40, baseCfg.Render.Threshold, baseCfg.Render.Glow)
	fmt.Printf("\nMeasured at r=40: edge=%.3f core=%.3f peak=%.3f halo=%.3f\n", m.Edge, m.Core, m.Peak, m.Halo)

	// Save best config
	bestCfg, _ := config.Load(*configPath)
	f := &bestCfg.Field
	f.ThresholdScale = bestLaw.ThresholdScale
	f.InverseThresholdScale = bestLaw.InverseThresholdScale
	f.CoreEdge = bestLaw.CoreEdge
	f.CoreWidth = bestLaw.CoreWidth
	f.CoreWeight = bestLaw.CoreWeight
	f.HaloWeight = bestLaw.HaloWeight
	f.BrightnessExponent = bestLaw.BrightnessExponent

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
