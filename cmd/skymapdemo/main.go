package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bayestar/skymap"
	"github.com/bayestar/skymap/internal/transform"
)

// standardSites approximates the geocentric locations, in meters, of
// three widely separated ground-based interferometers.
func standardSites() [3][3]float64 {
	return [3][3]float64{
		{-2161414.9, -3834695.2, 4600350.2},
		{-74276.0, -5496283.7, 3224257.2},
		{4546374.1, 842989.7, 4378576.9},
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	gmst := transform.GMST(time.Now())

	sites := standardSites()
	dets := []skymap.Detector{
		{Location: sites[0], TOA: 0, VarianceTOA: 1e-6},
		{Location: sites[1], TOA: 0.007, VarianceTOA: 1e-6},
		{Location: sites[2], TOA: -0.004, VarianceTOA: 1e-6},
	}

	m, st := skymap.SkyMapTDOA(skymap.TDOARequest{
		NPix:      192,
		GMST:      gmst,
		Detectors: dets,
		Logger:    logger,
	})
	if !st.IsOK() {
		fmt.Println("ERROR:", st)
		os.Exit(1)
	}

	best := 0
	for i, v := range m {
		if v > m[best] {
			best = i
		}
	}
	fmt.Printf("TDOA-only sky map: %d pixels, peak at pixel %d (p=%.6f)\n", len(m), best, m[best])

	ampDets := make([]skymap.Detector, len(dets))
	for i, d := range dets {
		ampDets[i] = d
		ampDets[i].Response = [3][3]float32{{1, 0, 0}, {0, -1, 0}, {0, 0, 0}}
		ampDets[i].Horizon = 100
		ampDets[i].SNR = complex(10, 0)
	}

	full, st := skymap.SkyMapTDOASNR(skymap.TDOASNRRequest{
		NPix:        192,
		GMST:        gmst,
		Detectors:   ampDets,
		MinDistance: 1,
		MaxDistance: 1000,
		Prior:       skymap.UniformInVolume,
		Logger:      logger,
	})
	if !st.IsOK() {
		fmt.Println("ERROR:", st)
		os.Exit(1)
	}

	best = 0
	for i, v := range full {
		if v > full[best] {
			best = i
		}
	}
	fmt.Printf("TDOA+amplitude sky map: %d pixels, peak at pixel %d (p=%.6f)\n", len(full), best, full[best])
}
