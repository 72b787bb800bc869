package skymap

import (
	"math"
	"testing"
)

func standardSites() [3][3]float64 {
	return [3][3]float64{
		{-2161414.9, -3834695.2, 4600350.2},
		{-74276.0, -5496283.7, 3224257.2},
		{4546374.1, 842989.7, 4378576.9},
	}
}

// TestSkyMapTDOAScenarioA exercises the documented fixture (spec §8,
// Scenario A): three well-separated sites, a millisecond TOA spread,
// npix=192.
func TestSkyMapTDOAScenarioA(t *testing.T) {
	sites := standardSites()
	dets := []Detector{
		{Location: sites[0], TOA: 0, VarianceTOA: 1e-6},
		{Location: sites[1], TOA: 0.007, VarianceTOA: 1e-6},
		{Location: sites[2], TOA: -0.004, VarianceTOA: 1e-6},
	}

	m, st := SkyMapTDOA(TDOARequest{NPix: 192, GMST: 0.0, Detectors: dets})
	if !st.IsOK() {
		t.Fatalf("SkyMapTDOA failed: %v", st)
	}

	var sum float64
	best := 0
	for i, v := range m {
		sum += v
		if v > m[best] {
			best = i
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("sum = %v, want 1", sum)
	}

	var mean float64
	for _, v := range m {
		mean += v
	}
	mean /= float64(len(m))
	if m[best] < 5*mean {
		t.Errorf("peak probability %v, want at least 5x mean %v", m[best], mean)
	}
}

func TestSkyMapTDOAInvalidNPix(t *testing.T) {
	_, st := SkyMapTDOA(TDOARequest{NPix: 13, Detectors: []Detector{{VarianceTOA: 1}}})
	if st.Kind != Shape {
		t.Errorf("status kind = %v, want Shape", st.Kind)
	}
}

// TestSkyMapTDOAInvariantUnderDetectorReordering verifies property 2 of
// spec §8: reordering detectors (with their paired fields) changes the
// output by no more than 1e-9 per pixel.
func TestSkyMapTDOAInvariantUnderDetectorReordering(t *testing.T) {
	sites := standardSites()
	dets := []Detector{
		{Location: sites[0], TOA: 0, VarianceTOA: 1e-6},
		{Location: sites[1], TOA: 0.007, VarianceTOA: 1e-6},
		{Location: sites[2], TOA: -0.004, VarianceTOA: 1e-6},
	}
	reordered := []Detector{dets[2], dets[0], dets[1]}

	m1, st1 := SkyMapTDOA(TDOARequest{NPix: 192, GMST: 0.2, Detectors: dets})
	m2, st2 := SkyMapTDOA(TDOARequest{NPix: 192, GMST: 0.2, Detectors: reordered})
	if !st1.IsOK() || !st2.IsOK() {
		t.Fatalf("SkyMapTDOA failed: %v %v", st1, st2)
	}
	for i := range m1 {
		if math.Abs(m1[i]-m2[i]) > 1e-9 {
			t.Fatalf("pixel %d: m1=%v m2=%v differ after detector reordering", i, m1[i], m2[i])
		}
	}
}

func TestSkyMapTDOASNRRejectsUnrecognizedPrior(t *testing.T) {
	sites := standardSites()
	dets := []Detector{
		{Response: [3][3]float32{{1, 0, 0}, {0, -1, 0}, {0, 0, 0}}, Location: sites[0], Horizon: 100, TOA: 0, SNR: complex(10, 0), VarianceTOA: 1e-6},
	}
	_, st := SkyMapTDOASNR(TDOASNRRequest{
		NPix: 192, Detectors: dets, MinDistance: 1, MaxDistance: 1000, Prior: Prior(99),
	})
	if st.Kind != UnrecognizedPrior {
		t.Errorf("status kind = %v, want UnrecognizedPrior", st.Kind)
	}
}

func TestSkyMapTDOASNRRejectsNonPositiveHorizon(t *testing.T) {
	sites := standardSites()
	dets := []Detector{
		{Response: [3][3]float32{{1, 0, 0}, {0, -1, 0}, {0, 0, 0}}, Location: sites[0], Horizon: 0, TOA: 0, SNR: complex(10, 0), VarianceTOA: 1e-6},
	}
	_, st := SkyMapTDOASNR(TDOASNRRequest{
		NPix: 192, Detectors: dets, MinDistance: 1, MaxDistance: 1000, Prior: UniformInLogDistance,
	})
	if st.Kind != Shape {
		t.Errorf("status kind = %v, want Shape", st.Kind)
	}
}

// TestSkyMapTDOASNRHorizonRescalingInvariance verifies property 4 of
// spec §8: uniformly scaling horizons, min_distance, and max_distance
// by the same positive factor leaves the output unchanged.
func TestSkyMapTDOASNRHorizonRescalingInvariance(t *testing.T) {
	sites := standardSites()
	base := []Detector{
		{Response: [3][3]float32{{1, 0, 0}, {0, -1, 0}, {0, 0, 0}}, Location: sites[0], Horizon: 100, TOA: 0, SNR: complex(10, 0), VarianceTOA: 1e-6},
		{Response: [3][3]float32{{1, 0, 0}, {0, -1, 0}, {0, 0, 0}}, Location: sites[1], Horizon: 100, TOA: 0.003, SNR: complex(8, 0), VarianceTOA: 1e-6},
		{Response: [3][3]float32{{1, 0, 0}, {0, -1, 0}, {0, 0, 0}}, Location: sites[2], Horizon: 100, TOA: -0.002, SNR: complex(9, 0), VarianceTOA: 1e-6},
	}
	scaled := make([]Detector, len(base))
	const factor = 3.5
	for i, d := range base {
		scaled[i] = d
		scaled[i].Horizon *= factor
	}

	req1 := TDOASNRRequest{NPix: 192, GMST: 0.1, Detectors: base, MinDistance: 1, MaxDistance: 1000, Prior: UniformInLogDistance}
	req2 := TDOASNRRequest{NPix: 192, GMST: 0.1, Detectors: scaled, MinDistance: factor, MaxDistance: 1000 * factor, Prior: UniformInLogDistance}

	m1, st1 := SkyMapTDOASNR(req1)
	m2, st2 := SkyMapTDOASNR(req2)
	if !st1.IsOK() || !st2.IsOK() {
		t.Fatalf("SkyMapTDOASNR failed: %v %v", st1, st2)
	}
	for i := range m1 {
		if math.Abs(m1[i]-m2[i]) > 1e-6 {
			t.Fatalf("pixel %d: m1=%v m2=%v differ after horizon rescaling", i, m1[i], m2[i])
		}
	}
}
