// Command genstations writes a synthetic Big5-encoded station observation
// fixture. Observed values come from the actual attenuation model with
// deterministic noise applied, so the generated file exercises the same
// parser, model, and classifier paths as a real bulletin.
//
// Usage:
//
//	go run ./cmd/genstations -out testdata/synthetic.txt -stations 60
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/tremolab/quake-intensity/internal/attenuation"
	"github.com/tremolab/quake-intensity/internal/intensity"
)

// codeLabels reverses the observed-label table for fixture generation.
// The network never reports intensity 0, so weak stations get "1級".
var codeLabels = map[intensity.Code]string{
	intensity.Code1:      "1級",
	intensity.Code2:      "2級",
	intensity.Code3:      "3級",
	intensity.Code4:      "4級",
	intensity.Code5Lower: "5弱",
	intensity.Code5Upper: "5強",
	intensity.Code6Lower: "6弱",
	intensity.Code6Upper: "6強",
	intensity.Code7:      "7級",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the Big5 station fixture")
	stations := flag.Int("stations", 60, "number of synthetic stations")
	seed := flag.Int64("seed", 114007, "noise seed")
	lon := flag.Float64("lon", 120.53, "epicenter longitude")
	lat := flag.Float64("lat", 23.28, "epicenter latitude")
	depth := flag.Float64("depth", 10.0, "depth in km")
	mag := flag.Float64("mag", 6.4, "magnitude")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	hyp := attenuation.Hypothesis{Lon: *lon, Lat: *lat, DepthKm: *depth, Magnitude: *mag}
	text, err := generate(hyp, *stations, *seed)
	if err != nil {
		return err
	}

	encoded, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return fmt.Errorf("encode fixture as Big5: %w", err)
	}
	if err := os.WriteFile(*out, encoded, 0o600); err != nil {
		return err
	}

	log.Printf("wrote %d stations to %s", *stations, *out)
	return nil
}

// generate builds the fixture text: a header embedding the epicenter as the
// labelled tokens the parser recognizes, then one record per station at a
// randomized offset, with observed motion equal to the model prediction
// scaled by noise in [0.6, 1.4).
func generate(hyp attenuation.Hypothesis, stations int, seed int64) (string, error) {
	rng := rand.New(rand.NewSource(seed))

	var b strings.Builder
	fmt.Fprintf(&b, "模擬地震 synthetic event Lon:%.2f Lat:%.2f Depth:%.0fkm M%.1f\n",
		hyp.Lon, hyp.Lat, hyp.DepthKm, hyp.Magnitude)

	for i := 0; i < stations; i++ {
		staLon := hyp.Lon + (rng.Float64()-0.5)*3.5
		staLat := hyp.Lat + (rng.Float64()-0.5)*4.0

		pga, err := attenuation.PredictedPGA(staLon, staLat, hyp)
		if err != nil {
			return "", fmt.Errorf("station %d: %w", i, err)
		}
		pgv, err := attenuation.PredictedPGV(staLon, staLat, hyp)
		if err != nil {
			return "", fmt.Errorf("station %d: %w", i, err)
		}

		obsPGA := pga * (0.6 + 0.8*rng.Float64())
		obsPGV := pgv * (0.6 + 0.8*rng.Float64())
		label, ok := codeLabels[intensity.Classify(obsPGA, obsPGV)]
		if !ok {
			label = "1級"
		}

		fmt.Fprintf(&b, "Stacode=SYN%03d,Stalon=%.4f,Stalat=%.4f,Int=%s,PGA(SUM)=%.2f,PGV(SUM)=%.2f,",
			i+1, staLon, staLat, label, obsPGA, obsPGV)
	}

	return b.String(), nil
}
