package render

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/tremolab/quake-intensity/internal/intensity"
	"github.com/tremolab/quake-intensity/internal/report"
)

// Map viewport, fixed to the Taiwan region like the bulletin charts.
const (
	mapLonMin = 119.0
	mapLonMax = 123.0
	mapLatMin = 21.0
	mapLatMax = 26.0
)

// Error coloring is clamped to ±100%.
const errorScale = 100.0

// Options controls the composite figure output.
type Options struct {
	Title string
	DPI   int
}

var (
	colorRed     = color.RGBA{R: 0xd6, G: 0x28, B: 0x28, A: 0xff}
	colorGreen   = color.RGBA{R: 0x00, G: 0x80, B: 0x00, A: 0xff}
	colorBlue    = color.RGBA{R: 0x00, G: 0x00, B: 0xcd, A: 0xff}
	colorOrange  = color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}
	colorMagenta = color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}
	colorBlack   = color.Black
)

// predictedCodeColors is the immutable display palette for predicted codes.
var predictedCodeColors = map[intensity.Code]color.Color{
	intensity.Code0:       colorBlack,
	intensity.Code1:       colorBlack,
	intensity.Code2:       colorBlue,
	intensity.Code3:       colorGreen,
	intensity.Code4:       colorGreen,
	intensity.Code5Lower:  colorRed,
	intensity.Code5Upper:  colorRed,
	intensity.Code6Lower:  colorRed,
	intensity.Code6Upper:  colorRed,
	intensity.Code7:       colorRed,
	intensity.CodeUnknown: colorOrange,
}

// tierColors maps observed severity tiers to label colors.
var tierColors = map[intensity.Tier]color.Color{
	intensity.TierHigh:         colorRed,
	intensity.TierMedium:       colorGreen,
	intensity.TierLow:          colorBlue,
	intensity.TierUnclassified: colorBlack,
}

// SaveComposite renders the full comparison figure to a PNG file: observed
// and predicted intensity maps on the left, six predicted-vs-observed
// scatter panels on the right, and a shared error colorbar.
func SaveComposite(path string, rep report.Report, boundary Boundary, opts Options) error {
	canvas, err := composeFigure(rep, boundary, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create figure file: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("encode figure: %w", err)
	}
	return f.Close()
}

func composeFigure(rep report.Report, boundary Boundary, opts Options) (*vgimg.Canvas, error) {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-errorScale)
	cm.SetMax(errorScale)

	obsMap, err := observedMap(rep, boundary)
	if err != nil {
		return nil, err
	}
	predMap, err := predictedMap(rep, boundary)
	if err != nil {
		return nil, err
	}
	colorBar := errorColorBar(cm)

	pgaPred, pgaObs, pgaErr := pgaSeries(rep)
	pgvPred, pgvObs, pgvErr := pgvSeries(rep)
	pgaMin, pgaMax := seriesRange(pgaPred, pgaObs)
	pgvMin, pgvMax := seriesRange(pgvPred, pgvObs)

	panels := []struct {
		title     string
		unit      string
		pred, obs []float64
		errs      []float64
		lo, hi    float64
	}{
		{"Predicted vs Observed PGA (Full)", "PGA", pgaPred, pgaObs, pgaErr, pgaMin, pgaMax},
		{"PGA (<=500 gal)", "PGA", pgaPred, pgaObs, pgaErr, 0, 500},
		{"PGA (<=200 gal)", "PGA", pgaPred, pgaObs, pgaErr, 0, 200},
		{"Predicted vs Observed PGV (Full)", "PGV", pgvPred, pgvObs, pgvErr, pgvMin, pgvMax},
		{"PGV (<=30 kine)", "PGV", pgvPred, pgvObs, pgvErr, 0, 30},
		{"PGV (<=15 kine)", "PGV", pgvPred, pgvObs, pgvErr, 0, 15},
	}

	plots := make([][]*plot.Plot, 3)
	for i := range plots {
		plots[i] = make([]*plot.Plot, 3)
	}
	plots[0][0] = obsMap
	plots[1][0] = predMap
	plots[2][0] = colorBar
	for i, panel := range panels {
		p, err := scatterPanel(panel.title, panel.unit, panel.pred, panel.obs, panel.errs, panel.lo, panel.hi, cm)
		if err != nil {
			return nil, err
		}
		plots[i%3][1+i/3] = p
	}

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = 96
	}
	canvas := vgimg.NewWith(
		vgimg.UseWH(20*vg.Inch, 15*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	dc := draw.New(canvas)

	if opts.Title != "" {
		drawTitle(dc, opts.Title)
	}

	tiles := draw.Tiles{
		Rows: 3, Cols: 3,
		PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4,
		PadTop: vg.Millimeter * 14, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}

	return canvas, nil
}

// drawTitle paints the figure-level title centered at the top of the canvas.
func drawTitle(dc draw.Canvas, title string) {
	style := text.Style{
		Color:   colorBlack,
		Font:    font.From(plot.DefaultFont, vg.Points(22)),
		XAlign:  text.XCenter,
		YAlign:  text.YTop,
		Handler: text.Plain{Fonts: font.DefaultCache},
	}
	pt := vg.Point{
		X: (dc.Min.X + dc.Max.X) / 2,
		Y: dc.Max.Y - vg.Millimeter*2,
	}
	dc.FillText(style, pt, title)
}

// newMapPlot builds the shared base of the two intensity maps: fixed
// viewport, axis labels, county outlines.
func newMapPlot(title string, boundary Boundary) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.X.Min, p.X.Max = mapLonMin, mapLonMax
	p.Y.Min, p.Y.Max = mapLatMin, mapLatMax

	for _, ring := range boundary.Rings {
		line, err := plotter.NewLine(ring)
		if err != nil {
			return nil, fmt.Errorf("boundary ring: %w", err)
		}
		line.Color = colorBlack
		line.Width = vg.Points(0.5)
		p.Add(line)
	}
	return p, nil
}

func observedMap(rep report.Report, boundary Boundary) (*plot.Plot, error) {
	p, err := newMapPlot("Observed Intensity Map", boundary)
	if err != nil {
		return nil, err
	}

	var xys plotter.XYs
	var labels []string
	var colors []color.Color
	for _, pred := range rep.Predictions {
		sta := pred.Station
		if !inViewport(sta.Geo.Lon, sta.Geo.Lat) {
			continue
		}
		code, tier := intensity.MapObserved(sta.ObservedIntensity)
		xys = append(xys, plotter.XY{X: sta.Geo.Lon, Y: sta.Geo.Lat})
		labels = append(labels, string(code))
		colors = append(colors, tierColors[tier])
	}
	if err := addIntensityLabels(p, xys, labels, colors); err != nil {
		return nil, err
	}

	if rep.Header != "" {
		lbs, err := headerAnnotation(rep.Header)
		if err != nil {
			return nil, err
		}
		p.Add(lbs)
	}

	if rep.ActualEpicenter != nil {
		if err := addEpicenterMarker(p, rep.ActualEpicenter.Lon, rep.ActualEpicenter.Lat,
			colorMagenta, draw.PyramidGlyph{}, "Actual Epicenter"); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// headerAnnotation renders the parsed bulletin header as a text box anchored
// at the lower-left corner of the map viewport.
func headerAnnotation(header string) (*plotter.Labels, error) {
	lbs, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: mapLonMin + 0.15, Y: mapLatMin + 0.25}},
		Labels: []string{header},
	})
	if err != nil {
		return nil, fmt.Errorf("header annotation: %w", err)
	}
	lbs.TextStyle[0].Color = colorBlack
	lbs.TextStyle[0].Font.Size = vg.Points(9)
	lbs.TextStyle[0].XAlign = text.XLeft
	lbs.TextStyle[0].YAlign = text.YBottom
	return lbs, nil
}

func predictedMap(rep report.Report, boundary Boundary) (*plot.Plot, error) {
	p, err := newMapPlot("Predicted Intensity Map", boundary)
	if err != nil {
		return nil, err
	}

	var xys plotter.XYs
	var labels []string
	var colors []color.Color
	for _, pred := range rep.Predictions {
		sta := pred.Station
		if !inViewport(sta.Geo.Lon, sta.Geo.Lat) {
			continue
		}
		c, ok := predictedCodeColors[pred.Code]
		if !ok {
			c = colorBlack
		}
		xys = append(xys, plotter.XY{X: sta.Geo.Lon, Y: sta.Geo.Lat})
		labels = append(labels, string(pred.Code))
		colors = append(colors, c)
	}
	if err := addIntensityLabels(p, xys, labels, colors); err != nil {
		return nil, err
	}

	if rep.ActualEpicenter != nil {
		if err := addEpicenterMarker(p, rep.ActualEpicenter.Lon, rep.ActualEpicenter.Lat,
			colorMagenta, draw.PyramidGlyph{}, "Actual Epicenter"); err != nil {
			return nil, err
		}
	}
	hyp := rep.Hypothesis
	if err := addEpicenterMarker(p, hyp.Lon, hyp.Lat,
		colorOrange, draw.CrossGlyph{}, "Predicted Epicenter"); err != nil {
		return nil, err
	}
	p.Title.Text = fmt.Sprintf("Predicted Intensity Map (Lon %.2f Lat %.2f Depth %.0f km M%.1f)",
		hyp.Lon, hyp.Lat, hyp.DepthKm, hyp.Magnitude)

	return p, nil
}

// addIntensityLabels places per-station intensity codes as centered colored
// text at the station coordinates.
func addIntensityLabels(p *plot.Plot, xys plotter.XYs, labels []string, colors []color.Color) error {
	if len(xys) == 0 {
		return nil
	}
	lbs, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("station labels: %w", err)
	}
	for i := range lbs.TextStyle {
		lbs.TextStyle[i].Color = colors[i]
		lbs.TextStyle[i].XAlign = text.XCenter
		lbs.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(lbs)
	return nil
}

func addEpicenterMarker(p *plot.Plot, lon, lat float64, c color.Color, shape draw.GlyphDrawer, legend string) error {
	sc, err := plotter.NewScatter(plotter.XYs{{X: lon, Y: lat}})
	if err != nil {
		return fmt.Errorf("epicenter marker: %w", err)
	}
	sc.GlyphStyle = draw.GlyphStyle{Color: c, Radius: vg.Points(6), Shape: shape}
	p.Add(sc)
	p.Legend.Add(legend, sc)
	p.Legend.Top = true
	return nil
}

// scatterPanel builds one predicted-vs-observed panel with the identity
// diagonal and points colored by prediction error.
func scatterPanel(title, unit string, pred, obs, errs []float64, lo, hi float64, cm palette.ColorMap) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted " + unit
	p.Y.Label.Text = "Observed " + unit
	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = lo, hi

	xys := make(plotter.XYs, len(pred))
	for i := range pred {
		xys[i] = plotter.XY{X: pred[i], Y: obs[i]}
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("scatter panel %q: %w", title, err)
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, err := cm.At(clamp(errs[i], -errorScale, errorScale))
		if err != nil {
			c = colorBlack
		}
		return draw.GlyphStyle{Color: c, Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
	}
	p.Add(sc)

	diag, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, fmt.Errorf("diagonal for %q: %w", title, err)
	}
	diag.Color = colorRed
	diag.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	p.Add(diag)

	return p, nil
}

// errorColorBar renders the shared prediction-error scale.
func errorColorBar(cm palette.ColorMap) *plot.Plot {
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: cm})
	p.HideY()
	p.X.Label.Text = "Prediction Error (%)"
	p.X.Min, p.X.Max = -errorScale, errorScale
	return p
}

func pgaSeries(rep report.Report) (pred, obs, errs []float64) {
	for _, p := range rep.Predictions {
		pred = append(pred, p.PGA)
		obs = append(obs, p.Station.ObservedPGA)
		errs = append(errs, p.PGAErrorPct)
	}
	return pred, obs, errs
}

func pgvSeries(rep report.Report) (pred, obs, errs []float64) {
	for _, p := range rep.Predictions {
		pred = append(pred, p.PGV)
		obs = append(obs, p.Station.ObservedPGV)
		errs = append(errs, p.PGVErrorPct)
	}
	return pred, obs, errs
}

// seriesRange returns the joint min/max of both series, with a safe default
// for empty input so an empty report still renders.
func seriesRange(a, b []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range a {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	for _, v := range b {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		return 0, 1
	}
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}

func inViewport(lon, lat float64) bool {
	return lon >= mapLonMin && lon <= mapLonMax && lat >= mapLatMin && lat <= mapLatMax
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
