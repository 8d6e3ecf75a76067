// Package export writes a dashboard snapshot to an xlsx workbook with one
// sheet per panel.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/SmitUplenchwar2687/Vantage/internal/chart"
	"github.com/SmitUplenchwar2687/Vantage/internal/dashboard"
)

// Sheet names in workbook order.
const (
	SheetOverview   = "Overview"
	SheetDeltas     = "Deltas"
	SheetTrend      = "Rating Trend"
	SheetSentiment  = "Sentiment"
	SheetBenchmark  = "Benchmark"
	SheetLocations  = "Locations"
	SheetBusinesses = "Businesses"
)

type sheetWriter struct {
	wb     *excelize.File
	header int
}

// Workbook builds the workbook for snap. The caller closes it.
func Workbook(snap dashboard.Snapshot) (*excelize.File, error) {
	wb := excelize.NewFile()
	header, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = wb.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	sw := &sheetWriter{wb: wb, header: header}

	if err := wb.SetSheetName("Sheet1", SheetOverview); err != nil {
		_ = wb.Close()
		return nil, err
	}
	for _, name := range []string{SheetDeltas, SheetTrend, SheetSentiment, SheetBenchmark, SheetLocations, SheetBusinesses} {
		if _, err := wb.NewSheet(name); err != nil {
			_ = wb.Close()
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	steps := []func(dashboard.Snapshot) error{
		sw.overview,
		sw.deltas,
		sw.trend,
		sw.sentiment,
		sw.benchmark,
		sw.locations,
		sw.businesses,
	}
	for _, step := range steps {
		if err := step(snap); err != nil {
			_ = wb.Close()
			return nil, err
		}
	}
	wb.SetActiveSheet(0)
	return wb, nil
}

// Write streams the workbook for snap to w.
func Write(snap dashboard.Snapshot, w io.Writer) error {
	wb, err := Workbook(snap)
	if err != nil {
		return err
	}
	defer wb.Close()
	if _, err := wb.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook for snap at path.
func WriteFile(snap dashboard.Snapshot, path string) error {
	wb, err := Workbook(snap)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// rows writes a bold header row followed by data rows.
func (sw *sheetWriter) rows(sheet string, header []any, data [][]any) error {
	if err := sw.wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := sw.wb.SetCellStyle(sheet, "A1", last, sw.header); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func (sw *sheetWriter) overview(snap dashboard.Snapshot) error {
	data := [][]any{
		{"Session", snap.SessionID, nil},
		{"Business", string(snap.BusinessID), nil},
	}
	if ov := snap.Overview; ov != nil {
		data = append(data,
			[]any{"Trust Score", ov.View.TrustScore, ov.Data.TrustScore},
			[]any{"Trust Class", ov.View.TrustClass, nil},
			[]any{"Industry Avg", ov.View.IndustryAvg, ov.Data.IndustryAvgTrust},
			[]any{"Weighted Rating", ov.View.Rating, ov.Data.WeightedRating},
			[]any{"Total Reviews", ov.View.Volume, ov.Data.TotalReviews},
			[]any{"Response Rate", ov.View.ResponseRate, ov.Data.ResponseRate},
		)
	}
	return sw.rows(SheetOverview, []any{"Metric", "Display", "Value"}, data)
}

func (sw *sheetWriter) deltas(snap dashboard.Snapshot) error {
	var data [][]any
	if d := snap.Deltas; d != nil {
		data = [][]any{
			{"Rating", d.View.Rating.Text, string(d.View.Rating.Tone), d.Data.DeltaRating},
			{"Negative Sentiment", d.View.Sentiment.Text, string(d.View.Sentiment.Tone), d.Data.DeltaNegSentiment},
			{"Response Rate", d.View.ResponseRate.Text, string(d.View.ResponseRate.Tone), d.Data.DeltaResponseRate},
		}
	}
	return sw.rows(SheetDeltas, []any{"Metric", "Change", "Tone", "Value"}, data)
}

func (sw *sheetWriter) trend(snap dashboard.Snapshot) error {
	var data [][]any
	if c, ok := snap.Charts[chart.CanvasRatingTrend]; ok && len(c.Datasets) > 0 {
		for i, label := range c.Labels {
			if i < len(c.Datasets[0].Data) {
				data = append(data, []any{label, c.Datasets[0].Data[i]})
			}
		}
	}
	return sw.rows(SheetTrend, []any{"Month", "Rating"}, data)
}

func (sw *sheetWriter) sentiment(snap dashboard.Snapshot) error {
	var data [][]any
	if c, ok := snap.Charts[chart.CanvasSentimentDist]; ok && len(c.Datasets) > 0 {
		for i, label := range c.Labels {
			if i < len(c.Datasets[0].Data) {
				data = append(data, []any{label, c.Datasets[0].Data[i]})
			}
		}
	}
	return sw.rows(SheetSentiment, []any{"Bucket", "Count"}, data)
}

func (sw *sheetWriter) benchmark(snap dashboard.Snapshot) error {
	header := []any{"Metric"}
	var data [][]any
	if c, ok := snap.Charts[chart.CanvasBenchmark]; ok {
		for _, ds := range c.Datasets {
			header = append(header, ds.Label)
		}
		for i, label := range c.Labels {
			row := []any{label}
			for _, ds := range c.Datasets {
				if i < len(ds.Data) {
					row = append(row, ds.Data[i])
				}
			}
			data = append(data, row)
		}
	}
	return sw.rows(SheetBenchmark, header, data)
}

func (sw *sheetWriter) locations(snap dashboard.Snapshot) error {
	data := make([][]any, 0, len(snap.Map.Markers))
	for _, m := range snap.Map.Markers {
		data = append(data, []any{m.Position.Lat, m.Position.Lng, m.Radius, m.Color})
	}
	if snap.Map.Insight != "" {
		data = append(data, []any{}, []any{"Insight", snap.Map.Insight})
	}
	return sw.rows(SheetLocations, []any{"Latitude", "Longitude", "Radius", "Color"}, data)
}

func (sw *sheetWriter) businesses(snap dashboard.Snapshot) error {
	data := make([][]any, 0, len(snap.Businesses))
	for _, o := range snap.Businesses {
		data = append(data, []any{string(o.ID), o.Label, o.Industry})
	}
	return sw.rows(SheetBusinesses, []any{"ID", "Label", "Industry"}, data)
}
