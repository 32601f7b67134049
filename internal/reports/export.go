// Package reports renders vital history and rolling summaries into
// downloadable documents.
package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	analytics "healthwatch-cloud/internal/analytics/domain"
	vitals "healthwatch-cloud/internal/vitals/domain"
)

const exportTimeLayout = "2006-01-02 15:04:05"

func cellInt(value *int) any {
	if value == nil {
		return ""
	}
	return *value
}

func cellFloat(value *float64) any {
	if value == nil {
		return ""
	}
	return *value
}

func textFloat(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *value)
}

// BuildHistoryXLSX renders a reading log into a workbook, one row per
// reading in the given order.
func BuildHistoryXLSX(readings []vitals.VitalReading) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "history"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Device", "Timestamp", "Heart Rate", "SpO2", "Temperature", "Fall"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}
	for i, reading := range readings {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), reading.DeviceID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), reading.Timestamp.UTC().Format(exportTimeLayout))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), cellInt(reading.HeartRate))
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), cellInt(reading.SpO2))
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), cellFloat(reading.Temperature))
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), reading.FallDetected)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRollingSummaryPDF renders the rolling minute summaries as a table,
// oldest first.
func BuildRollingSummaryPDF(buckets []analytics.BucketSummary, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Vitals Rolling Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Minutes covered: %d", len(buckets)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 6, "Minute", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Avg HR", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Avg SpO2", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Avg Temp", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Falls", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Samples", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, bucket := range buckets {
		pdf.CellFormat(35, 6, bucket.TimeStart.UTC().Format("15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, textFloat(bucket.AvgHeartRate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, textFloat(bucket.AvgSpO2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, textFloat(bucket.AvgTemperature), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", bucket.FallCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", bucket.SampleCount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
