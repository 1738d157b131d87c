package service

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/scopecraft/estimation-api/internal/model"
)

const (
	summarySheet   = "Summary"
	modulesSheet   = "Modules"
	resourcesSheet = "Resources"
)

// ExcelExporter renders estimation reports as xlsx workbooks
type ExcelExporter struct{}

// NewExcelExporter creates a new exporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Generate renders a report into a three-sheet workbook: pricing and
// timeline summary, per-module breakdown, and resource allocation.
func (e *ExcelExporter) Generate(projectName string, report *model.Report) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(modulesSheet); err != nil {
		return nil, fmt.Errorf("create modules sheet: %w", err)
	}
	if _, err := f.NewSheet(resourcesSheet); err != nil {
		return nil, fmt.Errorf("create resources sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := e.writeSummary(f, headerStyle, projectName, report); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	if err := e.writeModules(f, headerStyle, report); err != nil {
		return nil, fmt.Errorf("write modules: %w", err)
	}
	if err := e.writeResources(f, headerStyle, report); err != nil {
		return nil, fmt.Errorf("write resources: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write buffer: %w", err)
	}
	return buf, nil
}

func (e *ExcelExporter) writeSummary(f *excelize.File, headerStyle int, projectName string, report *model.Report) error {
	rows := [][]interface{}{
		{"Project", projectName},
		{"Total Hours", report.Totals.Hours},
		{"Base Cost", report.Totals.BaseCost},
		{},
		{"Risk Buffer %", report.Pricing.RiskBufferPercent},
		{"Risk Amount", report.Pricing.RiskBufferAmount},
		{"Cost With Risk", report.Pricing.CostWithRisk},
		{"Target Margin %", report.Pricing.TargetMarginPercent},
		{"Margin Amount", report.Pricing.MarginAmount},
		{"Price Before Negotiation", report.Pricing.PriceBeforeNegotiation},
		{"Negotiation Buffer %", report.Pricing.NegotiationBufferPercent},
		{"Negotiation Amount", report.Pricing.NegotiationBufferAmount},
		{"Final Price", report.Pricing.FinalPrice},
		{"Profit", report.Pricing.Profit},
		{"Profit Margin %", report.Pricing.ProfitMarginPercent},
		{},
		{"Weeks Required", report.Timeline.WeeksRequired},
		{"Sprints Required", report.Timeline.SprintsRequired},
		{"Months Estimate", report.Timeline.MonthsEstimate},
		{"Team Size", report.Timeline.EstimatedTeamSize},
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(summarySheet, "A1", "A1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "A", 26)
}

func (e *ExcelExporter) writeModules(f *excelize.File, headerStyle int, report *model.Report) error {
	header := []interface{}{"Module", "Hours", "Cost"}
	if err := f.SetSheetRow(modulesSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(modulesSheet, "A1", "C1", headerStyle); err != nil {
		return err
	}

	for i, m := range report.WBS.Modules {
		row := []interface{}{m.Name, m.Hours, m.Cost}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(modulesSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(modulesSheet, "A", "A", 30)
}

func (e *ExcelExporter) writeResources(f *excelize.File, headerStyle int, report *model.Report) error {
	header := []interface{}{"Role", "Hours", "Hourly Rate", "Percentage"}
	if err := f.SetSheetRow(resourcesSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(resourcesSheet, "A1", "D1", headerStyle); err != nil {
		return err
	}

	for i, a := range report.ResourceAllocation {
		row := []interface{}{a.Role, a.Hours, a.HourlyRate, a.Percentage}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resourcesSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(resourcesSheet, "A", "A", 24)
}
