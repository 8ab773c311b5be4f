package excel_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"planbook/internal/service/excel"
)

// buildPlanHeader 按列约定构造表头：5 列固定字段 + 时间序列 + 22/23 固定列
func buildPlanHeader(seriesHeaders ...string) []interface{} {
	header := make([]interface{}, 24)
	header[0] = "Hierarchy"
	header[1] = "Title"
	header[2] = "Owner"
	header[3] = "Measure"
	header[4] = "Baseline"
	for i, h := range seriesHeaders {
		header[5+i] = h
	}
	header[22] = "Symbol"
	header[23] = "Frequency"
	return header
}

func buildWorkbook(t *testing.T, rows [][]interface{}) *excel.Parser {
	t.Helper()

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	p := excel.NewParser()
	if err := p.LoadFile(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestParseFirstSheet_GoalWithMetricRow(t *testing.T) {
	p := buildWorkbook(t, [][]interface{}{
		buildPlanHeader("2024-06-01"),
		{"|1|", "Objective A", "Jane", ""},
		{"", "", "", "Proficiency", "75%", "80"},
	})

	result, err := p.ParseFirstSheet()
	if err != nil {
		t.Fatalf("ParseFirstSheet failed: %v", err)
	}

	if len(result.Goals) != 1 {
		t.Fatalf("len(Goals)=%d, want 1", len(result.Goals))
	}

	g := result.Goals[0]
	if g.GoalNumber != "1" || g.Level != 0 {
		t.Fatalf("GoalNumber=%q Level=%d, want \"1\" 0", g.GoalNumber, g.Level)
	}
	if g.Title != "Objective A" || g.OwnerName != "Jane" {
		t.Fatalf("Title=%q Owner=%q", g.Title, g.OwnerName)
	}
	if len(g.Metrics) != 1 {
		t.Fatalf("len(Metrics)=%d, want 1", len(g.Metrics))
	}

	m := g.Metrics[0]
	if m.Name != "Proficiency" {
		t.Fatalf("Metric.Name=%q", m.Name)
	}
	if m.Baseline == nil || *m.Baseline != 75 {
		t.Fatalf("Baseline=%v, want 75", m.Baseline)
	}
	if len(m.TimeSeries) != 1 {
		t.Fatalf("len(TimeSeries)=%d, want 1", len(m.TimeSeries))
	}
	if m.TimeSeries[0].Period != "2024-06" {
		t.Fatalf("Period=%q, want \"2024-06\"", m.TimeSeries[0].Period)
	}
	if m.TimeSeries[0].Target == nil || *m.TimeSeries[0].Target != 80 {
		t.Fatalf("Target=%v, want 80", m.TimeSeries[0].Target)
	}
}

func TestParseFirstSheet_MultipleMetricRowsPerGoal(t *testing.T) {
	p := buildWorkbook(t, [][]interface{}{
		buildPlanHeader("FY24/25"),
		{"|2.1|", "Reading growth", "Lee", "Attendance rate", "90%", "92"},
		{"", "", "", "Graduation rate", "3/4", "85"},
		{"", "", "", "", "", ""},
		{"|2.2|", "Math growth", "Lee", ""},
	})

	result, err := p.ParseFirstSheet()
	if err != nil {
		t.Fatalf("ParseFirstSheet failed: %v", err)
	}
	if len(result.Goals) != 2 {
		t.Fatalf("len(Goals)=%d, want 2", len(result.Goals))
	}

	first := result.Goals[0]
	if first.Level != 1 {
		t.Fatalf("Level=%d, want 1", first.Level)
	}
	if len(first.Metrics) != 2 {
		t.Fatalf("len(Metrics)=%d, want 2", len(first.Metrics))
	}
	// 标记行自身也可以是指标行
	if first.Metrics[0].Name != "Attendance rate" {
		t.Fatalf("Metrics[0].Name=%q", first.Metrics[0].Name)
	}
	// 比值写法按商解析
	if b := first.Metrics[1].Baseline; b == nil || *b != 0.75 {
		t.Fatalf("Metrics[1].Baseline=%v, want 0.75", b)
	}

	if len(result.Goals[1].Metrics) != 0 {
		t.Fatalf("second goal should have no metrics")
	}
}

func TestParseFirstSheet_EmptySheet(t *testing.T) {
	wb := excelize.NewFile()
	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	p := excel.NewParser()
	if err := p.LoadFile(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	defer p.Close()

	if _, err := p.ParseFirstSheet(); err == nil {
		t.Fatalf("ParseFirstSheet should fail on empty sheet")
	}
}

func TestValidateParsed_MissingTitle(t *testing.T) {
	p := buildWorkbook(t, [][]interface{}{
		buildPlanHeader(),
		{"|1|", "", "Jane", ""},
	})

	result, err := p.ParseFirstSheet()
	if err != nil {
		t.Fatalf("ParseFirstSheet failed: %v", err)
	}

	err = excel.ValidateParsed(result)
	if err == nil {
		t.Fatalf("ValidateParsed should fail")
	}
	if !strings.Contains(err.Error(), "missing title") {
		t.Fatalf("error=%q, want missing title message", err.Error())
	}
}

func TestRecognizePeriod(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"2024-06-01", "2024-06", true},
		{"FY24/25", "FY24/25", true},
		{"FY 24/25", "FY24/25", true},
		{"24-25", "24-25", true},
		{"June 2024", "2024-06", true},
		{"Sep 2025", "2025-09", true},
		{"Notes", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		got, ok := excel.RecognizePeriod(c.header)
		if ok != c.ok || got != c.want {
			t.Fatalf("RecognizePeriod(%q)=%q,%v, want %q,%v", c.header, got, ok, c.want, c.ok)
		}
	}
}
