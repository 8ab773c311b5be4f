package excel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"planbook/internal/goalnum"
	"planbook/internal/model"
)

// 列约定（0 起）：层级标记 / 标题 / 负责人 / 指标名 / 基线值，
// 第 5 列起为时间序列，22/23 固定为单位符号和统计频率
const (
	colHierarchy  = 0
	colTitle      = 1
	colOwner      = 2
	colMetricName = 3
	colBaseline   = 4
	colSeriesFrom = 5
	colUnitSymbol = 22
	colFrequency  = 23
)

// Parser 战略计划表格解析器
type Parser struct {
	file   *excelize.File
	fileID string
}

// NewParser 创建解析器
func NewParser() *Parser {
	return &Parser{
		fileID: uuid.New().String(),
	}
}

// LoadFile 加载 Excel 文件
func (p *Parser) LoadFile(reader io.Reader) error {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return fmt.Errorf("failed to open excel: %w", err)
	}
	p.file = file
	return nil
}

// GetFileID 获取文件 ID
func (p *Parser) GetFileID() string {
	return p.fileID
}

// Close 关闭文件
func (p *Parser) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseFirstSheet 解析第一个工作表为目标+指标的扁平序列
// 层级标记行开启新目标，其后（含标记行本身）第 4 列非空的行都是
// 挂在当前目标下的指标行
func (p *Parser) ParseFirstSheet() (*model.ParseResult, error) {
	if p.file == nil {
		return nil, errors.New("no file loaded")
	}

	sheets := p.file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("empty sheet")
	}
	sheetName := sheets[0]

	rows, err := p.file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty sheet")
	}

	header := rows[0]

	goals := make([]model.ParsedGoal, 0)
	// 当前目标的下标，-1 表示尚未开启目标
	current := -1

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isEmptyRow(row) {
			continue
		}

		if number, hierarchy, ok := matchHierarchy(getCell(row, colHierarchy)); ok {
			level := -1
			if number != "" {
				level = goalnum.Level(number)
			}
			goals = append(goals, model.ParsedGoal{
				RowNumber:  rowNum,
				RawCells:   append([]string(nil), row...),
				Hierarchy:  hierarchy,
				GoalNumber: number,
				Title:      getCell(row, colTitle),
				Level:      level,
				OwnerName:  getCell(row, colOwner),
				Metrics:    make([]model.ParsedMetric, 0),
			})
			current = len(goals) - 1
		}

		// 指标行挂在最近开启的目标下
		if current >= 0 && getCell(row, colMetricName) != "" {
			metric := parseMetricRow(row, header, rowNum)
			goals[current].Metrics = append(goals[current].Metrics, metric)
		}
	}

	return &model.ParseResult{
		SheetName: sheetName,
		RowCount:  len(rows),
		Goals:     goals,
	}, nil
}

// parseMetricRow 解析一条指标行，扫描时间序列列
func parseMetricRow(row []string, header []string, rowNum int) model.ParsedMetric {
	metric := model.ParsedMetric{
		RowNumber:  rowNum,
		Name:       getCell(row, colMetricName),
		Baseline:   parseNumericCell(getCell(row, colBaseline)),
		UnitSymbol: getCell(row, colUnitSymbol),
		Frequency:  getCell(row, colFrequency),
		TimeSeries: make([]model.TimeSeriesEntry, 0),
	}

	for col := colSeriesFrom; col < len(header); col++ {
		if col == colUnitSymbol || col == colFrequency {
			continue
		}
		label := strings.TrimSpace(header[col])
		period, ok := RecognizePeriod(label)
		if !ok {
			continue
		}
		cell := getCell(row, col)
		if cell == "" {
			continue
		}
		metric.TimeSeries = append(metric.TimeSeries, model.TimeSeriesEntry{
			Period: period,
			Label:  label,
			Target: parseNumericCell(cell),
		})
	}

	return metric
}

// ValidateParsed 解析后的整体校验：标题、编号、层级缺失即失败
func ValidateParsed(result *model.ParseResult) error {
	messages := make([]string, 0)
	for _, g := range result.Goals {
		if strings.TrimSpace(g.Title) == "" {
			messages = append(messages, fmt.Sprintf("row %d: missing title", g.RowNumber))
		}
		if strings.TrimSpace(g.GoalNumber) == "" {
			messages = append(messages, fmt.Sprintf("row %d: missing goal number", g.RowNumber))
		}
		if g.Level < goalnum.LevelObjective || g.Level > goalnum.LevelSubGoal {
			messages = append(messages, fmt.Sprintf("row %d: undefined level", g.RowNumber))
		}
	}
	if len(messages) > 0 {
		return fmt.Errorf("parsed data invalid: %s", strings.Join(messages, "; "))
	}
	return nil
}

// isEmptyRow 整行为空白/"undefined"/"null" 时视作空行跳过
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		v := strings.ToLower(strings.TrimSpace(cell))
		if v != "" && v != "undefined" && v != "null" {
			return false
		}
	}
	return true
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
