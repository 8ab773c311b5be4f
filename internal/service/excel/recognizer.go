package excel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// reHierarchy 层级标记：竖线包裹的点分编号，如 |1.2|
var reHierarchy = regexp.MustCompile(`\|([^|]+)\|`)

// matchHierarchy 提取层级标记，返回编号、标记原文和是否命中
func matchHierarchy(cell string) (string, string, bool) {
	m := reHierarchy.FindStringSubmatch(cell)
	if len(m) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[0], true
}

// 时间序列表头模式，按优先级匹配
var (
	reISODate    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	reFiscalYear = regexp.MustCompile(`^FY\s*(\d{2})/(\d{2})$`)
	reShortYears = regexp.MustCompile(`^(\d{2})-(\d{2})$`)
	reMonthName  = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{4})$`)
)

var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// RecognizePeriod 识别表头是否为时间周期列，返回归一化周期键
// 优先级：ISO 日期 > 财年 FYxx/yy > 双年份 xx-yy > 英文月份+年份
func RecognizePeriod(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	if m := reISODate.FindStringSubmatch(header); len(m) == 4 {
		return m[1] + "-" + m[2], true
	}
	if m := reFiscalYear.FindStringSubmatch(header); len(m) == 3 {
		return "FY" + m[1] + "/" + m[2], true
	}
	if m := reShortYears.FindStringSubmatch(header); len(m) == 3 {
		return m[1] + "-" + m[2], true
	}
	if m := reMonthName.FindStringSubmatch(header); len(m) == 3 {
		month, ok := monthNumbers[strings.ToLower(m[1])]
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%s-%02d", m[2], month), true
	}

	return "", false
}

// reRatio 比值写法 "a/b"
var reRatio = regexp.MustCompile(`^([0-9.]+)\s*/\s*([0-9.]+)$`)

// parseNumericCell 解析数值单元格：去掉百分号与千分位，
// "a/b" 按商计算，解析失败返回 nil
func parseNumericCell(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if m := reRatio.FindStringSubmatch(s); len(m) == 3 {
		a, errA := strconv.ParseFloat(m[1], 64)
		b, errB := strconv.ParseFloat(m[2], 64)
		if errA != nil || errB != nil || b == 0 {
			return nil
		}
		v := a / b
		return &v
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
