package goalnum

import (
	"strconv"
	"strings"
)

// 目标层级：0=战略目标(Strategic Objective) 1=目标(Goal) 2=子目标(Sub-goal)
const (
	LevelObjective = 0
	LevelGoal      = 1
	LevelSubGoal   = 2
)

// Level 根据点分编号推导层级，段数-1 并收敛到 [0,2]
func Level(number string) int {
	parts := strings.Split(number, ".")
	level := len(parts) - 1
	if level < 0 {
		level = 0
	}
	if level > LevelSubGoal {
		level = LevelSubGoal
	}
	return level
}

// ParentNumber 推导父级编号，顶级编号返回 ok=false
func ParentNumber(number string) (string, bool) {
	parts := strings.Split(number, ".")
	if len(parts) <= 1 {
		return "", false
	}
	return strings.Join(parts[:len(parts)-1], "."), true
}

// LevelLabel 层级的展示名称
func LevelLabel(level int) string {
	switch level {
	case LevelObjective:
		return "Strategic Objective"
	case LevelGoal:
		return "Goal"
	case LevelSubGoal:
		return "Sub-goal"
	default:
		return "Goal"
	}
}

// Compare 自然序比较两个点分编号，逐段按数值比较
// "1.9" < "1.10"；前缀短的排在前面（"1" < "1.2"）
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}

	for i := 0; i < n; i++ {
		ai, aerr := strconv.Atoi(strings.TrimSpace(as[i]))
		bi, berr := strconv.Atoi(strings.TrimSpace(bs[i]))
		if aerr != nil || berr != nil {
			// 非数字段退回字符串比较
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
			continue
		}
		if ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

// Less Compare 的布尔形式，便于 sort.Slice 使用
func Less(a, b string) bool {
	return Compare(a, b) < 0
}
