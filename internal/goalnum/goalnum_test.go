package goalnum_test

import (
	"sort"
	"testing"

	"planbook/internal/goalnum"
)

func TestLevel(t *testing.T) {
	cases := []struct {
		number string
		want   int
	}{
		{"1", 0},
		{"1.2", 1},
		{"1.2.3", 2},
		{"1.2.3.4", 2}, // 超过三段收敛到子目标层级
		{"12", 0},
	}

	for _, c := range cases {
		if got := goalnum.Level(c.number); got != c.want {
			t.Fatalf("Level(%q)=%d, want %d", c.number, got, c.want)
		}
	}
}

func TestParentNumber(t *testing.T) {
	if _, ok := goalnum.ParentNumber("1"); ok {
		t.Fatalf("ParentNumber(\"1\") should have no parent")
	}

	parent, ok := goalnum.ParentNumber("1.2")
	if !ok || parent != "1" {
		t.Fatalf("ParentNumber(\"1.2\")=%q,%v, want \"1\",true", parent, ok)
	}

	parent, ok = goalnum.ParentNumber("1.2.3")
	if !ok || parent != "1.2" {
		t.Fatalf("ParentNumber(\"1.2.3\")=%q,%v, want \"1.2\",true", parent, ok)
	}
}

func TestCompareNaturalOrder(t *testing.T) {
	if goalnum.Compare("1.9", "1.10") >= 0 {
		t.Fatalf("\"1.9\" should sort before \"1.10\"")
	}
	if goalnum.Compare("1", "1.2") >= 0 {
		t.Fatalf("shorter prefix should sort first")
	}
	if goalnum.Compare("2", "10") >= 0 {
		t.Fatalf("\"2\" should sort before \"10\"")
	}
	if goalnum.Compare("1.2", "1.2") != 0 {
		t.Fatalf("equal numbers should compare equal")
	}
}

func TestSortAncestorsBeforeDescendants(t *testing.T) {
	numbers := []string{"2.1", "1.10", "1", "1.9", "2", "1.9.1"}
	sort.Slice(numbers, func(i, j int) bool {
		return goalnum.Less(numbers[i], numbers[j])
	})

	want := []string{"1", "1.9", "1.9.1", "1.10", "2", "2.1"}
	for i := range want {
		if numbers[i] != want[i] {
			t.Fatalf("sorted=%v, want %v", numbers, want)
		}
	}
}
