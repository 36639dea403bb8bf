package utils_test

import (
	"strconv"
	"testing"

	"github.com/leadscore/leadscore/pkg/utils"
)

func TestMap(t *testing.T) {
	t.Run("it maps each element with given mapper", func(t *testing.T) {
		actual := utils.Map([]int{1, 2, 3}, strconv.Itoa)
		expected := []string{"1", "2", "3"}

		if len(actual) != len(expected) {
			t.Fatalf("length mismatch: want %v, got %v", expected, actual)
		}
		for i := range expected {
			if actual[i] != expected[i] {
				t.Errorf("element %d: want %s, got %s", i, expected[i], actual[i])
			}
		}
	})

	t.Run("it maps empty slice to empty slice", func(t *testing.T) {
		actual := utils.Map([]int{}, strconv.Itoa)
		if len(actual) != 0 {
			t.Errorf("want empty, got %v", actual)
		}
	})
}

func TestDefault(t *testing.T) {
	t.Run("it dereferences non-nil pointer", func(t *testing.T) {
		v := 42
		if got := utils.Default(&v, 7); got != 42 {
			t.Errorf("want 42, got %d", got)
		}
	})
	t.Run("it falls back on nil", func(t *testing.T) {
		if got := utils.Default(nil, 7); got != 7 {
			t.Errorf("want 7, got %d", got)
		}
	})
}

func TestContains(t *testing.T) {
	if !utils.Contains([]string{"a", "b"}, "b") {
		t.Error("b should be found")
	}
	if utils.Contains([]string{"a", "b"}, "c") {
		t.Error("c should not be found")
	}
}

func TestConcat(t *testing.T) {
	actual := utils.Concat([]int{1}, []int{}, []int{2, 3})
	expected := []int{1, 2, 3}
	if len(actual) != len(expected) {
		t.Fatalf("want %v, got %v", expected, actual)
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Errorf("element %d: want %d, got %d", i, expected[i], actual[i])
		}
	}
}
