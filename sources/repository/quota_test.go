package repository

import "testing"

func TestRemainingOf(t *testing.T) {
	tests := []struct {
		name     string
		used     int
		cap      int
		expected int
	}{
		{name: "Untouched discovery quota", used: 0, cap: 3, expected: 3},
		{name: "Partially used", used: 2, cap: 3, expected: 1},
		{name: "Exhausted", used: 3, cap: 3, expected: 0},
		{name: "Over cap clamps at zero", used: 5, cap: 3, expected: 0},
		{name: "Partner cap", used: 4, cap: 20, expected: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := remainingOf(tt.used, tt.cap)
			if result != tt.expected {
				t.Errorf("remainingOf(%d, %d) = %d, expected %d", tt.used, tt.cap, result, tt.expected)
			}
		})
	}
}

func TestCreditUnlock(t *testing.T) {
	tests := []struct {
		name     string
		used     int
		offset   int
		expected int
	}{
		{name: "Fresh session clamps at zero", used: 0, offset: 17, expected: 0},
		{name: "Exhausted discovery tier clamps at zero", used: 3, offset: 17, expected: 0},
		{name: "At the offset", used: 17, offset: 17, expected: 0},
		{name: "Above the offset keeps the difference", used: 19, offset: 17, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := creditUnlock(tt.used, tt.offset)
			if result != tt.expected {
				t.Errorf("creditUnlock(%d, %d) = %d, expected %d", tt.used, tt.offset, result, tt.expected)
			}
		})
	}
}
