package transform

import "testing"

func TestTitleFromContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "Short message kept whole",
			input:    "What is RevPAR?",
			maxLen:   40,
			expected: "What is RevPAR?",
		},
		{
			name:     "Exactly at the limit",
			input:    "1234567890123456789012345678901234567890",
			maxLen:   40,
			expected: "1234567890123456789012345678901234567890",
		},
		{
			name:     "Long message truncated with ellipsis",
			input:    "Can you break down the seasonality impact on our coastal properties?",
			maxLen:   40,
			expected: "Can you break down the seasonality impac...",
		},
		{
			name:     "Surrounding whitespace trimmed",
			input:    "  hello  ",
			maxLen:   40,
			expected: "hello",
		},
		{
			name:     "Trailing space inside cut trimmed before ellipsis",
			input:    "1234567890123456789012345678901234567   8901234",
			maxLen:   40,
			expected: "1234567890123456789012345678901234567...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TitleFromContent(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("TitleFromContent() = %q, expected %q", result, tt.expected)
			}
		})
	}
}
