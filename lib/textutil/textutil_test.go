package textutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConvertToName(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"王小明", "王小明"},
		{"出席記錄 [王小明]", "王小明"},
		{"王小明（線上）", "王小明"},
		{"王小明(備註)", "王小明"},
		{"  王小明  ", "王小明"},
		{"[王小明] 請假原因", "王小明"},
	}

	for _, test := range testCases {
		got := ConvertToName(test.input)
		require.Equal(t, test.expected, got, "input: %q", test.input)

		// normalization is idempotent
		require.Equal(t, got, ConvertToName(got))
	}
}

func TestConvertToGroupNumber(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"第3組", "3"},
		{"3組", "3"},
		{"12", "12"},
		{"第 10 組", "10"},
		{"無", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, ConvertToGroupNumber(test.input), "input: %q", test.input)
	}
}

func TestConvertToDate(t *testing.T) {
	expected := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"2023/04/15",
		"2023/4/15",
		"04/15/2023",
		" 2023/04/15 ",
		"2023/4/15 下午 7:32:11",
	} {
		d, err := ConvertToDate(input)
		require.NoError(t, err, "input: %q", input)
		require.True(t, SameDate(expected, d), "input: %q", input)
	}

	_, err := ConvertToDate("not a date")
	require.Error(t, err)
}
