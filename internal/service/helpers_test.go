package service

import "testing"

func TestToCents(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{1, 100},
		{19.99, 1999},
		// 浮点表示误差，四舍五入兜底
		{0.1 + 0.2, 30},
		{123.456, 12346},
		{-19.99, -1999},
	}

	for _, tc := range cases {
		if got := toCents(tc.in); got != tc.want {
			t.Errorf("toCents(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
