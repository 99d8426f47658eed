package services

import "testing"

func TestInferRegion(t *testing.T) {
	cases := []struct {
		username string
		want     string
	}{
		{"seoul_runner", "seoul"},
		{"BusanGirl", "busan"},
		{"my_incheon_99", "incheon"},
		{"daegu", "daegu"},
		{"admin", ""},
		{"", ""},
		{"seo_ul", ""},
	}
	for _, tc := range cases {
		if got := InferRegion(tc.username); got != tc.want {
			t.Errorf("InferRegion(%q) = %q, want %q", tc.username, got, tc.want)
		}
	}
}
