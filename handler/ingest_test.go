package handler

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-1-5", "2024-01-05", false},
		{"2024-01-05", "2024-01-05", false},
		{"2024-12-31", "2024-12-31", false},
		{"2024-13-01", "", true},
		{"2024-00-10", "", true},
		{"not-a-date", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := normalizeDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("normalizeDate(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeDate(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("normalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"9:5:0", "09:05:00", false},
		{"09:05:00", "09:05:00", false},
		{"23:59:59", "23:59:59", false},
		{"24:00:00", "", true},
		{"10:60:00", "", true},
		{"noon", "", true},
	}
	for _, tc := range cases {
		got, err := normalizeTime(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("normalizeTime(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeTime(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("normalizeTime(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
