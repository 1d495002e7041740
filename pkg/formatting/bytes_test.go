package formatting

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want string
	}{
		{"bytes", 512, "512 B"},
		{"kilobytes", 2048, "2.0 KB"},
		{"megabytes", 20 * 1024 * 1024, "20.0 MB"},
		{"fractional", 1536, "1.5 KB"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatBytes(tc.size); got != tc.want {
				t.Fatalf("FormatBytes(%d) = %q, want %q", tc.size, got, tc.want)
			}
		})
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare number", "1024", 1024, false},
		{"megabytes", "20MB", 20 * 1024 * 1024, false},
		{"spaced", "1.5 GB", 1536 * 1024 * 1024, false},
		{"lowercase", "2kb", 2048, false},
		{"empty", "", 0, true},
		{"garbage", "lots", 0, true},
		{"negative", "-5MB", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBytes(tc.input)

			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseBytes(%q) expected error, got %d", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBytes(%q) error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ParseBytes(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}
