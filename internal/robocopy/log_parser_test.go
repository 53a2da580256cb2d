package robocopy

import "testing"

func TestParseCounters(t *testing.T) {
	tests := []struct {
		name      string
		log       string
		wantFiles int64
		wantBytes int64
	}{
		{
			name: "raw integer summary",
			log: `
------------------------------------------------------------------------------

               Total    Copied   Skipped  Mismatch    FAILED    Extras
    Dirs :         3         2         1         0         0         0
   Files :        15        10         5         0         0         0
   Bytes :   1234567    567890         0         0         0         0

   Ended : Monday, August 25, 2026 02:00:17 AM
`,
			wantFiles: 10,
			wantBytes: 567890,
		},
		{
			name: "scaled byte values",
			log: `
   Files :        15        10         5         0         0         0
   Bytes :     2 k       1 k         0         0         0         0
`,
			wantFiles: 10,
			wantBytes: 1024,
		},
		{
			name: "fractional scaled values",
			log: `
   Files :         4         4         0         0         0         0
   Bytes :   1.5 k     1.5 k         0         0         0         0
`,
			wantFiles: 4,
			wantBytes: 1536,
		},
		{
			name:      "no summary table",
			log:       "robocopy could not start: access denied\n",
			wantFiles: 0,
			wantBytes: 0,
		},
		{
			name:      "empty log",
			log:       "",
			wantFiles: 0,
			wantBytes: 0,
		},
		{
			name: "garbled summary row",
			log: `
   Files :   banana    apple
   Bytes :   ???       ???
`,
			wantFiles: 0,
			wantBytes: 0,
		},
		{
			name: "truncated row with one column",
			log: `
   Files :        15
   Bytes :   1234567
`,
			wantFiles: 0,
			wantBytes: 0,
		},
		{
			name: "files parse even when bytes do not",
			log: `
   Files :        15        10         5         0         0         0
   Bytes :   corrupt   corrupt
`,
			wantFiles: 10,
			wantBytes: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, bytes := ParseCounters([]byte(tt.log))
			if files != tt.wantFiles || bytes != tt.wantBytes {
				t.Errorf("ParseCounters() = (%d, %d), want (%d, %d)",
					files, bytes, tt.wantFiles, tt.wantBytes)
			}
		})
	}
}

func TestScaleMultiplier(t *testing.T) {
	tests := []struct {
		token string
		want  int64
		ok    bool
	}{
		{"k", 1 << 10, true},
		{"M", 1 << 20, true},
		{"g", 1 << 30, true},
		{"t", 1 << 40, true},
		{"x", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := scaleMultiplier(tt.token)
		if got != tt.want || ok != tt.ok {
			t.Errorf("scaleMultiplier(%q) = (%d, %v), want (%d, %v)",
				tt.token, got, ok, tt.want, tt.ok)
		}
	}
}
