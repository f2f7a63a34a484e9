package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "short text stays whole",
			text:       "hello world",
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "long text splits",
			text:       strings.Repeat("a", 250),
			chunkSize:  100,
			overlap:    20,
			wantChunks: 3,
		},
		{
			name:       "overlap larger than chunk size falls back",
			text:       strings.Repeat("b", 250),
			chunkSize:  100,
			overlap:    150,
			wantChunks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Errorf("got %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			for i, chunk := range chunks {
				if len(chunk) > tt.chunkSize {
					t.Errorf("chunk %d exceeds chunk size: %d", i, len(chunk))
				}
			}
		})
	}
}

func TestSplitTextPreservesContent(t *testing.T) {
	text := strings.Repeat("0123456789", 30)
	chunks := SplitText(text, 100, 0)

	if got := strings.Join(chunks, ""); got != text {
		t.Errorf("chunks with zero overlap should reassemble the input")
	}
}

func TestSplitTextOverlapRepeatsBoundary(t *testing.T) {
	text := strings.Repeat("x", 150) + strings.Repeat("y", 150)
	chunks := SplitText(text, 200, 50)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	tail := chunks[0][len(chunks[0])-50:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Errorf("second chunk should start with the last 50 chars of the first")
	}
}
