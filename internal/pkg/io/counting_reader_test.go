package io

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type errorReader struct {
	data []byte
	err  error
}

func (r *errorReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestCountingReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		reader      io.Reader
		expectedN   int64
		expectedErr error
	}{
		{
			name:      "empty reader",
			reader:    bytes.NewReader(nil),
			expectedN: 0,
		},
		{
			name:      "small data",
			reader:    bytes.NewReader([]byte("hello")),
			expectedN: 5,
		},
		{
			name:      "large data",
			reader:    bytes.NewReader(bytes.Repeat([]byte("a"), 1024*1024)),
			expectedN: 1024 * 1024,
		},
		{
			name:        "error after partial read",
			reader:      &errorReader{data: []byte("abc"), err: errors.New("read error")},
			expectedN:   3,
			expectedErr: errors.New("read error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cr := NewCountingReader(tt.reader)
			_, err := io.Copy(io.Discard, cr)

			if tt.expectedErr != nil {
				if err == nil || err.Error() != tt.expectedErr.Error() {
					t.Errorf("expected error %v, got %v", tt.expectedErr, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if cr.Count() != tt.expectedN {
				t.Errorf("expected count %d, got %d", tt.expectedN, cr.Count())
			}
		})
	}
}
