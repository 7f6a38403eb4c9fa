package memory

import (
	"bytes"
	"testing"
)

func TestEncodeUTF16(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		terminate bool
		want      []byte
	}{
		{"empty", "", false, nil},
		{"terminated empty", "", true, []byte{0, 0}},
		{"ascii", "hi", true, []byte{'h', 0, 'i', 0, 0, 0}},
		{"surrogate pair", "\U0001F600", false, []byte{0x3D, 0xD8, 0x00, 0xDE}},
		{"invalid utf8", "\xff", true, []byte{0xFD, 0xFF, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeUTF16(tt.in, tt.terminate)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got % x, want % x", got, tt.want)
			}
		})
	}
}
