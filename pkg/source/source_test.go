package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "plain utf-8",
			data: []byte("25*.@"),
			want: "25*.@",
		},
		{
			name: "empty",
			data: nil,
			want: "",
		},
		{
			name: "utf-8 bom stripped",
			data: []byte{0xef, 0xbb, 0xbf, '@'},
			want: "@",
		},
		{
			name: "utf-16 little endian",
			data: []byte{0xff, 0xfe, '1', 0, '.', 0, '@', 0},
			want: "1.@",
		},
		{
			name: "utf-16 big endian",
			data: []byte{0xfe, 0xff, 0, '1', 0, '.', 0, '@'},
			want: "1.@",
		},
		{
			name: "utf-16 with newline",
			data: []byte{0xff, 0xfe, 'v', 0, '\n', 0, '@', 0},
			want: "v\n@",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_InvalidUTF8(t *testing.T) {
	_, err := Decode([]byte{'@', 0xc0, 0x80})
	assert.Error(t, err)
}
