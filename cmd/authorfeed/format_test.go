package main_test

import (
	"testing"

	main "github.com/smach/authorfeed/cmd/authorfeed"
	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bytes int
		want  string
	}{
		{name: "bytes", bytes: 512, want: "512 B"},
		{name: "kilobytes", bytes: 4300, want: "4.2 KB"},
		{name: "megabytes", bytes: 3 * 1024 * 1024, want: "3.0 MB"},
		{name: "zero", bytes: 0, want: "0 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, main.FormatBytes(tt.bytes))
		})
	}
}
