package timefmt_test

import (
	"testing"

	"github.com/m-mizutani/ci-preview/pkg/utils/timefmt"
	"github.com/m-mizutani/gt"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{seconds: 0, want: ""},
		{seconds: -5, want: ""},
		{seconds: 1, want: "1 second"},
		{seconds: 45, want: "45 seconds"},
		{seconds: 60, want: "1 minute"},
		{seconds: 61, want: "1 minute and 1 second"},
		{seconds: 125, want: "2 minutes and 5 seconds"},
		{seconds: 3600, want: "1 hour"},
		{seconds: 3601, want: "1 hour and 1 second"},
		{seconds: 3661, want: "1 hour, 1 minute and 1 second"},
		{seconds: 7200, want: "2 hours"},
		{seconds: 7320, want: "2 hours, 2 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			gt.Equal(t, timefmt.FormatDuration(tt.seconds), tt.want)
		})
	}
}
