package gym_test

import (
	"testing"
	"time"

	"github.com/alcortesm/physiofit-radar/app/gym"
)

func TestOccupancy_Zero(t *testing.T) {
	t.Parallel()

	ts := time.Time{}.Add(time.Second)

	subtests := map[string]struct {
		got    *gym.Occupancy
		source gym.Source
	}{
		"closed": {got: gym.Closed(ts), source: gym.SourceClosed},
		"failed": {got: gym.Failed(ts), source: gym.SourceFailed},
	}

	for name, test := range subtests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if test.got.Percent != 0 {
				t.Errorf("want 0%%, got %f", test.got.Percent)
			}

			if test.got.Source != test.source {
				t.Errorf("want source %q, got %q", test.source, test.got.Source)
			}

			if !test.got.Timestamp.Equal(ts) {
				t.Errorf("want timestamp %v, got %v", ts, test.got.Timestamp)
			}
		})
	}
}

func TestOccupancy_Equal(t *testing.T) {
	t.Parallel()

	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	t1 := time.Time{}.UTC().Add(1 * time.Second)
	t1NY := t1.In(newYork)
	t2 := time.Time{}.Add(2 * time.Second)

	const tolerance = 1e-2

	subtests := []struct {
		name string
		a, b *gym.Occupancy
		want bool
	}{
		{
			name: "same data, empty",
			a:    &gym.Occupancy{},
			b:    &gym.Occupancy{},
			want: true,
		},
		{
			name: "same data",
			a:    &gym.Occupancy{Timestamp: t1, Percent: 37.5, Source: gym.SourceOpen},
			b:    &gym.Occupancy{Timestamp: t1, Percent: 37.5, Source: gym.SourceOpen},
			want: true,
		},
		{
			name: "same data but different timezones",
			a:    &gym.Occupancy{Timestamp: t1, Percent: 37.5},
			b:    &gym.Occupancy{Timestamp: t1NY, Percent: 37.5},
			want: true,
		},
		{
			name: "percent within tolerance",
			a:    &gym.Occupancy{Percent: 37.5},
			b:    &gym.Occupancy{Percent: 37.501},
			want: true,
		},
		{
			name: "different times",
			a:    &gym.Occupancy{Timestamp: t1},
			b:    &gym.Occupancy{Timestamp: t2},
			want: false,
		},
		{
			name: "different percent",
			a:    &gym.Occupancy{Percent: 1},
			b:    &gym.Occupancy{Percent: 2},
			want: false,
		},
		{
			name: "different source",
			a:    gym.Closed(t1),
			b:    gym.Failed(t1),
			want: false,
		},
	}

	for _, test := range subtests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got := test.a.Equal(test.b, tolerance)
			if got != test.want {
				t.Errorf("direct test, want %t, got %t", test.want, got)
			}

			got = test.b.Equal(test.a, tolerance)
			if got != test.want {
				t.Errorf("reverse test, want %t, got %t", test.want, got)
			}
		})
	}
}
