package schedule_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alcortesm/physiofit-radar/app/schedule"
)

func TestParseClock_RoundTrip(t *testing.T) {
	t.Parallel()

	for hour := 0; hour < 24; hour++ {
		for minute := 0; minute < 60; minute++ {
			want := schedule.Clock{Hour: hour, Minute: minute}

			got, err := schedule.ParseClock(want.String())
			if err != nil {
				t.Fatalf("parsing %q: %v", want.String(), err)
			}

			if got != want {
				t.Fatalf("want %#v, got %#v", want, got)
			}
		}
	}
}

func TestParseClock_Valid(t *testing.T) {
	t.Parallel()

	subtests := []struct {
		input string
		want  schedule.Clock
	}{
		{input: "00:00", want: schedule.Clock{}},
		{input: "08:00", want: schedule.Clock{Hour: 8}},
		{input: "8:00", want: schedule.Clock{Hour: 8}},
		{input: "23:59", want: schedule.Clock{Hour: 23, Minute: 59}},
		{input: " 22:00 ", want: schedule.Clock{Hour: 22}},
		{input: "7:5", want: schedule.Clock{Hour: 7, Minute: 5}},
	}

	for _, test := range subtests {
		test := test
		t.Run(test.input, func(t *testing.T) {
			t.Parallel()

			got, err := schedule.ParseClock(test.input)
			if err != nil {
				t.Fatal(err)
			}

			if got != test.want {
				t.Errorf("want %v, got %v", test.want, got)
			}
		})
	}
}

func TestParseClock_Malformed(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		":",
		"08",
		"08.00",
		"08-00",
		"08:00:00",
		"24:00",
		"23:60",
		"99:99",
		"-1:00",
		"+8:00",
		"ab:cd",
		"08:0x",
		"008:00",
		"08: 00",
	}

	for _, input := range inputs {
		input := input
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			t.Parallel()

			got, err := schedule.ParseClock(input)
			if err == nil {
				t.Fatalf("unexpected success, got %v", got)
			}

			if !errors.Is(err, schedule.ErrMalformedClock) {
				t.Errorf("want ErrMalformedClock, got %v", err)
			}
		})
	}
}

func TestClock_UnmarshalText(t *testing.T) {
	t.Parallel()

	var c schedule.Clock
	if err := c.UnmarshalText([]byte("21:30")); err != nil {
		t.Fatal(err)
	}

	want := schedule.Clock{Hour: 21, Minute: 30}
	if c != want {
		t.Errorf("want %v, got %v", want, c)
	}

	if err := c.UnmarshalText([]byte("nope")); err == nil {
		t.Error("unexpected success")
	}

	if c != want {
		t.Errorf("failed unmarshal modified the clock: %v", c)
	}
}
