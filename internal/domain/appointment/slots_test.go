package appointment

import (
	"testing"
	"time"
)

func clock(t *testing.T, hm string) time.Time {
	t.Helper()
	v, err := ParseClock(hm)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestGenerateSlots(t *testing.T) {
	cases := []struct {
		start, end string
		interval   time.Duration
		want       []string
	}{
		{"09:00", "11:00", 30 * time.Minute, []string{"09:00", "09:30", "10:00", "10:30"}},
		{"09:00", "10:50", 30 * time.Minute, []string{"09:00", "09:30", "10:00"}},
		{"09:00", "09:20", 30 * time.Minute, nil},
		{"09:00", "09:30", 30 * time.Minute, []string{"09:00"}},
		{"14:00", "15:30", 45 * time.Minute, []string{"14:00", "14:45"}},
		{"09:00", "11:00", 0, nil},
	}

	for _, tc := range cases {
		got := GenerateSlots(clock(t, tc.start), clock(t, tc.end), tc.interval)
		if len(got) != len(tc.want) {
			t.Fatalf("%s-%s/%s: expected %d slots, got %d", tc.start, tc.end, tc.interval, len(tc.want), len(got))
		}
		for i := range got {
			if FormatClock(got[i]) != tc.want[i] {
				t.Fatalf("%s-%s: slot %d = %s, want %s", tc.start, tc.end, i, FormatClock(got[i]), tc.want[i])
			}
		}
	}
}

func TestGenerateSlotsCountAndBounds(t *testing.T) {
	start := clock(t, "08:00")
	interval := 30 * time.Minute

	for minutes := 30; minutes <= 600; minutes += 7 {
		end := start.Add(time.Duration(minutes) * time.Minute)
		got := GenerateSlots(start, end, interval)

		want := minutes / 30
		if len(got) != want {
			t.Fatalf("window %dm: expected %d slots, got %d", minutes, want, len(got))
		}
		for i, s := range got {
			if !s.Equal(start.Add(time.Duration(i) * interval)) {
				t.Fatalf("window %dm: slot %d misplaced", minutes, i)
			}
			if s.Add(interval).After(end) {
				t.Fatalf("window %dm: slot %d overflows", minutes, i)
			}
		}

		again := GenerateSlots(start, end, interval)
		if len(again) != len(got) {
			t.Fatal("generation is not deterministic")
		}
	}
}
