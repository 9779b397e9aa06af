package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	tests := []struct {
		name     string
		a, b     [2]int
		expected bool
	}{
		{"same window", [2]int{0, 60}, [2]int{0, 60}, true},
		{"b starts inside a", [2]int{0, 60}, [2]int{30, 90}, true},
		{"a starts inside b", [2]int{30, 90}, [2]int{0, 60}, true},
		{"b inside a", [2]int{0, 120}, [2]int{30, 60}, true},
		{"touching end to start", [2]int{0, 60}, [2]int{60, 120}, false},
		{"disjoint", [2]int{0, 30}, [2]int{90, 120}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(at(tt.a[0]), at(tt.a[1]), at(tt.b[0]), at(tt.b[1]))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOverlaps_Symmetric(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rapid.Check(t, func(t *rapid.T) {
		aStart := rapid.IntRange(0, 24*60).Draw(t, "aStart")
		aDur := rapid.IntRange(MinDurationMinutes, 240).Draw(t, "aDur")
		bStart := rapid.IntRange(0, 24*60).Draw(t, "bStart")
		bDur := rapid.IntRange(MinDurationMinutes, 240).Draw(t, "bDur")

		a := Session{ScheduledDate: base.Add(time.Duration(aStart) * time.Minute), Duration: aDur}
		b := Session{ScheduledDate: base.Add(time.Duration(bStart) * time.Minute), Duration: bDur}

		ab := Overlaps(a.ScheduledDate, a.EndsAt(), b.ScheduledDate, b.EndsAt())
		ba := Overlaps(b.ScheduledDate, b.EndsAt(), a.ScheduledDate, a.EndsAt())
		if ab != ba {
			t.Fatalf("overlap not symmetric: a=%d+%d b=%d+%d", aStart, aDur, bStart, bDur)
		}

		startsInside := (bStart >= aStart && bStart < aStart+aDur) || (aStart >= bStart && aStart < bStart+bDur)
		if ab != startsInside {
			t.Fatalf("overlap %v, start-inside %v: a=%d+%d b=%d+%d", ab, startsInside, aStart, aDur, bStart, bDur)
		}
	})
}

func TestSessionRequest_Validate(t *testing.T) {
	valid := SessionRequest{
		TrainerID:     2,
		MemberID:      5,
		Type:          "PERSONAL_TRAINING",
		ScheduledDate: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
		Duration:      60,
	}

	tests := []struct {
		name    string
		mutate  func(r *SessionRequest)
		wantErr bool
	}{
		{"valid", func(r *SessionRequest) {}, false},
		{"short duration", func(r *SessionRequest) { r.Duration = 10 }, true},
		{"unknown type", func(r *SessionRequest) { r.Type = "YOGA" }, true},
		{"missing date", func(r *SessionRequest) { r.ScheduledDate = time.Time{} }, true},
		{"negative price", func(r *SessionRequest) { r.PriceCents = -1 }, true},
		{"missing trainer", func(r *SessionRequest) { r.TrainerID = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseStatusAndType(t *testing.T) {
	s, ok := ParseStatus("in_progress")
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, s)

	_, ok = ParseStatus("paused")
	assert.False(t, ok)

	ty, ok := ParseType("nutrition_counseling")
	assert.True(t, ok)
	assert.Equal(t, TypeNutritionCounseling, ty)
}
