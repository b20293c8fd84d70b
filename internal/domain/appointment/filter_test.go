package appointment

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/careslot/internal/domain/practitioner"
)

func sampleSlots() []Slot {
	loc := time.UTC
	smith := practitioner.Practitioner{ID: "1", Name: "Dr. Emily Smith", Specialty: "General Medicine"}
	johnson := practitioner.Practitioner{ID: "2", Name: "Dr. Michael Johnson", Specialty: "Cardiology"}

	var slots []Slot
	for _, day := range []int{13, 14} {
		for _, h := range []int{9, 11, 12, 16, 17} {
			for _, p := range []practitioner.Practitioner{smith, johnson} {
				s := time.Date(2025, 3, day, h, 0, 0, 0, loc)
				slots = append(slots, NewSlot(p, s, s.Add(SlotLength)))
			}
		}
	}
	return slots
}

func TestFilter(t *testing.T) {
	slots := sampleSlots()

	tests := []struct {
		name     string
		criteria Criteria
		want     int
		check    func(t *testing.T, s Slot)
	}{
		{name: "no criteria truncates", criteria: Criteria{}, want: MaxResults},
		{
			name:     "specialty substring case-insensitive",
			criteria: Criteria{Specialty: "CARDIO"},
			want:     10,
			check:    func(t *testing.T, s Slot) { assert.Equal(t, "Cardiology", s.Specialty) },
		},
		{
			name:     "doctor surname",
			criteria: Criteria{DoctorName: "smith", Date: "2025-03-14"},
			want:     5,
			check: func(t *testing.T, s Slot) {
				assert.Equal(t, "1", s.PractitionerID)
				assert.Equal(t, 14, s.Start.Day())
			},
		},
		{name: "invalid date ignored", criteria: Criteria{Specialty: "general", Date: "14/03/2025"}, want: 10},
		{
			name:     "morning",
			criteria: Criteria{TimeBucket: BucketMorning},
			want:     8,
			check:    func(t *testing.T, s Slot) { assert.Less(t, s.Start.Hour(), 12) },
		},
		{
			name:     "afternoon",
			criteria: Criteria{TimeBucket: BucketAfternoon},
			want:     8,
			check: func(t *testing.T, s Slot) {
				assert.GreaterOrEqual(t, s.Start.Hour(), 12)
				assert.Less(t, s.Start.Hour(), 17)
			},
		},
		{
			name:     "evening",
			criteria: Criteria{TimeBucket: BucketEvening},
			want:     4,
			check:    func(t *testing.T, s Slot) { assert.GreaterOrEqual(t, s.Start.Hour(), 17) },
		},
		{name: "unknown bucket ignored", criteria: Criteria{TimeBucket: "lunch", DoctorName: "johnson"}, want: 10},
		{name: "no match", criteria: Criteria{Specialty: "neurology"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(slots, tt.criteria)
			assert.Len(t, got, tt.want)
			if tt.check != nil {
				for _, s := range got {
					tt.check(t, s)
				}
			}
		})
	}
}

func TestFilterPreservesOrderAndInput(t *testing.T) {
	slots := sampleSlots()
	before := fmt.Sprint(slots)

	got := Filter(slots, Criteria{DoctorName: "emily"})
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Start.Before(got[i-1].Start))
	}
	assert.Equal(t, before, fmt.Sprint(slots))
}

func TestFilterIdempotent(t *testing.T) {
	slots := sampleSlots()

	for _, c := range []Criteria{
		{},
		{Specialty: "cardiology"},
		{DoctorName: "smith", Date: "2025-03-14"},
		{TimeBucket: BucketAfternoon, Specialty: "general"},
		{TimeBucket: BucketEvening, Date: "2025-03-13", DoctorName: "johnson"},
		{Specialty: "neurology"},
	} {
		t.Run(fmt.Sprintf("%+v", c), func(t *testing.T) {
			once := Filter(slots, c)
			assert.Equal(t, once, Filter(once, c))
		})
	}
}
