package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthDate(year int, month time.Month) *time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestUpdate_RetirementDate(t *testing.T) {
	t.Run("earliest dated retirement wins", func(t *testing.T) {
		u := Update{
			Availabilities: []Availability{
				{Ring: RingRetirement, Date: monthDate(2026, time.September)},
				{Ring: RingRetirement, Date: monthDate(2026, time.March)},
				{Ring: RingGeneral, Date: monthDate(2026, time.January)},
			},
		}
		retirement := u.RetirementDate()
		require.NotNil(t, retirement)
		assert.Equal(t, *monthDate(2026, time.March), *retirement)
	})

	t.Run("undated retirement entries are ignored", func(t *testing.T) {
		u := Update{
			Availabilities: []Availability{
				{Ring: RingRetirement},
				{Ring: RingRetirement, Date: monthDate(2026, time.June)},
			},
		}
		retirement := u.RetirementDate()
		require.NotNil(t, retirement)
		assert.Equal(t, *monthDate(2026, time.June), *retirement)
	})

	t.Run("no retirement ring", func(t *testing.T) {
		u := Update{
			Availabilities: []Availability{
				{Ring: RingPreview, Date: monthDate(2026, time.June)},
			},
		}
		assert.Nil(t, u.RetirementDate())
	})

	t.Run("only undated retirement", func(t *testing.T) {
		u := Update{Availabilities: []Availability{{Ring: RingRetirement}}}
		assert.Nil(t, u.RetirementDate())
	})
}

func TestMonthFloor(t *testing.T) {
	floored := MonthFloor(time.Date(2026, 9, 17, 13, 45, 12, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), floored)
}

func TestMonthFloor_ConvertsToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*3600)
	floored := MonthFloor(time.Date(2026, 9, 1, 2, 0, 0, 0, zone))

	// 02:00 on the 1st in UTC+10 is still August in UTC.
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), floored)
}

func TestParseMonth(t *testing.T) {
	t.Run("month form", func(t *testing.T) {
		parsed, err := ParseMonth("2026-04")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("day form floors to the month", func(t *testing.T) {
		parsed, err := ParseMonth("2026-04-23")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := ParseMonth("April 2026")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSyncCheckpoint_IsInitial(t *testing.T) {
	epoch := SyncCheckpoint{Watermark: WatermarkEpoch}
	assert.True(t, epoch.IsInitial())

	synced := SyncCheckpoint{Watermark: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	assert.False(t, synced.IsInitial())
}
