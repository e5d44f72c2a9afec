package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrossMinutesWrapsOvernight(t *testing.T) {
	assert.Equal(t, 480, GrossMinutes(8*60, 16*60))
	assert.Equal(t, 480, GrossMinutes(22*60, 6*60))
	assert.Equal(t, 0, GrossMinutes(9*60, 9*60))
}

func TestCalculateWorkMinutes(t *testing.T) {
	e := &TimeEntry{StartTime: "08:00", EndTime: "17:00", BreakMinutes: 45}
	require.NoError(t, e.CalculateWorkMinutes())
	assert.Equal(t, 495, e.WorkMinutes)

	e = &TimeEntry{StartTime: "08:00", EndTime: "08:20", BreakMinutes: 30}
	require.NoError(t, e.CalculateWorkMinutes())
	assert.Equal(t, 0, e.WorkMinutes)

	e = &TimeEntry{StartTime: "8", EndTime: "17:00"}
	assert.Error(t, e.CalculateWorkMinutes())
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("07:05")
	require.NoError(t, err)
	assert.Equal(t, 425, m)

	for _, bad := range []string{"24:00", "12:60", "ab:cd", "1200"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "8ч", FormatMinutes(480))
	assert.Equal(t, "-12ч", FormatMinutes(-720))
	assert.Equal(t, "1ч 5м", FormatMinutes(65))
}

func TestArchiveJobRecordFailure(t *testing.T) {
	job := &ArchiveJob{Status: ArchiveStatusProcessing}

	job.RecordFailure(errors.New("first"))
	assert.Equal(t, ArchiveStatusPending, job.Status)
	job.Status = ArchiveStatusProcessing
	job.RecordFailure(errors.New("second"))
	assert.Equal(t, 2, job.Attempts)
	assert.Equal(t, ArchiveStatusPending, job.Status)

	job.Status = ArchiveStatusProcessing
	job.RecordFailure(errors.New("third"))
	assert.Equal(t, MaxArchiveAttempts, job.Attempts)
	assert.Equal(t, ArchiveStatusFailed, job.Status)
	assert.Equal(t, "third", *job.LastError)
	assert.True(t, job.IsTerminal())
}

func TestAbsenceTypes(t *testing.T) {
	assert.True(t, AbsenceTypeVacation.IsPaid())
	assert.False(t, AbsenceTypeUnpaid.IsPaid())
	_, ok := LookupAbsenceType(AbsenceType("holiday"))
	assert.False(t, ok)
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(2028, 2)
	assert.Equal(t, NewDate(2028, 2, 1), start)
	assert.Equal(t, NewDate(2028, 2, 29), end)
}
