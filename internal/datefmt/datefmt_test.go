package datefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brads3290/ccviewer/internal/models"
)

const sample = "2025-09-12T10:00:00Z"

func TestFormatLocaleDate_Table(t *testing.T) {
	tests := []struct {
		locale Locale
		target Target
		want   string
	}{
		{LocaleEnglish, TargetMonth, "09/2025"},
		{LocaleEnglish, TargetDay, "12/09/2025"},
		{LocaleEnglish, TargetTime, "12/09/2025 10:00"},
		{LocaleEnglish, TargetFull, "Friday, 12th September, 2025"},
		{LocaleEnglish, TargetTimeOnly, "10:00"},
		{LocaleJapanese, TargetMonth, "2025年9月"},
		{LocaleJapanese, TargetDay, "2025年9月12日"},
		{LocaleJapanese, TargetTime, "2025年9月12日 10:00"},
		{LocaleJapanese, TargetFull, "2025年9月12日 金曜日"},
		{LocaleChinese, TargetDay, "2025年9月12日"},
		{LocaleChinese, TargetFull, "2025年9月12日 星期五"},
		{"fr", TargetMonth, "2025-09"},
		{"fr", TargetDay, "2025-09-12"},
		{"fr", TargetTime, "2025-09-12 10:00"},
		{"fr", TargetFull, "Friday, 2025-09-12"},
		{"", TargetTimeOnly, "10:00"},
		{LocaleEnglish, "", "12/09/2025 10:00"},
	}

	for _, tt := range tests {
		t.Run(string(tt.locale)+"/"+string(tt.target), func(t *testing.T) {
			got := FormatLocaleDate(sample, Options{Locale: tt.locale, Target: tt.target, Location: time.UTC})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatLocaleDate_Invalid(t *testing.T) {
	assert.Equal(t, "", FormatLocaleDate("not a date", Options{Locale: LocaleEnglish, Target: TargetFull}))
	assert.Equal(t, "", FormatLocaleDate("", Options{}))
}

func TestFormatLocaleDate_Location(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	got := FormatLocaleDate("2025-09-12T20:30:00Z", Options{Locale: LocaleEnglish, Target: TargetTime, Location: tokyo})
	assert.Equal(t, "13/09/2025 05:30", got)
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th", 20: "20th",
		21: "21st", 22: "22nd", 23: "23rd", 31: "31st",
	}
	for day, want := range cases {
		assert.Equal(t, want, Ordinal(day))
	}
}

func TestDateFromTimestampAndIsSameDay(t *testing.T) {
	assert.Equal(t, "2025-09-12", DateFromTimestamp("2025-09-12T23:59:59.123Z"))
	assert.Equal(t, "", DateFromTimestamp("garbage"))

	assert.True(t, IsSameDay("2025-09-12T01:00:00Z", "2025-09-12T23:00:00Z"))
	assert.False(t, IsSameDay("2025-09-12T23:00:00Z", "2025-09-13T00:00:00Z"))
	assert.True(t, IsSameDay("garbage", "garbage"))
	assert.False(t, IsSameDay("garbage", "2025-09-12T01:00:00Z"))
}

func TestConversationTimestamp(t *testing.T) {
	_, ok := ConversationTimestamp(&models.SummaryEntry{Summary: "s"})
	assert.False(t, ok)

	ts, ok := ConversationTimestamp(&models.FileHistorySnapshotEntry{
		Snapshot: models.FileHistorySnapshot{Timestamp: sample},
	})
	assert.True(t, ok)
	assert.Equal(t, sample, ts)

	ts, ok = ConversationTimestamp(&models.SystemEntry{BaseEntry: models.BaseEntry{Timestamp: sample}})
	assert.True(t, ok)
	assert.Equal(t, sample, ts)

	ts, ok = ConversationTimestamp(&models.QueueOperationEntry{Timestamp: sample})
	assert.True(t, ok)
	assert.Equal(t, sample, ts)
}
