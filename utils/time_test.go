package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDBTimeRoundTrip(t *testing.T) {
	now := NowUTC()
	parsed, err := ParseDBTime(FormatDBTime(now))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
}

func TestFormatDBTimeZero(t *testing.T) {
	assert.Empty(t, FormatDBTime(time.Time{}))
}

func TestParseDBTimeLegacyFormats(t *testing.T) {
	parsed, err := ParseDBTime("2024-01-02 15:04:05")
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())

	parsed, err = ParseDBTime("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.January, parsed.Month())

	_, err = ParseDBTime("not-a-time")
	assert.Error(t, err)
}

func TestDBTimeOrderingIsLexicographic(t *testing.T) {
	// RFC3339 UTC 문자열은 사전순 비교가 시간순 비교와 같다.
	// 저장소의 조건부 UPDATE가 이 성질에 의존한다.
	earlier := FormatDBTime(NowUTC())
	later := FormatDBTime(NowUTC().Add(time.Hour))
	assert.Less(t, earlier, later)
}
