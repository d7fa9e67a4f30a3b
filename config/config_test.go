package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for k := range AsMap() {
		t.Setenv(k, "")
	}
	LoadConfig()
	assert.False(t, Debug)
	assert.Equal(t, 0, FailProbability)
	assert.Equal(t, time.Second, TimeLimit)
	assert.Equal(t, int64(1), Seed)
	assert.Empty(t, LogPath)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("QTEST_DEBUG", "1")
	t.Setenv("QTEST_COLOR", "true")
	t.Setenv("QTEST_FAIL_PROB", "\"25\"")
	t.Setenv("QTEST_TIME_LIMIT", "250ms")
	t.Setenv("QTEST_LOG", "/tmp/qtest.log")
	t.Setenv("QTEST_SEED", "99")
	LoadConfig()
	assert.True(t, Debug)
	assert.True(t, Color)
	assert.Equal(t, 25, FailProbability)
	assert.Equal(t, 250*time.Millisecond, TimeLimit)
	assert.Equal(t, "/tmp/qtest.log", LogPath)
	assert.Equal(t, int64(99), Seed)
	require.Equal(t, "25", Values()["QTEST_FAIL_PROB"])
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("QTEST_DEBUG", "yes please")
	t.Setenv("QTEST_FAIL_PROB", "150")
	t.Setenv("QTEST_TIME_LIMIT", "2")
	t.Setenv("QTEST_SEED", "abc")
	LoadConfig()
	assert.True(t, Debug, "unparsable debug still enables debug")
	assert.Equal(t, 0, FailProbability)
	assert.Equal(t, 2*time.Second, TimeLimit, "bare numbers are seconds")
	assert.Equal(t, int64(1), Seed)
}
