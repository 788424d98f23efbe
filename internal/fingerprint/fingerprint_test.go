package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratorRejectsEmptySecret(t *testing.T) {
	_, err := NewGenerator(nil)
	assert.Error(t, err)

	_, err = NewGenerator([]byte{})
	assert.Error(t, err)
}

func TestVisitorDeterministic(t *testing.T) {
	g, err := NewGenerator([]byte("test-secret"))
	require.NoError(t, err)

	a := g.Visitor("203.0.113.7", "Mozilla/5.0", "2024-06-01")
	b := g.Visitor("203.0.113.7", "Mozilla/5.0", "2024-06-01")
	assert.Equal(t, a, b)
	assert.Len(t, a, HashLength)
	assert.Regexp(t, "^[0-9a-f]+$", a)
}

func TestVisitorSensitivity(t *testing.T) {
	g, err := NewGenerator([]byte("test-secret"))
	require.NoError(t, err)

	base := g.Visitor("203.0.113.7", "Mozilla/5.0", "2024-06-01")

	assert.NotEqual(t, base, g.Visitor("203.0.113.8", "Mozilla/5.0", "2024-06-01"), "ip change")
	assert.NotEqual(t, base, g.Visitor("203.0.113.7", "curl/8.0", "2024-06-01"), "user agent change")
	assert.NotEqual(t, base, g.Visitor("203.0.113.7", "Mozilla/5.0", "2024-06-02"), "day change")
}

func TestVisitorKeyed(t *testing.T) {
	g1, err := NewGenerator([]byte("secret-one"))
	require.NoError(t, err)
	g2, err := NewGenerator([]byte("secret-two"))
	require.NoError(t, err)

	assert.NotEqual(t,
		g1.Visitor("203.0.113.7", "Mozilla/5.0", "2024-06-01"),
		g2.Visitor("203.0.113.7", "Mozilla/5.0", "2024-06-01"),
	)
}

func TestVisitorFieldBoundaries(t *testing.T) {
	g, err := NewGenerator([]byte("test-secret"))
	require.NoError(t, err)

	// The separator keeps "ab"+"c" and "a"+"bc" from colliding.
	assert.NotEqual(t,
		g.Visitor("ab", "c", "2024-06-01"),
		g.Visitor("a", "bc", "2024-06-01"),
	)
}

func TestDayIsUTCCalendarDate(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2024, 6, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, "2024-06-02", Day(ts))

	assert.Equal(t, "2024-06-01", Day(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}
