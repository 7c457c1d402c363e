package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/quand/plugin/ai/cache"
)

func TestResultCache(t *testing.T) {
	store := cache.NewLRUCache[*ParsedTemporalInput](10, time.Minute)
	c := NewResultCache(store)
	key := CacheKey{Locale: "fr", Input: "demain"}

	_, ok := c.Get(key)
	assert.False(t, ok)

	month := time.October
	in := &ParsedTemporalInput{Type: TypeSpecificDate, AllowedDates: []string{"2026-10-22"}, Month: &month}
	c.Put(key, in)
	in.AllowedDates[0] = "changed"
	*in.Month = time.May

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"2026-10-22"}, got.AllowedDates)
	assert.Equal(t, time.October, *got.Month)

	got.AllowedDates[0] = "changed again"
	again, _ := c.Get(key)
	assert.Equal(t, []string{"2026-10-22"}, again.AllowedDates)

	_, ok = c.Get(CacheKey{Locale: "en", Input: "demain"})
	assert.False(t, ok)

	assert.Equal(t, 1, store.Invalidate("fr:*"))
	c.Put(key, in)
	c.Clear()
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestParsedTemporalInput_CloneIsDeep(t *testing.T) {
	sat := time.Saturday
	p := &ParsedTemporalInput{
		TargetDates:  []string{"2026-10-24"},
		DayOfWeek:    []time.Weekday{time.Saturday},
		RelativeDays: ptr(3),
		DateNumeric:  []NumericDate{{Day: 24, DayOfWeek: &sat}},
	}
	c := p.Clone()
	require.Equal(t, p, c)

	*c.RelativeDays = 9
	*c.DateNumeric[0].DayOfWeek = time.Monday
	c.TargetDates[0] = "x"
	assert.Equal(t, 3, *p.RelativeDays)
	assert.Equal(t, time.Saturday, *p.DateNumeric[0].DayOfWeek)
	assert.Equal(t, "2026-10-24", p.TargetDates[0])
	assert.Nil(t, (*ParsedTemporalInput)(nil).Clone())
}
