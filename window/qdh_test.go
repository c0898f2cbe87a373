package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQDHStaysOpenBelowBucket(t *testing.T) {
	q := NewQDH(50)
	q.Add(40, 100)

	assert.Zero(t, q.Score)
	d, e := q.Pending()
	assert.Equal(t, 40.0, d)
	assert.Equal(t, 100.0, e)
}

func TestQDHSplitsAtBucketCrossing(t *testing.T) {
	q := NewQDH(50)
	q.Add(40, 100)
	q.Add(20, 0)

	assert.InDelta(t, 100.0*100.0/50*10, q.Score, 1e-9)
	d, e := q.Pending()
	assert.InDelta(t, 10, d, 1e-9)
	assert.InDelta(t, 0, e, 1e-9)
}

func TestQDHFlushesSeveralBucketsInOneIncrement(t *testing.T) {
	q := NewQDH(10)
	q.Add(35, 7)

	// three full 10 m buckets with 2 m each, 5 m with 1 m left open
	assert.InDelta(t, 3*(2.0*2.0/10*10), q.Score, 1e-9)
	d, e := q.Pending()
	assert.InDelta(t, 5, d, 1e-9)
	assert.InDelta(t, 1, e, 1e-9)
}

func TestQDHSplitIncrementMatchesWholeIncrement(t *testing.T) {
	whole := NewQDH(50)
	whole.Add(80, 8)

	split := NewQDH(50)
	split.Add(30, 3)
	split.Add(50, 5)

	assert.InDelta(t, whole.Score, split.Score, 1e-9)
	wd, we := whole.Pending()
	sd, se := split.Pending()
	assert.InDelta(t, wd, sd, 1e-9)
	assert.InDelta(t, we, se, 1e-9)

	whole.Flush()
	split.Flush()
	assert.InDelta(t, whole.Score, split.Score, 1e-9)
}

func TestQDHZeroBucketFlushesEveryIncrement(t *testing.T) {
	q := NewQDH(0)
	q.Add(10, 1)
	q.Add(10, 2)

	assert.InDelta(t, 1.0*1.0/10*10+2.0*2.0/10*10, q.Score, 1e-9)
	d, e := q.Pending()
	assert.Zero(t, d)
	assert.Zero(t, e)
}

func TestQDHFlushWithoutDistanceScoresNothing(t *testing.T) {
	q := NewQDH(50)
	q.Add(0, 5)
	q.Flush()

	assert.Zero(t, q.Score)
}
