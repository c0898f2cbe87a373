package window

// QDH accumulates the gradient-stress score: the sum over consecutive
// distance buckets of gain²/distance × 10.
type QDH struct {
	Bucket float64
	Score  float64

	distance  float64
	elevation float64
}

// NewQDH returns an empty accumulator that closes sub-windows every bucket meters.
func NewQDH(bucket float64) QDH {
	return QDH{Bucket: bucket}
}

// Add feeds distance and elevation gain into the open sub-window, flushing
// each time the bucket distance is reached. The increment is split linearly at
// the crossing, so one call may flush several times.
func (q *QDH) Add(distance, elevation float64) {
	if q.Bucket <= 0 {
		q.distance += distance
		q.elevation += elevation
		q.Flush()
		return
	}
	for distance > 0 && q.distance+distance >= q.Bucket {
		f := (q.Bucket - q.distance) / distance
		q.distance = q.Bucket
		q.elevation += elevation * f
		q.Flush()
		distance -= distance * f
		elevation -= elevation * f
	}
	q.distance += distance
	q.elevation += elevation
}

// Flush scores the open sub-window, whatever its size, and starts a new one.
func (q *QDH) Flush() {
	if q.distance > 0 {
		q.Score += q.elevation * q.elevation / q.distance * 10
	}
	q.distance = 0
	q.elevation = 0
}

// Pending returns the distance and elevation of the open sub-window.
func (q QDH) Pending() (distance, elevation float64) {
	return q.distance, q.elevation
}
