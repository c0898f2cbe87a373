package tcx

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tormoder/fit"
)

// DecodeFIT reads the record messages of a FIT activity as trackpoints, in
// file order. Invalid sentinel values become absent fields. Filter and
// duplicate removal work exactly as in Extract.
func DecodeFIT(r io.Reader, filter Filter) ([]Trackpoint, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	points := make([]Trackpoint, 0, len(activity.Records))
	for i, rec := range activity.Records {
		if rec == nil {
			continue
		}
		tp, err := trackpointFromRecord(rec, i)
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter(tp) {
			continue
		}
		points = append(points, tp)
	}
	return Dedup(points), nil
}

func trackpointFromRecord(rec *fit.RecordMsg, index int) (Trackpoint, error) {
	ts := validTimeOrZero(rec.Timestamp)
	if ts.IsZero() {
		return Trackpoint{}, &FieldError{Kind: ErrMissingRequiredField, Field: "time", Sample: index}
	}
	tp := Trackpoint{Time: ts.UTC()}

	if !rec.PositionLat.Invalid() && !rec.PositionLong.Invalid() {
		tp.set(Latitude, rec.PositionLat.Degrees())
		tp.set(Longitude, rec.PositionLong.Degrees())
	}
	if v, ok := firstFinite(rec.GetEnhancedAltitudeScaled(), rec.GetAltitudeScaled()); ok {
		tp.set(Altitude, v)
	}
	if v, ok := firstFinite(rec.GetDistanceScaled()); ok {
		tp.set(Distance, v)
	}
	if rec.HeartRate != math.MaxUint8 {
		tp.set(HeartRate, float64(rec.HeartRate))
	}
	if rec.Cadence != math.MaxUint8 {
		tp.set(Cadence, float64(rec.Cadence))
	}
	if v, ok := firstFinite(rec.GetEnhancedSpeedScaled(), rec.GetSpeedScaled()); ok && v >= 0 {
		tp.set(Speed, v)
	}
	if rec.Power != math.MaxUint16 {
		tp.set(Power, float64(rec.Power))
	}
	return tp, nil
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func firstFinite(values ...float64) (float64, bool) {
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
	}
	return 0, false
}
