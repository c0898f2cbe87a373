// Package tcx reads activity trackpoints from TCX documents and FIT files.
package tcx

import (
	"fmt"
	"strings"
	"time"
)

// Tag is a TCX element name without namespace prefix.
type Tag string

const (
	TagActivities       Tag = "Activities"
	TagActivity         Tag = "Activity"
	TagLap              Tag = "Lap"
	TagTrack            Tag = "Track"
	TagTrackpoint       Tag = "Trackpoint"
	TagTime             Tag = "Time"
	TagPosition         Tag = "Position"
	TagLatitudeDegrees  Tag = "LatitudeDegrees"
	TagLongitudeDegrees Tag = "LongitudeDegrees"
	TagAltitudeMeters   Tag = "AltitudeMeters"
	TagDistanceMeters   Tag = "DistanceMeters"
	TagHeartRateBpm     Tag = "HeartRateBpm"
	TagValue            Tag = "Value"
	TagCadence          Tag = "Cadence"
	TagExtensions       Tag = "Extensions"
	TagTPX              Tag = "TPX"
	TagSpeed            Tag = "Speed"
	TagWatts            Tag = "Watts"
	TagRunCadence       Tag = "RunCadence"
)

// Field identifies one of the optional numeric values of a Trackpoint.
type Field int

const (
	Latitude Field = iota
	Longitude
	Altitude
	Distance
	HeartRate
	Cadence
	Speed
	Power
)

// Fields lists every Field in declaration order.
var Fields = [...]Field{Latitude, Longitude, Altitude, Distance, HeartRate, Cadence, Speed, Power}

var fieldPaths = [...][][]Tag{
	Latitude:  {{TagPosition, TagLatitudeDegrees}},
	Longitude: {{TagPosition, TagLongitudeDegrees}},
	Altitude:  {{TagAltitudeMeters}},
	Distance:  {{TagDistanceMeters}},
	HeartRate: {{TagHeartRateBpm, TagValue}},
	Cadence: {
		{TagCadence},
		{TagExtensions, TagTPX, TagRunCadence},
	},
	Speed: {{TagExtensions, TagTPX, TagSpeed}},
	Power: {{TagExtensions, TagTPX, TagWatts}},
}

var fieldNames = [...]string{
	Latitude:  "latitude",
	Longitude: "longitude",
	Altitude:  "altitude",
	Distance:  "distance",
	HeartRate: "heartrate",
	Cadence:   "cadence",
	Speed:     "speed",
	Power:     "power",
}

// Paths returns the alternate tag paths for f, primary first.
func (f Field) Paths() [][]Tag {
	return fieldPaths[f]
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseField maps a field name such as "altitude" or "heartrate" to its Field.
func ParseField(name string) (Field, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "hr", "heart_rate":
		return HeartRate, nil
	case "lat":
		return Latitude, nil
	case "lon", "lng":
		return Longitude, nil
	}
	for _, f := range Fields {
		if fieldNames[f] == n {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown trackpoint field %q", name)
}

// Trackpoint is one timestamped sample of an activity.
type Trackpoint struct {
	Time      time.Time `json:"time"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Distance  *float64  `json:"distance,omitempty"`
	HeartRate *float64  `json:"heartrate,omitempty"`
	Cadence   *float64  `json:"cadence,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Power     *float64  `json:"power,omitempty"`
}

// Value returns the optional value of f, nil when absent.
func (t Trackpoint) Value(f Field) *float64 {
	switch f {
	case Latitude:
		return t.Latitude
	case Longitude:
		return t.Longitude
	case Altitude:
		return t.Altitude
	case Distance:
		return t.Distance
	case HeartRate:
		return t.HeartRate
	case Cadence:
		return t.Cadence
	case Speed:
		return t.Speed
	case Power:
		return t.Power
	}
	return nil
}

// Has reports whether f is present.
func (t Trackpoint) Has(f Field) bool {
	return t.Value(f) != nil
}

// ValueOr returns the value of f, or def when it is absent.
func (t Trackpoint) ValueOr(f Field, def float64) float64 {
	if v := t.Value(f); v != nil {
		return *v
	}
	return def
}

func (t *Trackpoint) set(f Field, v float64) {
	p := &v
	switch f {
	case Latitude:
		t.Latitude = p
	case Longitude:
		t.Longitude = p
	case Altitude:
		t.Altitude = p
	case Distance:
		t.Distance = p
	case HeartRate:
		t.HeartRate = p
	case Cadence:
		t.Cadence = p
	case Speed:
		t.Speed = p
	case Power:
		t.Power = p
	}
}

// Equal reports whether t and o carry the same timestamp and field values.
func (t Trackpoint) Equal(o Trackpoint) bool {
	if !t.Time.Equal(o.Time) {
		return false
	}
	for _, f := range Fields {
		a, b := t.Value(f), o.Value(f)
		if (a == nil) != (b == nil) {
			return false
		}
		if a != nil && *a != *b {
			return false
		}
	}
	return true
}

// Filter decides whether a parsed trackpoint is kept.
type Filter func(Trackpoint) bool

// Require keeps only trackpoints that carry every listed field.
func Require(fields ...Field) Filter {
	want := append([]Field(nil), fields...)
	return func(t Trackpoint) bool {
		for _, f := range want {
			if !t.Has(f) {
				return false
			}
		}
		return true
	}
}

// Dedup drops every trackpoint equal to its immediate predecessor.
func Dedup(points []Trackpoint) []Trackpoint {
	if len(points) < 2 {
		return points
	}
	out := points[:1]
	for _, p := range points[1:] {
		if p.Equal(out[len(out)-1]) {
			continue
		}
		out = append(out, p)
	}
	return out
}
