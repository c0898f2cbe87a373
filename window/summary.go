package window

// Summary is one closed window. Sums are kept raw; the Avg* helpers derive
// the reported figures. Divisions by a zero duration or distance yield 0.
type Summary struct {
	Index int `json:"index"`
	// Start is the elapsed time in seconds between the first sample and the window start.
	Start      float64 `json:"start_s"`
	Metric     float64 `json:"metric"`
	Duration   float64 `json:"duration_s"`
	Distance   float64 `json:"distance_m"`
	Elevation  float64 `json:"elevation_gain_m"`
	Work       float64 `json:"work_j"`
	HeartBeats float64 `json:"heart_beats"`
	QDH        float64 `json:"qdh"`
}

// AvgPower is the time-weighted mean power in watts.
func (s Summary) AvgPower() float64 {
	return ratio(s.Work, s.Duration)
}

// AvgHeartRate is the time-weighted mean heart rate in bpm.
func (s Summary) AvgHeartRate() float64 {
	return ratio(s.HeartBeats, s.Duration)
}

// DistanceKm returns the window distance in kilometers.
func (s Summary) DistanceKm() float64 {
	return s.Distance / 1000
}

// AvgSpeedKmh returns the mean speed in km/h.
func (s Summary) AvgSpeedKmh() float64 {
	return ratio(s.Distance, s.Duration) * 3.6
}

// GainPerKm returns meters climbed per kilometer covered.
func (s Summary) GainPerKm() float64 {
	return ratio(s.Elevation, s.Distance) * 1000
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
