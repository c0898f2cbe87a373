package window

// increment holds everything one sample pair contributes to a window.
type increment struct {
	group     float64
	duration  float64
	distance  float64
	elevation float64
	work      float64 // W·s
	beats     float64 // bpm·s
}

func (i increment) scale(f float64) increment {
	return increment{
		group:     i.group * f,
		duration:  i.duration * f,
		distance:  i.distance * f,
		elevation: i.elevation * f,
		work:      i.work * f,
		beats:     i.beats * f,
	}
}

// Accumulator sums the increments of the currently open window.
type Accumulator struct {
	Group     float64
	Duration  float64
	Distance  float64
	Elevation float64
	Work      float64
	Beats     float64
}

func (a *Accumulator) add(i increment) {
	a.Group += i.group
	a.Duration += i.duration
	a.Distance += i.distance
	a.Elevation += i.elevation
	a.Work += i.work
	a.Beats += i.beats
}

// Reset zeroes all sums.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
