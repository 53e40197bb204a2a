package analysis

// Crossings returns the interpolated times at which values rises through
// threshold. times and values must be the same length.
func Crossings(times, values []float64, threshold float64) []float64 {
	var out []float64
	for i := 1; i < len(values) && i < len(times); i++ {
		prev, cur := values[i-1], values[i]
		if prev < threshold && cur >= threshold {
			frac := (threshold - prev) / (cur - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period is the mean spacing of upward crossings of the series mean. It
// needs at least two crossings.
func Period(times, values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	c := Crossings(times, values, mean)
	if len(c) < 2 {
		return 0, false
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1), true
}
