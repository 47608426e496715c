package histogram

import "math"

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// LogTicks returns about count "nice" values for a base-10 logarithmic axis
// spanning [lo, hi]. When the domain covers fewer decades than count, every
// integer multiple 1..9 of each power of ten inside the domain is returned;
// otherwise whole powers of ten are stepped by 1, 2 or 5 decades.
// Ticks come back in the domain's direction. A non-positive end yields nil.
func LogTicks(lo, hi float64, count int) []float64 {
	u, v := lo, hi
	reverse := v < u
	if reverse {
		u, v = v, u
	}
	if !(u > 0) || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}

	i, j := log10(u), log10(v)
	n := float64(count)

	var z []float64
	if j-i < n {
		first, last := int(math.Round(i))-1, int(math.Round(j))+1
		for e := first; e < last; e++ {
			p := math.Pow10(e)
			for k := 1; k < 10; k++ {
				t := p * float64(k)
				if t < u {
					continue
				}
				if t > v {
					break
				}
				z = append(z, t)
			}
		}
	} else {
		for _, e := range LinearTicks(i, j, math.Min(j-i, n)) {
			z = append(z, math.Pow10(int(e)))
		}
	}

	if reverse {
		for l, r := 0, len(z)-1; l < r; l, r = l+1, r-1 {
			z[l], z[r] = z[r], z[l]
		}
	}

	return z
}

// LinearTicks returns about count evenly spaced values between start and
// stop whose step is 1, 2 or 5 times a power of ten.
func LinearTicks(start, stop, count float64) []float64 {
	if start == stop && count > 0 {
		return []float64{start}
	}

	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	step := tickIncrement(start, stop, count)
	if step == 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return nil
	}

	var ticks []float64
	if step > 0 {
		s, e := math.Ceil(start/step), math.Floor(stop/step)
		n := int(math.Ceil(e - s + 1))
		for i := 0; i < n; i++ {
			ticks = append(ticks, (s+float64(i))*step)
		}
	} else {
		s, e := math.Floor(start*step), math.Ceil(stop*step)
		n := int(math.Ceil(s - e + 1))
		for i := 0; i < n; i++ {
			ticks = append(ticks, (s-float64(i))/step)
		}
	}

	if reverse {
		for l, r := 0, len(ticks)-1; l < r; l, r = l+1, r-1 {
			ticks[l], ticks[r] = ticks[r], ticks[l]
		}
	}

	return ticks
}

// tickIncrement returns the tick step for the span. Negative results encode
// fractional steps as the inverse (-10 means 0.1) to keep ticks exact.
func tickIncrement(start, stop, count float64) float64 {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log(step) / math.Ln10)
	errRatio := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}

	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// log10 is exact for integral powers of ten, which math.Log10 is not.
func log10(x float64) float64 {
	l := math.Log10(x)
	if r := math.Round(l); math.Abs(r) <= 308 && math.Pow10(int(r)) == x {
		return r
	}
	return l
}
