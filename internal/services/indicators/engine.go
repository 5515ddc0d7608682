package indicators

import (
	"fmt"
	"math"

	"SmartTrade/internal/domain/models"
)

const (
	rsiPeriod       = 14
	macdFastPeriod  = 12
	macdSlowPeriod  = 26
	macdSignalSpan  = 9
	adxPeriod       = 14
	atrPeriod       = 14
	bollingerPeriod = 20
	bollingerDev    = 2.0
	stochPeriod     = 14
	stochSmooth     = 3
	volumePeriod    = 20
)

// Engine computes a fixed indicator snapshot from an OHLCV series.
// Pure function of the input series and period configuration: no state,
// no side effects, byte-identical output for identical input.
type Engine struct {
	maPeriods []int
}

// NewEngine creates an indicator engine. maPeriods defaults to 20/50/200.
func NewEngine(maPeriods []int) *Engine {
	if len(maPeriods) == 0 {
		maPeriods = []int{20, 50, 200}
	}
	return &Engine{maPeriods: maPeriods}
}

// MaxPeriod returns the largest configured moving-average period.
func (e *Engine) MaxPeriod() int {
	max := 0
	for _, p := range e.maPeriods {
		if p > max {
			max = p
		}
	}
	return max
}

// Compute derives the indicator snapshot at the last bar of the series.
// Indicators whose lookback exceeds len(bars) are omitted from the map.
func (e *Engine) Compute(bars models.BarSeries) models.IndicatorSnapshot {
	snap := models.IndicatorSnapshot{}
	n := len(bars)
	if n == 0 {
		return snap
	}

	closes := bars.Closes()
	last := closes[n-1]
	snap["price"] = last

	for _, p := range e.maPeriods {
		if p > 0 && n >= p {
			snap[fmt.Sprintf("sma_%d", p)] = mean(closes[n-p:])
		}
	}

	if n >= rsiPeriod+1 {
		snap["rsi"] = wilderRSI(closes, rsiPeriod)
	}

	if n >= macdSlowPeriod {
		macd, signal := macdLine(closes)
		snap["macd"] = macd
		snap["macd_signal"] = signal
		snap["macd_diff"] = macd - signal
	}

	if n >= 2*adxPeriod+1 {
		adx, plusDI, minusDI := wilderADX(bars, adxPeriod)
		snap["adx"] = adx
		snap["adx_pos"] = plusDI
		snap["adx_neg"] = minusDI
	}

	if n >= atrPeriod+1 {
		atr := wilderATR(bars, atrPeriod)
		snap["atr"] = atr
		if last != 0 {
			snap["atr_pct"] = atr / last * 100
		}
	}

	if n >= bollingerPeriod {
		window := closes[n-bollingerPeriod:]
		mid := mean(window)
		sd := stddev(window, mid)
		upper := mid + bollingerDev*sd
		lower := mid - bollingerDev*sd
		if upper != lower {
			snap["bb_position"] = clamp((last-lower)/(upper-lower), 0, 1)
		} else {
			snap["bb_position"] = 0.5
		}
		if mid != 0 {
			snap["bb_width"] = (upper - lower) / mid * 100
		}
	}

	if n >= stochPeriod {
		k, d := stochastic(bars, stochPeriod, stochSmooth)
		snap["stoch_k"] = k
		snap["stoch_d"] = d
	}

	if n >= volumePeriod {
		volSMA := 0.0
		for _, b := range bars[n-volumePeriod:] {
			volSMA += float64(b.Volume)
		}
		volSMA /= volumePeriod
		snap["volume_sma"] = volSMA
		if volSMA > 0 {
			snap["volume_ratio"] = float64(bars[n-1].Volume) / volSMA
		}
	}

	return snap
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation around m.
func stddev(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// wilderRSI computes the Wilder-smoothed RSI at the last close.
// When the smoothed loss is zero the value degrades to 100 (pure gains)
// or a neutral 50 (flat series) instead of propagating a NaN.
func wilderRSI(closes []float64, period int) float64 {
	gains, losses := 0.0, 0.0
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// emaSeries computes an exponential moving average seeded at the first
// value (ewm adjust=false convention).
func emaSeries(xs []float64, span int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

func macdLine(closes []float64) (macd, signal float64) {
	fast := emaSeries(closes, macdFastPeriod)
	slow := emaSeries(closes, macdSlowPeriod)
	diff := make([]float64, len(closes))
	for i := range closes {
		diff[i] = fast[i] - slow[i]
	}
	sig := emaSeries(diff, macdSignalSpan)
	return diff[len(diff)-1], sig[len(sig)-1]
}

func trueRange(cur, prev models.Bar) float64 {
	tr := cur.High - cur.Low
	if hc := math.Abs(cur.High - prev.Close); hc > tr {
		tr = hc
	}
	if lc := math.Abs(cur.Low - prev.Close); lc > tr {
		tr = lc
	}
	return tr
}

func wilderATR(bars models.BarSeries, period int) float64 {
	trs := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		trs = append(trs, trueRange(bars[i], bars[i-1]))
	}
	atr := mean(trs[:period])
	for i := period; i < len(trs); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
	}
	return atr
}

// wilderADX computes ADX with its +DI/-DI directional components using
// Wilder smoothing over true range and directional movement.
func wilderADX(bars models.BarSeries, period int) (adx, plusDI, minusDI float64) {
	n := len(bars)
	trs := make([]float64, n-1)
	plusDM := make([]float64, n-1)
	minusDM := make([]float64, n-1)
	for i := 1; i < n; i++ {
		trs[i-1] = trueRange(bars[i], bars[i-1])
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	smTR := sum(trs[:period])
	smPlus := sum(plusDM[:period])
	smMinus := sum(minusDM[:period])

	di := func() (float64, float64, float64) {
		if smTR == 0 {
			return 0, 0, 0
		}
		p := 100 * smPlus / smTR
		m := 100 * smMinus / smTR
		denom := p + m
		if denom == 0 {
			return p, m, 0
		}
		return p, m, 100 * math.Abs(p-m) / denom
	}

	var dxs []float64
	p, m, dx := di()
	dxs = append(dxs, dx)
	for i := period; i < len(trs); i++ {
		smTR = smTR - smTR/float64(period) + trs[i]
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		p, m, dx = di()
		dxs = append(dxs, dx)
	}

	adx = mean(dxs[:period])
	for i := period; i < len(dxs); i++ {
		adx = (adx*float64(period-1) + dxs[i]) / float64(period)
	}
	return adx, p, m
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}

// stochastic computes %K at the last bar and %D as the mean of the last
// smooth %K values.
func stochastic(bars models.BarSeries, period, smooth int) (k, d float64) {
	n := len(bars)
	kVal := func(end int) float64 {
		lo := math.Inf(1)
		hi := math.Inf(-1)
		for _, b := range bars[end-period+1 : end+1] {
			if b.Low < lo {
				lo = b.Low
			}
			if b.High > hi {
				hi = b.High
			}
		}
		if hi == lo {
			return 50
		}
		return 100 * (bars[end].Close - lo) / (hi - lo)
	}

	k = kVal(n - 1)
	count := smooth
	if avail := n - period + 1; avail < count {
		count = avail
	}
	total := 0.0
	for i := 0; i < count; i++ {
		total += kVal(n - 1 - i)
	}
	d = total / float64(count)
	return k, d
}
