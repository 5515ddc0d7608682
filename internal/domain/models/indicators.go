package models

// IndicatorSnapshot maps indicator name to its value at the last bar of
// a series. Indicators whose lookback exceeds the series length are
// absent from the map, never zero-valued.
type IndicatorSnapshot map[string]float64

// Get returns the named indicator and whether it was computed.
func (s IndicatorSnapshot) Get(name string) (float64, bool) {
	v, ok := s[name]
	return v, ok
}

// GetOr returns the named indicator or def when absent.
func (s IndicatorSnapshot) GetOr(name string, def float64) float64 {
	if v, ok := s[name]; ok {
		return v
	}
	return def
}

// Has reports whether every named indicator was computed.
func (s IndicatorSnapshot) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := s[n]; !ok {
			return false
		}
	}
	return true
}
