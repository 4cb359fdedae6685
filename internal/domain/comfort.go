package domain

// ComfortWeights parameterizes the comfort score. Every constant of the
// formula lives here so none of them is a literal in the ranking code.
//
//	score = Base
//	      - TempWeight     * distance of TempAvg outside [IdealTempLow, IdealTempHigh]
//	      - HumidityWeight * distance of humidity outside [IdealHumidityLow, IdealHumidityHigh]
//	      - PrecipWeight   * precipitation per day (mm)
//
// clamped to [0, Base].
type ComfortWeights struct {
	Base              float64 `yaml:"base"`
	IdealTempLow      float64 `yaml:"ideal_temp_low"`
	IdealTempHigh     float64 `yaml:"ideal_temp_high"`
	TempWeight        float64 `yaml:"temp_weight"`
	IdealHumidityLow  float64 `yaml:"ideal_humidity_low"`
	IdealHumidityHigh float64 `yaml:"ideal_humidity_high"`
	HumidityWeight    float64 `yaml:"humidity_weight"`
	PrecipWeight      float64 `yaml:"precip_weight"`
}

// DefaultComfortWeights returns the stock comfort parameters.
func DefaultComfortWeights() ComfortWeights {
	return ComfortWeights{
		Base:              100,
		IdealTempLow:      18,
		IdealTempHigh:     24,
		TempWeight:        4,
		IdealHumidityLow:  40,
		IdealHumidityHigh: 70,
		HumidityWeight:    0.5,
		PrecipWeight:      2,
	}
}
