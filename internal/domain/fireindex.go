package domain

// FireIndexInterpretation carries the human-readable readings accompanying a
// FireIndexResult.
type FireIndexInterpretation struct {
	Fosberg  string `json:"fosberg"`
	Haines   string `json:"haines"`
	Chandler string `json:"chandler"`
	Danger   string `json:"danger"`
}

// FireIndexResult bundles the computed fire-weather indices for one set of
// conditions. Nil index values mean the required inputs were absent; they are
// never defaulted to zero.
type FireIndexResult struct {
	Fosberg  *float64 `json:"fosberg_ffwi"`
	Haines   *int     `json:"haines_approx"`
	Chandler *float64 `json:"chandler_burning_index"`

	DangerClass            string `json:"danger_class"`
	RedFlag                bool   `json:"red_flag"`
	IgnitionProbabilityPct int    `json:"ignition_probability_pct"`

	// FuelMoistureEstimated is true when no fuel-moisture sensor value was
	// supplied and the EMC estimate was used instead.
	FuelMoistureEstimated bool `json:"fuel_moisture_estimated"`

	Interpretation FireIndexInterpretation `json:"interpretation"`
}
