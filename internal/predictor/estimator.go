// Larder - Smart Kitchen Expiry Prediction and Personalization
// Copyright 2026 Larder Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/larder-app/larder

package predictor

// biologicalFloor is the minimum fraction of the base shelf life any
// estimate may report. Whatever the model says, an item stored correctly
// does not spoil faster than 60% of its nominal duration.
const biologicalFloor = 0.60

// Request carries the features of one prediction.
type Request struct {
	Item     string  `json:"item_name"`
	Category string  `json:"item_category"`
	Storage  string  `json:"storage_type"`
	Quantity float64 `json:"quantity,omitempty"`

	// Environment overrides. Nil means "use the defaults for the storage
	// type".
	TemperatureC *float64 `json:"storage_temperature_c,omitempty"`
	HumidityPct  *float64 `json:"storage_humidity_pct,omitempty"`
}

// Prediction is the baseline estimate the AED engine personalizes.
type Prediction struct {
	// RawDays is the unfloored model output.
	RawDays float64 `json:"raw_pred_days"`

	// BaseDays is the nominal shelf life for the storage condition, used
	// both as the AED clamp envelope reference and as the fallback when
	// no delta applies.
	BaseDays float64 `json:"base_expiry_days"`

	// FinalDays is max(RawDays, 0.6*BaseDays).
	FinalDays float64 `json:"final_days_until_expiry"`

	// Source records which estimator produced RawDays ("local" or
	// "remote").
	Source string `json:"source,omitempty"`
}

// DefaultEnvironment returns the assumed temperature (C) and relative
// humidity (%) for a storage type when the caller supplies none.
func DefaultEnvironment(storage string) (tempC, humidityPct float64) {
	switch CanonicalStorage(storage) {
	case StorageFreezer:
		return -18.0, 90.0
	case StorageFridge:
		return 4.0, 65.0
	default:
		return 28.0, 78.0
	}
}

// Estimator produces baseline predictions from the shelf-life table and
// the storage environment. It is the always-available local fallback for
// the remote model service.
type Estimator struct {
	table *Table
}

// NewEstimator creates a local estimator over the given table.
func NewEstimator(table *Table) *Estimator {
	if table == nil {
		table = NewTable()
	}
	return &Estimator{table: table}
}

// Table exposes the underlying vocabulary for validation and dropdowns.
func (e *Estimator) Table() *Table {
	return e.table
}

// Predict computes a baseline estimate. The heuristic scales the nominal
// shelf life by how far the storage environment deviates from the
// defaults for that storage type: each degree above the default costs 3%
// of the duration, each humidity point above default costs 0.5%. Cooler
// or drier storage extends it, within modest bounds. The result is then
// floored at 60% of the base duration.
func (e *Estimator) Predict(req Request) Prediction {
	storage := CanonicalStorage(req.Storage)
	base := e.table.BaseExpiryDays(req.Item, storage)

	defTemp, defHum := DefaultEnvironment(storage)
	temp, hum := defTemp, defHum
	if req.TemperatureC != nil {
		temp = *req.TemperatureC
	}
	if req.HumidityPct != nil {
		hum = *req.HumidityPct
	}

	tempFactor := clampFactor(1-0.03*(temp-defTemp), 0.40, 1.15)
	humFactor := clampFactor(1-0.005*(hum-defHum), 0.70, 1.10)

	raw := base * tempFactor * humFactor
	final := raw
	if floor := biologicalFloor * base; final < floor {
		final = floor
	}

	return Prediction{
		RawDays:   raw,
		BaseDays:  base,
		FinalDays: final,
		Source:    "local",
	}
}

func clampFactor(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
