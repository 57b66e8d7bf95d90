package weather

import (
	"errors"
	"fmt"
)

// maxWindowHours caps the analysis window at seven days of hourly data.
// Forecast providers may hand back longer horizons, but anything past a
// week adds noise rather than signal for planting decisions.
const maxWindowHours = 168

var (
	// ErrInsufficientData is returned when fewer than one hour of
	// forecast data is supplied. This is the only analyzer error that
	// propagates to callers.
	ErrInsufficientData = errors.New("insufficient weather data")
)

// HourlySeries holds the raw hourly forecast arrays handed to the
// analyzer. Temperature drives the window length; the other series may
// be shorter and are read defensively.
type HourlySeries struct {
	// Temperature is the hourly air temperature in degrees Celsius.
	Temperature []float64

	// Precipitation is the hourly rainfall in millimetres.
	Precipitation []float64

	// WindSpeed is the hourly wind speed in km/h.
	WindSpeed []float64

	// UVIndex is the hourly UV index.
	UVIndex []float64
}

// SeasonClass is a coarse rainfall-driven classification of the forecast
// window.
type SeasonClass string

const (
	// SeasonWet indicates heavy accumulated rainfall (>70mm).
	SeasonWet SeasonClass = "WET"

	// SeasonModerateWet indicates moderate rainfall (40-70mm).
	SeasonModerateWet SeasonClass = "MODERATE_WET"

	// SeasonTransition indicates light rainfall (20-40mm).
	SeasonTransition SeasonClass = "TRANSITION"

	// SeasonDry indicates little to no rainfall (<20mm).
	SeasonDry SeasonClass = "DRY"
)

// Summary is the compact statistical digest of an hourly forecast. It is
// derived state: recomputed per request and never persisted.
type Summary struct {
	// AverageTemperature is the mean temperature over the window in
	// degrees Celsius.
	AverageTemperature float64

	// TotalRainfall is the accumulated precipitation over the window
	// in millimetres.
	TotalRainfall float64

	// WindSpeed is the mean wind speed over the window in km/h.
	WindSpeed float64

	// UVIndex is the mean UV index over the window.
	UVIndex float64

	// Season classifies the window by accumulated rainfall.
	Season SeasonClass

	// Conditions is a short human-readable label combining the
	// temperature and rainfall bands, e.g. "Warm and Light Rain".
	Conditions string
}

// Analyze reduces an hourly forecast series to a Summary. The window is
// capped at 168 hours. It returns ErrInsufficientData when less than one
// hour of temperature data is present.
func Analyze(series HourlySeries) (Summary, error) {
	hours := len(series.Temperature)
	if hours < 1 {
		return Summary{}, fmt.Errorf("%w: got %d hours of "+
			"temperature data, need at least 1",
			ErrInsufficientData, hours)
	}

	if hours > maxWindowHours {
		hours = maxWindowHours
	}

	summary := Summary{
		AverageTemperature: mean(series.Temperature[:hours]),
		TotalRainfall:      sum(clip(series.Precipitation, hours)),
		WindSpeed:          mean(clip(series.WindSpeed, hours)),
		UVIndex:            mean(clip(series.UVIndex, hours)),
	}

	summary.Season = classifySeason(summary.TotalRainfall)
	summary.Conditions = fmt.Sprintf(
		"%s and %s",
		temperatureBand(summary.AverageTemperature),
		rainfallBand(summary.TotalRainfall),
	)

	return summary, nil
}

// classifySeason maps accumulated rainfall to a SeasonClass using the
// same bands as the rainfall condition label.
func classifySeason(totalRainfall float64) SeasonClass {
	switch {
	case totalRainfall > 70:
		return SeasonWet
	case totalRainfall > 40:
		return SeasonModerateWet
	case totalRainfall > 20:
		return SeasonTransition
	default:
		return SeasonDry
	}
}

// temperatureBand maps an average temperature to its label.
func temperatureBand(avgTemp float64) string {
	switch {
	case avgTemp > 28:
		return "Hot"
	case avgTemp > 23:
		return "Warm"
	case avgTemp > 18:
		return "Mild"
	default:
		return "Cool"
	}
}

// rainfallBand maps accumulated rainfall to its label.
func rainfallBand(totalRainfall float64) string {
	switch {
	case totalRainfall > 70:
		return "Very Wet"
	case totalRainfall > 40:
		return "Moderate Rain"
	case totalRainfall > 20:
		return "Light Rain"
	default:
		return "Dry"
	}
}

// clip bounds a series to at most n entries without panicking on short
// or nil slices.
func clip(series []float64, n int) []float64 {
	if len(series) < n {
		return series
	}
	return series[:n]
}

func sum(series []float64) float64 {
	var total float64
	for _, v := range series {
		total += v
	}
	return total
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return sum(series) / float64(len(series))
}
