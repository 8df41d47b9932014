package garmin

import (
	"bytes"

	"github.com/tidwall/gjson"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
)

// Meaningful decides whether a raw payload carries actual measured data
// for the given metric type, or is an empty placeholder response. It is
// pure and total: malformed input yields false, never a panic.
//
// This gate determines what is ever persisted; the normalizer assumes
// only meaningful payloads reach it.
func Meaningful(payload []byte, metric domain.MetricType) bool {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	if !gjson.ValidBytes(trimmed) {
		return false
	}

	root := gjson.ParseBytes(trimmed)

	switch {
	case root.IsArray():
		// Bare arrays are placeholder responses regardless of length.
		return false
	case !root.IsObject():
		return false
	case len(root.Map()) == 0:
		return false
	}

	switch metric {
	case domain.MetricHRV, domain.MetricBodyBattery, domain.MetricStress:
		wellness := root.Get("wellnessData")
		return wellness.IsArray() && len(wellness.Array()) > 0

	case domain.MetricSleep:
		daily := root.Get("dailySleepDTO")
		return daily.IsObject() && len(daily.Map()) > 0

	case domain.MetricSteps:
		// Two field names have been seen across upstream schema versions.
		return root.Get("totalSteps").Exists() || root.Get("steps").Exists()

	default:
		// Unknown metric types only need a non-empty object.
		return true
	}
}
