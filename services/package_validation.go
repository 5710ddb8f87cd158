package services

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
)

// packageFields are the required create-label fields, in reporting order.
var packageFields = []string{"weight", "length", "width", "height"}

// ParsePackageInfo validates a raw create-label body. Each field may be a
// JSON number or a numeric string. Missing fields are reported before
// invalid ones; forceQuery is the ?force= flag.
func ParsePackageInfo(body []byte, forceQuery bool) (models.PackageInfo, *ServiceError) {
	raw := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return models.PackageInfo{}, ValidationError("Invalid JSON body")
		}
	}

	values := make(map[string]float64, len(packageFields))
	var missing, invalid []string
	for _, field := range packageFields {
		v, present, ok := parsePositive(raw[field])
		switch {
		case !present:
			missing = append(missing, field)
		case !ok:
			invalid = append(invalid, field)
		default:
			values[field] = v
		}
	}

	if len(missing) > 0 {
		return models.PackageInfo{}, ValidationError("Missing required package fields: " + strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return models.PackageInfo{}, ValidationError("Invalid package fields (must be positive numbers): " + strings.Join(invalid, ", "))
	}

	return models.PackageInfo{
		Parcel: models.Parcel{
			WeightKg: values["weight"],
			LengthCm: values["length"],
			WidthCm:  values["width"],
			HeightCm: values["height"],
		},
		Force: forceQuery || parseForce(raw["force"]),
	}, nil
}

// parsePositive reports whether a value is present at all, and whether it is
// a finite number greater than zero.
func parsePositive(raw json.RawMessage) (value float64, present, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return 0, false, false
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, true, false
		}
		return f, true, isPositive(f)
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return 0, true, false
	}
	return f, true, isPositive(f)
}

func isPositive(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0
}

func parseForce(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, _ := strconv.ParseBool(strings.TrimSpace(s))
		return v
	}
	return false
}
