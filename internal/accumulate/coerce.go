package accumulate

import (
	"strconv"
	"strings"

	"github.com/inhuren/agency-scraper/internal/model"
)

// Findings carry typed values from the deterministic tier and loose
// JSON values from the AI tier. These helpers coerce both shapes.

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case model.GeoFocus:
		return string(s), true
	case model.CAOType:
		return string(s), true
	case model.PricingModel:
		return string(s), true
	case model.PricingTransparency:
		return string(s), true
	case model.VolumeSpecialisation:
		return string(s), true
	case model.TakeoverFeeModel:
		return string(s), true
	default:
		return "", false
	}
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "ja", "yes":
			return true, true
		case "false", "nee", "no":
			return false, true
		}
	}
	return false, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

// asStringSlice accepts a single value, a []string or the []any the
// JSON decoder produces; list findings arrive in all three shapes.
func asStringSlice(v any) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		return items, true
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := asString(item)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		if s, ok := asString(v); ok {
			return []string{s}, true
		}
		return nil, false
	}
}

// asOffice accepts the typed OfficeLocation from the locations
// extractor or an AI-tier map with the JSON field names.
func asOffice(v any) (model.OfficeLocation, bool) {
	switch o := v.(type) {
	case model.OfficeLocation:
		return o, true
	case map[string]any:
		city, _ := asString(o["city"])
		province, _ := asString(o["province"])
		street, _ := asString(o["street"])
		postal, _ := asString(o["postal"])
		phone, _ := asString(o["phone"])
		return model.OfficeLocation{City: city, Province: province, Street: street, Postal: postal, Phone: phone}, city != ""
	default:
		return model.OfficeLocation{}, false
	}
}
