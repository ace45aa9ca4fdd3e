package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/inhuren/agency-scraper/internal/model"
)

var (
	omrekenfactorRe = regexp.MustCompile(`(?i)omrekenfactor[:\s=]+(\d+[,.]\d+)`)

	// "= 35,64 (per gewerkt uur)" or "= € 37,13 per gewerkt uur".
	hourlyRateRe = regexp.MustCompile(`(?i)€\s*(\d{1,3}[,.]\d{2})\s*\(?\s*per\s+(?:gewerkt\s+)?uur`)

	takeoverHoursRe = regexp.MustCompile(`(?i)(\d{3,4})\s+(?:gewerkte\s+)?uren?\b`)
	takeoverWeeksRe = regexp.MustCompile(`(?i)(\d{1,3})\s+(?:gewerkte\s+)?weken\b`)
	takeoverPctRe   = regexp.MustCompile(`(?i)(\d{1,2})\s*%`)

	minHoursRe = regexp.MustCompile(`(?i)minimaal\s+(\d{1,2})\s+uur\s+per\s+week`)
	minWeeksRe = regexp.MustCompile(`(?i)minimaal\s+(\d{1,2})\s+weken`)
)

// Pricing extracts omrekenfactor ranges, example hourly rates, pricing
// transparency and takeover terms. Bounds suppress false positives:
// factors outside 1.0-3.0 and rates outside 10-200 are unrelated
// numbers, not prices.
type Pricing struct{}

func (Pricing) Name() string { return "pricing" }

func (Pricing) Extract(page *model.Page) []model.Finding {
	text := page.Text
	low := strings.ToLower(text)
	if low == "" {
		return nil
	}
	canonical := page.Category == model.CategoryPricing

	var out []model.Finding
	emit := func(field string, value any) {
		f := finding(page, field, value)
		f.Canonical = canonical
		out = append(out, f)
	}

	if factors := boundedFloats(omrekenfactorRe, text, 1.0, 3.0); len(factors) > 0 {
		minF, maxF := minMax(factors)
		emit(model.FieldOmrekenfactorMin, minF)
		emit(model.FieldOmrekenfactorMax, maxF)
		emit(model.FieldAvgMarkupFactor, round2((minF+maxF)/2))
		emit(model.FieldPricingModel, model.PricingModelOmrekenfactor)
	}

	if rates := boundedFloats(hourlyRateRe, text, 10, 200); len(rates) > 0 {
		minR, maxR := minMax(rates)
		emit(model.FieldAvgHourlyRateLow, round2(minR))
		emit(model.FieldAvgHourlyRateHigh, round2(maxR))
	}

	switch {
	case strings.Contains(low, "voorbeeld") && strings.Contains(low, "berekening"):
		emit(model.FieldPricingTransparency, model.PricingTransparencyPublicExamples)
		emit(model.FieldExamplePricingHint, "rekenvoorbeelden op tarievenpagina")
	case containsAny(low, "omrekenfactor", "tariefopbouw", "hoe is het tarief opgebouwd"):
		emit(model.FieldPricingTransparency, model.PricingTransparencyExplainerOnly)
	case containsAny(low, "offerte", "vrijblijvend gesprek", "neem contact op voor tarieven"):
		if canonical {
			emit(model.FieldPricingTransparency, model.PricingTransparencyQuoteOnly)
		}
	}

	// "Je betaalt pas wanneer je iemand hebt aangenomen."
	if strings.Contains(low, "no cure no pay") ||
		(strings.Contains(low, "pas wanneer") && strings.Contains(low, "aangenomen")) {
		emit(model.FieldNoCureNoPay, true)
	}

	if m := minHoursRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			emit(model.FieldMinHoursPerWeek, n)
		}
	}
	if m := minWeeksRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			emit(model.FieldMinAssignmentWeeks, n)
		}
	}

	out = append(out, takeoverFindings(page, low, canonical)...)
	return out
}

// takeoverFindings inspects the sentence-window around "overname"
// mentions so an unrelated percentage elsewhere on the page cannot be
// read as a takeover fee.
func takeoverFindings(page *model.Page, low string, canonical bool) []model.Finding {
	idx := strings.Index(low, "overname")
	if idx < 0 {
		idx = strings.Index(low, "overnemen")
	}
	if idx < 0 {
		return nil
	}
	start := idx - 200
	if start < 0 {
		start = 0
	}
	end := idx + 300
	if end > len(low) {
		end = len(low)
	}
	window := low[start:end]

	var out []model.Finding
	emit := func(field string, value any) {
		f := finding(page, field, value)
		f.Canonical = canonical
		out = append(out, f)
	}

	if m := takeoverHoursRe.FindStringSubmatch(window); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			emit(model.FieldTakeoverFreeHours, n)
		}
	} else if m := takeoverWeeksRe.FindStringSubmatch(window); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			emit(model.FieldTakeoverFreeWeeks, n)
		}
	}

	switch {
	case containsAny(window, "kosteloos", "gratis overnemen", "zonder kosten"):
		emit(model.FieldTakeoverFeeModel, model.TakeoverFeeNone)
	case takeoverPctRe.MatchString(window):
		emit(model.FieldTakeoverFeeModel, model.TakeoverFeePercentage)
		emit(model.FieldTakeoverFeeHint, strings.TrimSpace(takeoverPctRe.FindString(window))+" van het bruto jaarsalaris")
	case containsAny(window, "vast bedrag", "vaste fee"):
		emit(model.FieldTakeoverFeeModel, model.TakeoverFeeFlat)
	}
	return out
}

func boundedFloats(re *regexp.Regexp, text string, lo, hi float64) []float64 {
	var out []float64
	for _, m := range re.FindAllStringSubmatch(text, 10) {
		raw := strings.ReplaceAll(m[1], ",", ".")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < lo || v > hi {
			continue
		}
		out = append(out, v)
	}
	return out
}

func minMax(vals []float64) (float64, float64) {
	minV, maxV := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
