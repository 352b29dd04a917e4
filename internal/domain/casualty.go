package domain

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxCasualties caps the estimate at a plausible upper bound on human
// population exposure.
const MaxCasualties = 8_000_000_000

// joulesPerCasualty converts energy to the illustrative raw casualty count.
const joulesPerCasualty = 1e9

var reportPrinter = message.NewPrinter(language.Ukrainian)

// EstimateCasualties returns an order-of-magnitude casualty estimate in
// [0, MaxCasualties]. Unlike the crater model, the angle factor is an
// unfloored sin θ.
func EstimateCasualties(in ImpactInput) int64 {
	energy := KineticEnergy(in.MassKg, in.SpeedKmS)
	angleFactor := math.Sin(in.AngleDegrees * math.Pi / 180)

	casualties := energy / joulesPerCasualty * angleFactor * in.Region.CasualtyMultiplier()
	if math.IsNaN(casualties) {
		return 0
	}
	return int64(math.Round(clamp(casualties, 0, MaxCasualties)))
}

// CasualtyReport formats the estimate for display, e.g.
// "Орієнтовні жертви: ~1 414 213 562 людей".
func CasualtyReport(in ImpactInput) string {
	return FormatCasualtyReport(EstimateCasualties(in))
}

// FormatCasualtyReport renders an already computed estimate with
// Ukrainian digit grouping.
func FormatCasualtyReport(casualties int64) string {
	return reportPrinter.Sprintf("Орієнтовні жертви: ~%d людей", casualties)
}
