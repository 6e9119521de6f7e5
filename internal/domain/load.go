package domain

const (
	acuteWindowDays   = 7
	chronicWindowDays = 28
	// chronicWeeks normalises the 28-day sum to a weekly average regardless of how many days have data.
	chronicWeeks = 4
	// DangerThreshold is the ratio above which load is flagged as elevated injury risk.
	DangerThreshold = 1.5
)

// LoadPoint is the minimum a session needs to contribute to load windows.
type LoadPoint struct {
	Date         Day
	TrainingLoad float64
}

// ACWRResult is the acute:chronic workload ratio for one reference day.
type ACWRResult struct {
	AcuteLoad   float64
	ChronicLoad float64
	Ratio       float64
	IsDanger    bool
}

// ACWRHistoryPoint pairs an ACWRResult with the day it was computed for.
type ACWRHistoryPoint struct {
	Date Day
	ACWRResult
}

// LoadPoints projects sessions onto their date and stored load.
func LoadPoints(sessions []WorkoutSession) []LoadPoint {
	points := make([]LoadPoint, 0, len(sessions))
	for _, s := range sessions {
		points = append(points, LoadPoint{Date: s.Date, TrainingLoad: s.TrainingLoad})
	}
	return points
}

// AcuteLoad sums load over the seven calendar days ending on ref, inclusive.
func AcuteLoad(points []LoadPoint, ref Day) float64 {
	return windowSum(points, ref, acuteWindowDays)
}

// ChronicLoad sums load over the 28 calendar days ending on ref and divides by four.
func ChronicLoad(points []LoadPoint, ref Day) float64 {
	return windowSum(points, ref, chronicWindowDays) / chronicWeeks
}

// IsDangerZone reports whether ratio is strictly above DangerThreshold.
func IsDangerZone(ratio float64) bool {
	return ratio > DangerThreshold
}

// ComputeACWR derives the ratio for ref. Either slice may be over-fetched;
// both are re-filtered to their windows. Zero chronic load yields a zero ratio.
func ComputeACWR(acute, chronic []LoadPoint, ref Day) ACWRResult {
	result := ACWRResult{
		AcuteLoad:   AcuteLoad(acute, ref),
		ChronicLoad: ChronicLoad(chronic, ref),
	}
	if result.ChronicLoad != 0 {
		result.Ratio = result.AcuteLoad / result.ChronicLoad
	}
	result.IsDanger = IsDangerZone(result.Ratio)
	return result
}

func windowSum(points []LoadPoint, ref Day, days int) float64 {
	start := ref.AddDays(-(days - 1))
	var total float64
	for _, p := range points {
		if p.Date.Within(start, ref) {
			total += p.TrainingLoad
		}
	}
	return total
}
