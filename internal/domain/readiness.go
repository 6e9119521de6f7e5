package domain

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/jimiryquai/training-manager/internal/view"
)

// Field schemas of the readiness response. Selection paths address these names.
var (
	ACWRSchema = view.NewSchema("ACWR",
		view.Scalars("acuteLoad", "chronicLoad", "ratio", "isDanger")...)

	ACWRPointSchema = view.NewSchema("ACWRPoint",
		view.Scalars("date", "acuteLoad", "chronicLoad", "ratio", "isDanger")...)

	WellnessMetricSchema = view.NewSchema("WellnessMetric",
		view.Scalars("id", "date", "rhr", "hrvRmssd", "hrvRatio",
			"sleepScore", "fatigueScore", "muscleSorenessScore", "stressScore", "moodScore", "dietScore")...)

	ReadinessSchema = view.NewSchema("Readiness",
		view.Object("acwr", ACWRSchema),
		view.List("acwrHistory", ACWRPointSchema, "date"),
		view.List("wellnessHistory", WellnessMetricSchema, "id"),
	)
)

// ReadinessView is the composed, unprojected readiness response.
type ReadinessView struct {
	ACWR            ACWRResult
	ACWRHistory     []ACWRHistoryPoint
	WellnessHistory []WellnessSample
}

// ReadinessQuery asks for the readiness view of one athlete.
type ReadinessQuery struct {
	Identity    Identity
	AsOf        Day
	HistoryDays int
	// Select lists the paths to return. Nil selects every field; an empty
	// slice selects none.
	Select []string
	// Flatten replaces list connections with their bare node arrays.
	Flatten bool
}

// ReadinessResult is a projected readiness view.
type ReadinessResult struct {
	Record view.Record
	// Current is the ACWR as of the query date, selected or not.
	Current ACWRResult
}

// ReadinessWindows returns the wellness window and the session window for a query.
// The session window reaches 27 days behind the first wellness day so every
// history point sees its full chronic window from a single fetch.
func ReadinessWindows(asOf Day, historyDays int) (wellnessStart, sessionStart Day) {
	back := max(historyDays-1, 0)
	wellnessStart = asOf.AddDays(-back)
	sessionStart = asOf.AddDays(-(chronicWindowDays - 1) - back)
	return wellnessStart, sessionStart
}

// ComposeReadiness fetches wellness and sessions concurrently and joins them
// into one view. Store failures are returned as-is.
func (s *Service) ComposeReadiness(ctx context.Context, id Identity, asOf Day, historyDays int) (ReadinessView, error) {
	wellnessStart, sessionStart := ReadinessWindows(asOf, historyDays)

	var (
		samples  []WellnessSample
		sessions []WorkoutSession
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		samples, err = s.source.ListWellnessSamples(gctx, id.TenantID, id.UserID, wellnessStart, asOf)
		return err
	})
	g.Go(func() error {
		var err error
		sessions, err = s.source.ListWorkoutSessions(gctx, SessionFilter{
			TenantID: id.TenantID,
			UserID:   id.UserID,
			Start:    sessionStart,
			End:      asOf,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return ReadinessView{}, err
	}

	slices.SortStableFunc(samples, func(a, b WellnessSample) int {
		return a.Date.Time().Compare(b.Date.Time())
	})

	points := LoadPoints(sessions)
	out := ReadinessView{
		ACWRHistory:     make([]ACWRHistoryPoint, 0, len(samples)),
		WellnessHistory: make([]WellnessSample, 0, len(samples)),
	}
	for _, sample := range samples {
		sample.HRVRatio = HRVRatio(sample.HeartRateVariability, sample.RestingHeartRate)
		out.WellnessHistory = append(out.WellnessHistory, sample)
		out.ACWRHistory = append(out.ACWRHistory, ACWRHistoryPoint{
			Date:       sample.Date,
			ACWRResult: ComputeACWR(points, points, sample.Date),
		})
	}
	if n := len(out.ACWRHistory); n > 0 {
		out.ACWR = out.ACWRHistory[n-1].ACWRResult
	}
	return out, nil
}

// Readiness composes the view and projects it onto q.Select.
func (s *Service) Readiness(ctx context.Context, q ReadinessQuery) (ReadinessResult, error) {
	composed, err := s.ComposeReadiness(ctx, q.Identity, q.AsOf, q.HistoryDays)
	if err != nil {
		return ReadinessResult{}, err
	}
	rec := projectReadiness(composed, q.Select)
	if q.Flatten {
		rec = view.UnwrapConnectionsInPlace(rec, ReadinessSchema.ListFields()...)
	}
	return ReadinessResult{Record: rec, Current: composed.ACWR}, nil
}

// projectReadiness narrows a composed view to selection. A nil selection
// returns every field; an empty one returns an empty record.
func projectReadiness(v ReadinessView, selection []string) view.Record {
	if selection == nil {
		selection = view.GenerateSelectPaths(ReadinessSchema, "")
	}
	return view.Resolve(v.Record(), ReadinessSchema, selection)
}

// Record converts the view to the generic shape the projection engine consumes.
func (v ReadinessView) Record() view.Record {
	history := make([]view.Record, 0, len(v.ACWRHistory))
	for _, p := range v.ACWRHistory {
		rec := acwrRecord(p.ACWRResult)
		rec["date"] = p.Date.String()
		history = append(history, rec)
	}
	wellness := make([]view.Record, 0, len(v.WellnessHistory))
	for _, w := range v.WellnessHistory {
		wellness = append(wellness, wellnessRecord(w))
	}
	return view.Record{
		"acwr":            acwrRecord(v.ACWR),
		"acwrHistory":     history,
		"wellnessHistory": wellness,
	}
}

func acwrRecord(r ACWRResult) view.Record {
	return view.Record{
		"acuteLoad":   r.AcuteLoad,
		"chronicLoad": r.ChronicLoad,
		"ratio":       r.Ratio,
		"isDanger":    r.IsDanger,
	}
}

func wellnessRecord(w WellnessSample) view.Record {
	return view.Record{
		"id":                  w.ID,
		"date":                w.Date.String(),
		"rhr":                 w.RestingHeartRate,
		"hrvRmssd":            w.HeartRateVariability,
		"hrvRatio":            w.HRVRatio,
		"sleepScore":          optionalScore(w.SleepScore),
		"fatigueScore":        optionalScore(w.FatigueScore),
		"muscleSorenessScore": optionalScore(w.MuscleSorenessScore),
		"stressScore":         optionalScore(w.StressScore),
		"moodScore":           optionalScore(w.MoodScore),
		"dietScore":           optionalScore(w.DietScore),
	}
}

func optionalScore(score *int) any {
	if score == nil {
		return nil
	}
	return *score
}
