package handicaphandlers

import (
	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	handicapevents "github.com/Black-And-White-Club/handicap-bot/pkg/events/handicap"
)

// ToRecordRoundRequest maps a submitted event onto the service request.
func ToRecordRoundRequest(p *handicapevents.RoundSubmittedPayloadV1) handicapservice.RecordRoundRequest {
	req := handicapservice.RecordRoundRequest{
		Date:          p.Date,
		Variant:       p.Variant,
		Nine:          handicapdomain.NineID(p.Nine),
		Source:        p.Source,
		Social:        p.Social,
		TeeTime:       p.TeeTime,
		PCC:           p.PCC,
		WeatherFactor: p.WeatherFactor,
		Scores:        make([]handicapservice.ScoreInput, 0, len(p.Scores)),
	}
	for _, s := range p.Scores {
		req.Scores = append(req.Scores, handicapservice.ScoreInput{
			Player:      s.Player,
			Gross:       s.Gross,
			Holes:       s.Holes,
			IndexAtTime: s.IndexAtTime,
		})
	}
	return req
}

// FromRecordRoundRequest builds the submitted event for a request.
func FromRecordRoundRequest(req handicapservice.RecordRoundRequest) *handicapevents.RoundSubmittedPayloadV1 {
	p := &handicapevents.RoundSubmittedPayloadV1{
		Date:          req.Date,
		Variant:       req.Variant,
		Nine:          string(req.Nine),
		Source:        req.Source,
		Social:        req.Social,
		TeeTime:       req.TeeTime,
		PCC:           req.PCC,
		WeatherFactor: req.WeatherFactor,
		Scores:        make([]handicapevents.ScorePayloadV1, 0, len(req.Scores)),
	}
	for _, s := range req.Scores {
		p.Scores = append(p.Scores, handicapevents.ScorePayloadV1{
			Player:      s.Player,
			Gross:       s.Gross,
			Holes:       s.Holes,
			IndexAtTime: s.IndexAtTime,
		})
	}
	return p
}

// FromRoundRecorded summarises a recorded nine for publishing.
func FromRoundRecorded(r *handicapservice.RoundRecorded) *handicapevents.RoundRecordedPayloadV1 {
	p := &handicapevents.RoundRecordedPayloadV1{
		RoundID:  r.RoundID.String(),
		RoundKey: r.RoundKey,
		Nine:     string(r.Nine),
		Eligible: r.Eligible,
		Scores:   make([]handicapevents.RecordedScorePayloadV1, 0, len(r.Scores)),
	}
	for _, s := range r.Scores {
		p.Scores = append(p.Scores, handicapevents.RecordedScorePayloadV1{
			Player:         s.Player,
			Gross:          s.Gross,
			CourseHandicap: s.CourseHandicap,
			Stableford:     s.Stableford,
			Differential:   s.Differential,
			Index:          s.IndexChange.Current.Value,
			Direction:      string(s.IndexChange.Direction),
		})
	}
	return p
}
