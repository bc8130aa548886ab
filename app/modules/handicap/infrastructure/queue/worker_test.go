package handicapqueue

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	gotDate time.Time
	gotTee  *time.Time
	cond    handicapdomain.Conditions
	err     error
}

func (f *fakeProvider) ConditionsAt(ctx context.Context, date time.Time, teeTime *time.Time) (handicapdomain.Conditions, error) {
	f.gotDate, f.gotTee = date, teeTime
	return f.cond, f.err
}

type fakeApplier struct {
	calls int
	err   error
}

func (f *fakeApplier) ApplyConditions(ctx context.Context, roundID uuid.UUID, c handicapdomain.Conditions) (*handicapservice.ConditionsApplied, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	pcc := handicapdomain.EstimatePCC(c)
	return &handicapservice.ConditionsApplied{RoundID: roundID, Conditions: c, PCC: &pcc, Updated: 3}, nil
}

func newJob(args ConditionsLookupJob) *river.Job[ConditionsLookupJob] {
	return &river.Job[ConditionsLookupJob]{
		JobRow: &rivertype.JobRow{ID: 1, Attempt: 1, Kind: conditionsLookupKind},
		Args:   args,
	}
}

func TestConditionsLookupWorker(t *testing.T) {
	roundID := uuid.New()
	tee := time.Date(2025, time.December, 21, 21, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		args        ConditionsLookupJob
		providerErr error
		applierErr  error
		wantErr     bool
		wantApplied int
	}{
		{
			name:        "applies conditions",
			args:        ConditionsLookupJob{RoundID: roundID.String(), RoundKey: "2025-12-22-back9", TeeTime: &tee},
			wantApplied: 1,
		},
		{
			name:        "weather failure is retried",
			args:        ConditionsLookupJob{RoundID: roundID.String(), RoundKey: "2025-12-22"},
			providerErr: errors.New("timeout"),
			wantErr:     true,
		},
		{
			name:        "deleted round cancels the job",
			args:        ConditionsLookupJob{RoundID: roundID.String(), RoundKey: "2025-12-22"},
			applierErr:  handicapservice.ErrRoundNotFound,
			wantErr:     true,
			wantApplied: 1,
		},
		{
			name:    "bad round id cancels the job",
			args:    ConditionsLookupJob{RoundID: "nope", RoundKey: "2025-12-22"},
			wantErr: true,
		},
		{
			name:    "bad round key cancels the job",
			args:    ConditionsLookupJob{RoundID: roundID.String(), RoundKey: "yesterday"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{cond: handicapdomain.Conditions{RainMm: 12}, err: tt.providerErr}
			applier := &fakeApplier{err: tt.applierErr}
			worker := NewConditionsLookupWorker(slog.Default(), provider, applier)

			err := worker.Work(context.Background(), newJob(tt.args))
			assert.Equal(t, tt.wantApplied, applier.calls)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, time.Date(2025, time.December, 22, 0, 0, 0, 0, time.UTC), provider.gotDate)
				assert.Equal(t, &tee, provider.gotTee)
				return
			}

			require.Error(t, err)
		})
	}
}

func TestConditionsLookupJobKind(t *testing.T) {
	assert.Equal(t, "handicap_conditions_lookup", ConditionsLookupJob{}.Kind())
}
