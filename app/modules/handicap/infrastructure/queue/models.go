package handicapqueue

import "time"

const (
	conditionsQueue = "conditions"
	// conditionsLookupKind is the River job kind for weather lookups.
	conditionsLookupKind = "handicap_conditions_lookup"
)

// ConditionsLookupJob fetches the weather for a recorded round and applies
// it. The round is identified by UUID; the key and tee time pick the hour.
type ConditionsLookupJob struct {
	RoundID  string     `json:"round_id"`
	RoundKey string     `json:"round_key"`
	TeeTime  *time.Time `json:"tee_time,omitempty"`
}

// Kind returns the job type identifier for River
func (ConditionsLookupJob) Kind() string { return conditionsLookupKind }
