package model

import "encoding/json"

// Challenge is one entry of the learner's challenge board, proxied from the
// remote API per user. Progress fields are whatever the upstream computed; the
// service never recalculates them.
type Challenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	XPReward    int    `json:"xp_reward"`
	Target      int    `json:"target"`
	Progress    int    `json:"progress"`
	IsCompleted bool   `json:"is_completed"`
}

// RemoteChallenge mirrors the learning API's challenge rows.
type RemoteChallenge struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	XPReward    int         `json:"xp_reward"`
	Target      int         `json:"target"`
	Progress    int         `json:"progress"`
	IsCompleted bool        `json:"is_completed"`
}

// Canonical converts a remote challenge row into the internal form.
func (rc RemoteChallenge) Canonical() Challenge {
	return Challenge{
		ID:          rc.ID.String(),
		Title:       rc.Title,
		Description: rc.Description,
		Type:        rc.Type,
		XPReward:    rc.XPReward,
		Target:      rc.Target,
		Progress:    rc.Progress,
		IsCompleted: rc.IsCompleted,
	}
}

// CanonicalChallenges converts a remote challenge slice.
func CanonicalChallenges(raw []RemoteChallenge) []Challenge {
	out := make([]Challenge, 0, len(raw))
	for _, rc := range raw {
		out = append(out, rc.Canonical())
	}
	return out
}
