package resolve

import "github.com/LetterLobby/LL-Backend/internal/roster"

// Status is the outcome class of a resolution.
type Status string

const (
	StatusResolved   Status = "resolved"
	StatusAmbiguous  Status = "ambiguous"
	StatusUnresolved Status = "unresolved"
)

// Unresolved reasons. These are user-facing outcomes the web form maps
// to its own copy, never raw errors.
const (
	ReasonInvalidFormat = "invalid-format"
	ReasonNotFound      = "not-found"
	ReasonUnavailable   = "geocoding-unavailable"
)

// Candidate is one possible district in an ambiguous outcome, with the
// representatives a letter would go to if the user picks it.
type Candidate struct {
	DistrictID      string                  `json:"district_id"`
	DistrictName    string                  `json:"district_name,omitempty"`
	Representatives []roster.Representative `json:"representatives"`
}

// Result is the uniform resolution contract across all strategies.
//
//   - resolved:   exactly one district; DistrictIDs and Representatives set.
//   - ambiguous:  two or more candidates, sorted by district id; the
//     caller decides whether to prompt the user or auto-pick.
//   - unresolved: Reason says why; nothing else set.
//
// Regional carries upper-chamber representatives derived from the postal
// code's region whenever that derivation succeeds, independent of the
// district outcome.
type Result struct {
	Status          Status                  `json:"status"`
	Reason          string                  `json:"reason,omitempty"`
	DistrictIDs     []string                `json:"district_ids,omitempty"`
	Representatives []roster.Representative `json:"representatives,omitempty"`
	Candidates      []Candidate             `json:"candidates,omitempty"`
	Regional        []roster.Representative `json:"regional_representatives,omitempty"`
}
