package api

import (
	"github.com/google/uuid"
	"github.com/vocdoni/zk-franchise-proof/types"
)

// NewCensusRequest is the body to create a census. Depth is optional and
// defaults to one level more than the circuit this node proves, so the
// census paths fit the circuit exactly.
type NewCensusRequest struct {
	Depth int `json:"depth,omitempty"`
}

// NewCensus is the response to a new census creation request.
type NewCensus struct {
	Census uuid.UUID `json:"census"`
	Depth  int       `json:"depth"`
}

// CensusRoot is the response to a census root or publish request.
type CensusRoot struct {
	Root types.HexBytes `json:"root"`
}

// CensusParticipant is one voter key to be added to a census.
type CensusParticipant struct {
	Key *types.BigInt `json:"key"`
}

// CensusParticipants is the body to add voter keys to a census.
type CensusParticipants struct {
	Participants []*CensusParticipant `json:"participants"`
}

// Vote is a ballot submission: the three public values of the eligibility
// relation plus the serialized proof. The ballot payload itself travels
// elsewhere; only its hash is bound here.
type Vote struct {
	Root      types.HexBytes `json:"root"`
	Nullifier *types.BigInt  `json:"nullifier"`
	VoteHash  *types.BigInt  `json:"voteHash"`
	Proof     types.HexBytes `json:"proof"`
}
