package api

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/zk-franchise-proof/log"
	"github.com/vocdoni/zk-franchise-proof/prover"
)

// newVote accepts a ballot submission. The proof is verified against the
// three public values and the nullifier is spent on success, so a second
// submission with the same nullifier is rejected.
// POST /votes
func (a *API) newVote(w http.ResponseWriter, r *http.Request) {
	vote := &Vote{}
	if err := json.NewDecoder(r.Body).Decode(vote); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	if vote.Nullifier == nil || vote.VoteHash == nil {
		ErrMalformedBody.WithErr(fmt.Errorf("missing nullifier or vote hash")).Write(w)
		return
	}
	if len(vote.Root) == 0 || len(vote.Proof) == 0 {
		ErrMalformedBody.WithErr(fmt.Errorf("missing root or proof")).Write(w)
		return
	}
	if _, err := a.censusDB.ByRoot(vote.Root); err != nil {
		ErrCensusNotFound.WithErr(err).Write(w)
		return
	}
	proof, err := prover.DecodeProof(vote.Proof)
	if err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	publics := [3]*big.Int{
		arbo.BytesToBigInt(vote.Root),
		vote.Nullifier.MathBigInt(),
		vote.VoteHash.MathBigInt(),
	}
	if err := a.prover.Verify(proof, publics); err != nil {
		ErrInvalidProof.WithErr(err).Write(w)
		return
	}
	if !a.spendNullifier(vote.Nullifier.String()) {
		ErrNullifierSpent.Write(w)
		return
	}
	log.Infow("vote accepted",
		"root", vote.Root.String(),
		"nullifier", vote.Nullifier.String(),
		"voteHash", vote.VoteHash.String())
	httpWriteOK(w)
}
