package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vocdoni/zk-franchise-proof/census"
	"github.com/vocdoni/zk-franchise-proof/merkletree"
)

// censusFromRequest resolves the census addressed by the request URL.
func (a *API) censusFromRequest(r *http.Request) (*census.CensusRef, Error, bool) {
	censusID, err := uuid.Parse(chi.URLParam(r, CensusURLParam))
	if err != nil {
		return nil, ErrInvalidCensusID.WithErr(err), false
	}
	ref, err := a.censusDB.Load(censusID)
	if err != nil {
		if errors.Is(err, census.ErrCensusNotFound) {
			return nil, ErrCensusNotFound, false
		}
		return nil, ErrGenericInternalServerError.WithErr(err), false
	}
	return ref, Error{}, true
}

// newCensus creates a census.
// POST /censuses
func (a *API) newCensus(w http.ResponseWriter, r *http.Request) {
	req := &NewCensusRequest{}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			ErrMalformedBody.WithErr(err).Write(w)
			return
		}
	}
	depth := req.Depth
	if depth == 0 {
		// by default, size the census for the circuit this node proves
		depth = a.prover.Levels() + 1
	}
	censusID := uuid.New()
	ref, err := a.censusDB.New(censusID, depth)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &NewCensus{Census: censusID, Depth: ref.Depth})
}

// addCensusParticipants appends voter keys to a census.
// POST /censuses/{censusId}/participants
func (a *API) addCensusParticipants(w http.ResponseWriter, r *http.Request) {
	ref, apiErr, ok := a.censusFromRequest(r)
	if !ok {
		apiErr.Write(w)
		return
	}
	var participants CensusParticipants
	if err := json.NewDecoder(r.Body).Decode(&participants); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	if len(participants.Participants) == 0 {
		ErrMalformedBody.WithErr(fmt.Errorf("no participants provided")).Write(w)
		return
	}
	for _, p := range participants.Participants {
		if p.Key == nil {
			ErrMalformedBody.WithErr(fmt.Errorf("participant without key")).Write(w)
			return
		}
		if _, err := ref.Insert(p.Key.MathBigInt()); err != nil {
			switch {
			case errors.Is(err, census.ErrCensusPublished):
				ErrCensusPublished.Write(w)
			case errors.Is(err, merkletree.ErrTreeFull):
				ErrMalformedBody.WithErr(err).Write(w)
			default:
				ErrGenericInternalServerError.WithErr(err).Write(w)
			}
			return
		}
	}
	httpWriteOK(w)
}

// getCensusRoot returns the root of a published census.
// GET /censuses/{censusId}/root
func (a *API) getCensusRoot(w http.ResponseWriter, r *http.Request) {
	ref, apiErr, ok := a.censusFromRequest(r)
	if !ok {
		apiErr.Write(w)
		return
	}
	if !ref.Published {
		ErrCensusNotPublished.Write(w)
		return
	}
	httpWriteJSON(w, &CensusRoot{Root: ref.Root})
}

// getCensusSize returns the number of keys in a census.
// GET /censuses/{censusId}/size
func (a *API) getCensusSize(w http.ResponseWriter, r *http.Request) {
	ref, apiErr, ok := a.censusFromRequest(r)
	if !ok {
		apiErr.Write(w)
		return
	}
	httpWriteJSON(w, map[string]any{"size": ref.Size, "maxSize": ref.MaxSize()})
}

// publishCensus freezes a census and returns its root.
// POST /censuses/{censusId}/publish
func (a *API) publishCensus(w http.ResponseWriter, r *http.Request) {
	ref, apiErr, ok := a.censusFromRequest(r)
	if !ok {
		apiErr.Write(w)
		return
	}
	root, err := ref.Publish()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, &CensusRoot{Root: root})
}

// getCensusProof serves the authentication path of one census leaf.
// GET /censuses/{censusId}/proof?index=N
func (a *API) getCensusProof(w http.ResponseWriter, r *http.Request) {
	ref, apiErr, ok := a.censusFromRequest(r)
	if !ok {
		apiErr.Write(w)
		return
	}
	index, err := strconv.ParseUint(r.URL.Query().Get("index"), 10, 64)
	if err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}
	proof, err := ref.Proof(index)
	if err != nil {
		switch {
		case errors.Is(err, census.ErrCensusNotPublished):
			ErrCensusNotPublished.Write(w)
		case errors.Is(err, merkletree.ErrInvalidIndex):
			ErrResourceNotFound.WithErr(err).Write(w)
		default:
			ErrGenericInternalServerError.WithErr(err).Write(w)
		}
		return
	}
	httpWriteJSON(w, proof)
}

// deleteCensus removes a census.
// DELETE /censuses/{censusId}
func (a *API) deleteCensus(w http.ResponseWriter, r *http.Request) {
	censusID, err := uuid.Parse(chi.URLParam(r, CensusURLParam))
	if err != nil {
		ErrInvalidCensusID.WithErr(err).Write(w)
		return
	}
	if err := a.censusDB.Del(censusID); err != nil {
		if errors.Is(err, census.ErrCensusNotFound) {
			ErrCensusNotFound.Write(w)
			return
		}
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteOK(w)
}
