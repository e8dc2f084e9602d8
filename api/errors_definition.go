package api

import (
	"fmt"
	"net/http"
)

// Error codes in the 40001-49999 range are the client's fault and return
// HTTP status 400 or 404; codes 50001-59999 are the server's fault and
// return 500. Never reuse or renumber a code, only append.
var (
	ErrResourceNotFound   = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrCensusNotFound     = Error{Code: 40002, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("census not found")}
	ErrInvalidCensusID    = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid census ID")}
	ErrMalformedBody      = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrCensusPublished    = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("census is already published")}
	ErrCensusNotPublished = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("census is not published yet")}
	ErrInvalidProof       = Error{Code: 40007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("eligibility proof verification failed")}
	ErrNullifierSpent     = Error{Code: 40008, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("nullifier already spent")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)
