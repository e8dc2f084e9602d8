package api

const (
	// PingEndpoint is the endpoint for checking the API status.
	PingEndpoint = "/ping"
	// CensusesEndpoint is the endpoint for creating a new census.
	CensusesEndpoint = "/censuses"
	// CensusURLParam is the URL parameter carrying a census ID.
	CensusURLParam = "censusId"
	// CensusEndpoint addresses one census.
	CensusEndpoint = "/censuses/{" + CensusURLParam + "}"
	// CensusParticipantsEndpoint is the endpoint for adding voter keys.
	CensusParticipantsEndpoint = CensusEndpoint + "/participants"
	// CensusRootEndpoint is the endpoint to get the census root.
	CensusRootEndpoint = CensusEndpoint + "/root"
	// CensusSizeEndpoint is the endpoint to get the census size.
	CensusSizeEndpoint = CensusEndpoint + "/size"
	// CensusPublishEndpoint freezes a census and returns its root.
	CensusPublishEndpoint = CensusEndpoint + "/publish"
	// CensusProofEndpoint serves the authentication path of one leaf.
	CensusProofEndpoint = CensusEndpoint + "/proof"
	// VotesEndpoint is the endpoint for submitting a vote.
	VotesEndpoint = "/votes"
)
