package types

const (
	// CensusTreeDepth is the default depth of a census merkle tree,
	// including the leaf level. A tree of this depth holds up to
	// 2^(CensusTreeDepth-1) voters.
	CensusTreeDepth = 21
	// CensusProofLevels is the number of steps of an authentication path
	// for the default census tree depth, and the unrolled depth of the
	// franchise circuit.
	CensusProofLevels = CensusTreeDepth - 1
	// ProcessIDLen is the byte length of a marshaled process ID.
	ProcessIDLen = 32
)
