package helpers

import "github.com/cyphera/remote-accounts/internal/constants"

// Stage constants define the possible deployment/runtime environments.
const (
	StageProd  = constants.ProdEnvironment
	StageDev   = "dev"
	StageLocal = "local"
)

// IsValidStage checks if the provided stage string is one of the defined valid stages.
func IsValidStage(stage string) bool {
	switch stage {
	case StageProd, StageDev, StageLocal:
		return true
	default:
		return false
	}
}

// StagePolicy is what a router node may fall back to in a stage.
type StagePolicy struct {
	// BuiltinGenesis allows the node to deploy the local development chain
	// when no genesis file is configured.
	BuiltinGenesis bool
	// MemoryResults allows results to live only in process when no database
	// is configured.
	MemoryResults bool
	// DatabaseFromRDS builds the DSN from the RDS secret instead of DATABASE_URL.
	DatabaseFromRDS bool
	// ReleaseMode runs gin without debug output.
	ReleaseMode bool
}

// PolicyFor returns the policy of stage. Unknown stages get the strictest one.
func PolicyFor(stage string) StagePolicy {
	switch stage {
	case StageLocal:
		return StagePolicy{BuiltinGenesis: true, MemoryResults: true}
	case StageDev:
		return StagePolicy{DatabaseFromRDS: true}
	default:
		return StagePolicy{DatabaseFromRDS: true, ReleaseMode: true}
	}
}
