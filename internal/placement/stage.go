package placement

import "github.com/udisondev/toycar/internal/model"

// Stage identifies which provider of the fallback chain produced a result.
type Stage int

const (
	StageRemote Stage = iota
	StageLocal
	StageSynthetic
)

func (s Stage) String() string {
	switch s {
	case StageRemote:
		return "remote"
	case StageLocal:
		return "local"
	case StageSynthetic:
		return "synthetic"
	default:
		return "unknown"
	}
}

// defaultLayout keeps a level playable when no content is reachable.
var defaultLayout = []model.PlacementRecord{
	model.At(-10, 1.5, -10).WithRole("default"),
	model.At(-8, 1.5, -12).WithRole("default"),
	model.At(-12, 1.5, -14).WithRole("finalPrize"),
}

// DefaultRecords returns a copy of the synthetic layout.
func DefaultRecords() []model.PlacementRecord {
	out := make([]model.PlacementRecord, len(defaultLayout))
	copy(out, defaultLayout)
	return out
}
