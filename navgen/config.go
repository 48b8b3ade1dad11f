package navgen

import (
	"github.com/arl/go-detour/recast"
	"github.com/arl/go-detour/sample"
	"github.com/aurelien-rainone/math32"
)

// Settings mirrors recast.BuildSettings but stays independent of it at the
// public API boundary, so callers configuring a build never need to import
// the generator package directly.
type Settings struct {
	CellSize   float32 `yaml:"cellSize"`
	CellHeight float32 `yaml:"cellHeight"`

	AgentHeight   float32 `yaml:"agentHeight"`
	AgentMaxClimb float32 `yaml:"agentMaxClimb"`
	AgentMaxSlope float32 `yaml:"agentMaxSlope"`
	AgentRadius   float32 `yaml:"agentRadius"`

	RegionMinSize   float32 `yaml:"regionMinSize"`
	RegionMergeSize float32 `yaml:"regionMergeSize"`

	EdgeMaxLen   float32 `yaml:"edgeMaxLen"`
	EdgeMaxError float32 `yaml:"edgeMaxError"`
	VertsPerPoly float32 `yaml:"vertsPerPoly"`

	DetailSampleDist     float32 `yaml:"detailSampleDist"`
	DetailSampleMaxError float32 `yaml:"detailSampleMaxError"`

	TileSize int32 `yaml:"tileSize"`
}

// DefaultSettings returns the generator's default tuning, identical to the
// values a namigator-style build uses for a humanoid agent.
func DefaultSettings() Settings {
	return Settings{
		CellSize:             0.3333333,
		CellHeight:           0.3333333,
		AgentHeight:          2.0,
		AgentMaxClimb:        4.0,
		AgentMaxSlope:        50,
		AgentRadius:          0.6,
		RegionMinSize:        8,
		RegionMergeSize:      20,
		EdgeMaxLen:           12,
		EdgeMaxError:         1.3,
		VertsPerPoly:         6,
		DetailSampleDist:     6,
		DetailSampleMaxError: 1,
		TileSize:             32,
	}
}

func (s Settings) toRecastConfig(bmin, bmax [3]float32) recast.Config {
	var cfg recast.Config
	cfg.Cs = s.CellSize
	cfg.Ch = s.CellHeight
	cfg.WalkableSlopeAngle = s.AgentMaxSlope
	cfg.WalkableHeight = int32(math32.Ceil(s.AgentHeight / cfg.Ch))
	cfg.WalkableClimb = int32(math32.Floor(s.AgentMaxClimb / cfg.Ch))
	cfg.WalkableRadius = int32(math32.Ceil(s.AgentRadius / cfg.Cs))
	cfg.MaxEdgeLen = int32(s.EdgeMaxLen / s.CellSize)
	cfg.MaxSimplificationError = s.EdgeMaxError
	cfg.MinRegionArea = int32(s.RegionMinSize * s.RegionMinSize)
	cfg.MergeRegionArea = int32(s.RegionMergeSize * s.RegionMergeSize)
	cfg.MaxVertsPerPoly = int32(s.VertsPerPoly)
	cfg.TileSize = s.TileSize
	cfg.BorderSize = cfg.WalkableRadius + 3
	cfg.Width = cfg.TileSize + cfg.BorderSize*2
	cfg.Height = cfg.TileSize + cfg.BorderSize*2

	if s.DetailSampleDist < 0.9 {
		cfg.DetailSampleDist = 0
	} else {
		cfg.DetailSampleDist = s.CellSize * s.DetailSampleDist
	}
	cfg.DetailSampleMaxError = s.CellHeight * s.DetailSampleMaxError

	copy(cfg.BMin[:], bmin[:])
	copy(cfg.BMax[:], bmax[:])
	cfg.BMin[0] -= float32(cfg.BorderSize) * cfg.Cs
	cfg.BMin[2] -= float32(cfg.BorderSize) * cfg.Cs
	cfg.BMax[0] += float32(cfg.BorderSize) * cfg.Cs
	cfg.BMax[2] += float32(cfg.BorderSize) * cfg.Cs
	return cfg
}

// partitionType pins this repo to monotone partitioning: fastest, and the
// no-holes-or-overlaps guarantee matters more here than watershed's nicer
// tessellation, since tile build time dominates a full-map build.
const partitionType = sample.PartitionMonotone
