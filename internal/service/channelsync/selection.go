package channelsync

import (
	"github.com/paulsundquist/yt-aggregator/internal/model"
)

type selectionMode int

const (
	modeAllActive selectionMode = iota
	modeScheduleTier
	modeChannelID
)

// Selection picks the channels a sync run covers. Build one with
// AllActive, ByScheduleTier or ByChannelID.
type Selection struct {
	mode      selectionMode
	tier      model.ScheduleTier
	channelID string
}

// AllActive selects every active channel
func AllActive() Selection {
	return Selection{mode: modeAllActive}
}

// ByScheduleTier selects active channels assigned to tier
func ByScheduleTier(tier model.ScheduleTier) Selection {
	return Selection{mode: modeScheduleTier, tier: tier}
}

// ByChannelID selects a single active channel
func ByChannelID(id string) Selection {
	return Selection{mode: modeChannelID, channelID: id}
}

// String identifies the selection in logs, lock keys and metric groupings
func (s Selection) String() string {
	switch s.mode {
	case modeScheduleTier:
		return "schedule:" + string(s.tier)
	case modeChannelID:
		return "channel:" + s.channelID
	default:
		return "all"
	}
}
