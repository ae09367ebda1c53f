package domain

// Channel is a canonical temperature channel name after header normalization.
type Channel string

const (
	ChannelReactor1 Channel = "reactor1"
	ChannelReactor2 Channel = "reactor2"
	ChannelProcess  Channel = "process"
)

// NormalizedRow is one sensor export row after header and date normalization.
// Known channels land in Channels keyed by canonical name; everything the
// synonym table does not recognise is preserved in Extra under its cleaned
// original header so no upstream column is ever lost.
type NormalizedRow struct {
	Date      string
	Time      string
	Timestamp string
	Channels  map[Channel]string
	Extra     map[string]string
}

// DropStats counts rows and values discarded while bucketing an upload.
// Malformed input is dropped and counted, never fatal.
type DropStats struct {
	RowsNoDate     int
	ValuesBadFloat int
}

func (s DropStats) RowsDropped() int {
	return s.RowsNoDate
}
