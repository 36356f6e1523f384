// Package telemetry aggregates per-step simulation statistics and writes
// them, together with final geometry snapshots, as CSV.
package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/sprout/plant"
)

// StepStats holds the aggregated state of one simulation step.
type StepStats struct {
	Step    int     `csv:"step"`
	SimTime float64 `csv:"sim_time"`

	// Tree size at step end
	Organs   int `csv:"organs"`
	Nodes    int `csv:"nodes"`
	Segments int `csv:"segments"`

	// Delta of this step
	NewOrgans int `csv:"new_organs"`
	NewNodes  int `csv:"new_nodes"`
	MovedTips int `csv:"moved_tips"`

	// Summed organ length per kind [cm]
	RootLength float64 `csv:"root_length"`
	StemLength float64 `csv:"stem_length"`
	LeafLength float64 `csv:"leaf_length"`
}

// Collect samples the organism after a completed step.
func Collect(o *plant.Organism, step int) StepStats {
	return StepStats{
		Step:       step,
		SimTime:    o.Time(),
		Organs:     o.NumberOfOrgans(),
		Nodes:      o.NumberOfNodes(),
		Segments:   o.NumberOfSegments(plant.KindAny),
		NewOrgans:  o.NumberOfNewOrgans(),
		NewNodes:   o.NumberOfNewNodes(),
		MovedTips:  len(o.UpdatedNodeIndices()),
		RootLength: o.Summed("length", plant.KindRoot),
		StemLength: o.Summed("length", plant.KindStem),
		LeafLength: o.Summed("length", plant.KindLeaf),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s StepStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", s.Step),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("organs", s.Organs),
		slog.Int("nodes", s.Nodes),
		slog.Int("segments", s.Segments),
		slog.Int("new_organs", s.NewOrgans),
		slog.Int("new_nodes", s.NewNodes),
		slog.Int("moved_tips", s.MovedTips),
		slog.Float64("root_length", s.RootLength),
		slog.Float64("stem_length", s.StemLength),
		slog.Float64("leaf_length", s.LeafLength),
	)
}

// NodeRecord is one node of the final geometry snapshot.
type NodeRecord struct {
	ID int     `csv:"id"`
	X  float64 `csv:"x"`
	Y  float64 `csv:"y"`
	Z  float64 `csv:"z"`
	CT float64 `csv:"ct"`
}

// SegmentRecord is one segment of the final geometry snapshot.
type SegmentRecord struct {
	A       int     `csv:"a"`
	B       int     `csv:"b"`
	CT      float64 `csv:"ct"`
	OrganID int     `csv:"organ_id"`
	Kind    string  `csv:"kind"`
	SubType int     `csv:"subtype"`
}

// SnapshotNodes flattens the organism's dense node arrays into records.
func SnapshotNodes(o *plant.Organism) []NodeRecord {
	nodes := o.Nodes()
	cts := o.NodeCTs()
	recs := make([]NodeRecord, len(nodes))
	for i, n := range nodes {
		recs[i] = NodeRecord{ID: i, X: n.X, Y: n.Y, Z: n.Z, CT: cts[i]}
	}
	return recs
}

// SnapshotSegments flattens the organism's segment list into records.
func SnapshotSegments(o *plant.Organism) []SegmentRecord {
	segs := o.Segments(plant.KindAny)
	cts := o.SegmentCTs(plant.KindAny)
	origins := o.SegmentOrigins(plant.KindAny)
	recs := make([]SegmentRecord, len(segs))
	for i, s := range segs {
		org := origins[i]
		recs[i] = SegmentRecord{
			A:       s.A,
			B:       s.B,
			CT:      cts[i],
			OrganID: org.ID(),
			Kind:    org.OrganKind().String(),
			SubType: org.Param().SubType(),
		}
	}
	return recs
}
