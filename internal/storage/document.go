package storage

import (
	"time"

	"github.com/easeaico/feelings/internal/feelings"
)

// document is the serialized shape shared by the file codecs and the postgres
// jsonb column.
type document struct {
	Version   string        `json:"version" yaml:"version"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
	Feelings  []feelingDoc  `json:"feelings" yaml:"feelings"`
	Effects   []effectGroup `json:"effects" yaml:"effects"`
}

type feelingDoc struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

type effectGroup struct {
	Source  string      `json:"source" yaml:"source"`
	Targets []effectDoc `json:"targets" yaml:"targets"`
}

type effectDoc struct {
	Target string  `json:"target" yaml:"target"`
	Ratio  float64 `json:"ratio" yaml:"ratio"`
}

func documentFromSnapshot(snap *feelings.Snapshot) document {
	doc := document{
		Version:   snap.Version,
		Timestamp: snap.Timestamp.UTC(),
		Feelings:  make([]feelingDoc, 0, len(snap.Feelings)),
		Effects:   make([]effectGroup, 0, len(snap.Effects)),
	}
	for _, fv := range snap.Feelings {
		doc.Feelings = append(doc.Feelings, feelingDoc{Name: fv.Name, Value: fv.Value})
	}
	for _, group := range snap.Effects {
		g := effectGroup{Source: group.Source, Targets: make([]effectDoc, 0, len(group.Effects))}
		for _, e := range group.Effects {
			g.Targets = append(g.Targets, effectDoc{Target: e.Target, Ratio: e.Ratio})
		}
		doc.Effects = append(doc.Effects, g)
	}
	return doc
}

func (d document) snapshot() *feelings.Snapshot {
	snap := &feelings.Snapshot{
		Version:   d.Version,
		Timestamp: d.Timestamp,
		Feelings:  make([]feelings.FeelingValue, 0, len(d.Feelings)),
	}
	for _, f := range d.Feelings {
		snap.Feelings = append(snap.Feelings, feelings.FeelingValue{Name: f.Name, Value: f.Value})
	}
	for _, g := range d.Effects {
		group := feelings.EffectGroup{Source: g.Source, Effects: make([]feelings.Effect, 0, len(g.Targets))}
		for _, e := range g.Targets {
			group.Effects = append(group.Effects, feelings.Effect{Target: e.Target, Ratio: e.Ratio})
		}
		snap.Effects = append(snap.Effects, group)
	}
	return snap
}
