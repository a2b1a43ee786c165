package entity

import (
	"sort"
	"strings"
)

// Stage is the position a lead occupies in the sales pipeline.
type Stage string

const (
	StageNew         Stage = "new"
	StageInProgress  Stage = "in_progress"
	StageNegotiation Stage = "negotiation"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
)

// pipeline is the ordered part of the stage set. StageLost sits outside it.
var pipeline = [...]Stage{StageNew, StageInProgress, StageNegotiation, StageWon}

// Nomes usados nos documentos antigos (Firestore).
var legacyStages = map[string]Stage{
	"novo":        StageNew,
	"atendimento": StageInProgress,
	"negociacao":  StageNegotiation,
	"faturado":    StageWon,
	"perdido":     StageLost,
}

var stageLabels = map[Stage]string{
	StageNew:         "Novo",
	StageInProgress:  "Em atendimento",
	StageNegotiation: "Negociação",
	StageWon:         "Faturado",
	StageLost:        "Perdido",
}

// Pipeline returns the ordered stages new → in_progress → negotiation → won.
func Pipeline() []Stage {
	out := make([]Stage, len(pipeline))
	copy(out, pipeline[:])
	return out
}

// AllStages returns the pipeline followed by StageLost.
func AllStages() []Stage {
	return append(Pipeline(), StageLost)
}

// ParseStage converts raw input into a Stage. Legacy Portuguese names are accepted.
func ParseStage(raw string) (Stage, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if st := Stage(s); st.Valid() {
		return st, true
	}
	if st, ok := legacyStages[s]; ok {
		return st, true
	}
	return "", false
}

// StoredNames returns every name a row in stage s may carry: the canonical
// value first, then its legacy aliases in lexical order.
func StoredNames(s Stage) []string {
	names := []string{string(s)}
	var legacy []string
	for name, st := range legacyStages {
		if st == s {
			legacy = append(legacy, name)
		}
	}
	sort.Strings(legacy)
	return append(names, legacy...)
}

func (s Stage) Valid() bool {
	if s == StageLost {
		return true
	}
	return indexOf(s) >= 0
}

// Terminal reports whether the stage ends the pipeline (won or lost).
func (s Stage) Terminal() bool {
	return s == StageWon || s == StageLost
}

func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Stage) String() string { return string(s) }

// Advance returns the stage right after s in the pipeline.
// It returns false for won, lost and unknown stages.
func Advance(s Stage) (Stage, bool) {
	i := indexOf(s)
	if i < 0 || i == len(pipeline)-1 {
		return "", false
	}
	return pipeline[i+1], true
}

// Retreat returns the stage right before s in the pipeline.
// It returns false for new, lost and unknown stages.
func Retreat(s Stage) (Stage, bool) {
	i := indexOf(s)
	if i <= 0 {
		return "", false
	}
	return pipeline[i-1], true
}

func indexOf(s Stage) int {
	for i, st := range pipeline {
		if st == s {
			return i
		}
	}
	return -1
}
