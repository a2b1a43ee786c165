package usecase

import (
	"fmt"
	"sort"

	"github.com/xavierca1/lead-system/internal/entity"
)

// UnassignedOwner groups leads without an owner in rankings.
const UnassignedOwner = "unassigned"

const suggestionLimit = 5

type Summary struct {
	Total          int                      `json:"total"`
	ByStage        map[entity.Stage]int     `json:"by_stage"`
	ValueByStage   map[entity.Stage]float64 `json:"value_by_stage"`
	TotalValue     float64                  `json:"total_value"`
	AverageValue   float64                  `json:"average_value"`
	ConversionRate float64                  `json:"conversion_rate"`
	Open           int                      `json:"open"`
	Won            int                      `json:"won"`
	Lost           int                      `json:"lost"`
}

type OwnerRank struct {
	Owner      string  `json:"owner"`
	TotalLeads int     `json:"total_leads"`
	TotalValue float64 `json:"total_value"`
	WonLeads   int     `json:"won_leads"`
	WonValue   float64 `json:"won_value"`
}

type SuggestedActions struct {
	FirstContact       []entity.Lead `json:"first_contact"`
	NegotiationNoValue []entity.Lead `json:"negotiation_without_value"`
}

// CountByStage counts leads per stage. Every stage is present, zero or not.
func CountByStage(leads []entity.Lead) map[entity.Stage]int {
	counts := make(map[entity.Stage]int, len(entity.AllStages()))
	for _, s := range entity.AllStages() {
		counts[s] = 0
	}
	for _, l := range leads {
		if _, ok := counts[l.Stage]; ok {
			counts[l.Stage]++
		}
	}
	return counts
}

// SumValueByStage sums predicted values of the leads in stage.
// Missing or malformed values count as zero.
func SumValueByStage(leads []entity.Lead, stage entity.Stage) float64 {
	var sum float64
	for _, l := range leads {
		if l.Stage != stage {
			continue
		}
		if v, ok := leadValue(l); ok {
			sum += v
		}
	}
	return sum
}

func SumValue(leads []entity.Lead) float64 {
	var sum float64
	for _, l := range leads {
		if v, ok := leadValue(l); ok {
			sum += v
		}
	}
	return sum
}

// AverageValue is the ticket médio: total predicted value over the number of leads.
func AverageValue(leads []entity.Lead) float64 {
	if len(leads) == 0 {
		return 0
	}
	return SumValue(leads) / float64(len(leads))
}

// ConversionRate is the percentage of leads in the won stage, 0 for no leads.
func ConversionRate(leads []entity.Lead) float64 {
	if len(leads) == 0 {
		return 0
	}
	won := 0
	for _, l := range leads {
		if l.Stage == entity.StageWon {
			won++
		}
	}
	return float64(won) * 100 / float64(len(leads))
}

// OpenCount is total - won - lost. A negative result means the collection holds
// inconsistent stages and panics.
func OpenCount(leads []entity.Lead) int {
	counts := CountByStage(leads)
	open := len(leads) - counts[entity.StageWon] - counts[entity.StageLost]
	if open < 0 {
		panic(fmt.Sprintf("usecase: negative open count %d", open))
	}
	return open
}

// RankByOwner groups leads by owner, ordered by won value, then total value,
// then owner ascending.
func RankByOwner(leads []entity.Lead) []OwnerRank {
	byOwner := make(map[string]*OwnerRank)
	for _, l := range leads {
		owner := entity.NormalizeEmail(l.Owner)
		if owner == "" {
			owner = UnassignedOwner
		}
		r, ok := byOwner[owner]
		if !ok {
			r = &OwnerRank{Owner: owner}
			byOwner[owner] = r
		}
		v, _ := leadValue(l)
		r.TotalLeads++
		r.TotalValue += v
		if l.Stage == entity.StageWon {
			r.WonLeads++
			r.WonValue += v
		}
	}

	out := make([]OwnerRank, 0, len(byOwner))
	for _, r := range byOwner {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.WonValue != b.WonValue {
			return a.WonValue > b.WonValue
		}
		if a.TotalValue != b.TotalValue {
			return a.TotalValue > b.TotalValue
		}
		return a.Owner < b.Owner
	})
	return out
}

// Summarize derives every dashboard metric from the same lead collection.
func Summarize(leads []entity.Lead) Summary {
	counts := CountByStage(leads)
	values := make(map[entity.Stage]float64, len(counts))
	for s := range counts {
		values[s] = SumValueByStage(leads, s)
	}
	return Summary{
		Total:          len(leads),
		ByStage:        counts,
		ValueByStage:   values,
		TotalValue:     SumValue(leads),
		AverageValue:   AverageValue(leads),
		ConversionRate: ConversionRate(leads),
		Open:           OpenCount(leads),
		Won:            counts[entity.StageWon],
		Lost:           counts[entity.StageLost],
	}
}

// Suggest lists new leads awaiting first contact and negotiations without a
// predicted value, at most five of each.
func Suggest(leads []entity.Lead) SuggestedActions {
	actions := SuggestedActions{
		FirstContact:       []entity.Lead{},
		NegotiationNoValue: []entity.Lead{},
	}
	for _, l := range leads {
		switch l.Stage {
		case entity.StageNew:
			if len(actions.FirstContact) < suggestionLimit {
				actions.FirstContact = append(actions.FirstContact, l)
			}
		case entity.StageNegotiation:
			if v, ok := leadValue(l); (!ok || v == 0) && len(actions.NegotiationNoValue) < suggestionLimit {
				actions.NegotiationNoValue = append(actions.NegotiationNoValue, l)
			}
		}
	}
	return actions
}

func leadValue(l entity.Lead) (float64, bool) {
	if l.Value == nil || !entity.ValidValue(*l.Value) {
		return 0, false
	}
	return *l.Value, true
}
