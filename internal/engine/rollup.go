package engine

import (
	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

// EntityRollup groups expense spend by the external entity type a
// transaction links to (goal, task, project, note, habit).
type EntityRollup struct {
	Type  core.LinkedEntityType
	Count int
	Total decimal.Decimal
}

// MemberRollup groups expense spend by family member.
type MemberRollup struct {
	MemberID int64
	Name     string
	Count    int
	Total    decimal.Decimal
}

// EntityRollups computes count and total per linked entity type over
// the loaded slice. Only expense transactions count: an income
// transaction linked to a goal contributes nothing. All five types are
// reported, in registry order, even when empty.
func EntityRollups(txs []core.Transaction) []EntityRollup {
	counts := make(map[core.LinkedEntityType]int)
	totals := make(map[core.LinkedEntityType]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.LinkedType == "" {
			continue
		}
		counts[tx.LinkedType]++
		totals[tx.LinkedType] = totals[tx.LinkedType].Add(tx.Amount)
	}

	out := make([]EntityRollup, 0, len(core.LinkedEntityTypes))
	for _, et := range core.LinkedEntityTypes {
		out = append(out, EntityRollup{Type: et, Count: counts[et], Total: totals[et]})
	}
	return out
}

// FamilyRollups computes expense count and total per family member.
// Members with no linked expenses are omitted entirely rather than
// reported with zeroes. Result order follows the member list.
func FamilyRollups(txs []core.Transaction, members []core.FamilyMember) []MemberRollup {
	counts := make(map[int64]int)
	totals := make(map[int64]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.FamilyMemberID == 0 {
			continue
		}
		counts[tx.FamilyMemberID]++
		totals[tx.FamilyMemberID] = totals[tx.FamilyMemberID].Add(tx.Amount)
	}

	var out []MemberRollup
	for _, m := range members {
		if counts[m.ID] == 0 {
			continue
		}
		out = append(out, MemberRollup{
			MemberID: m.ID,
			Name:     m.Name,
			Count:    counts[m.ID],
			Total:    totals[m.ID],
		})
	}
	return out
}
