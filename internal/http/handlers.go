package http

import (
	"net/http"
	"strconv"
	"strings"

	"bilancio/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	tx, err := req.toTransaction(userID)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}

	created, alert, err := s.ledger.Record(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)

	resp := struct {
		Transaction transactionView `json:"transaction"`
		Alert       *alertView      `json:"alert,omitempty"`
	}{Transaction: toTransactionView(created)}
	if alert != nil {
		v := toAlertView(*alert)
		resp.Alert = &v
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	limit := s.recentLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "invalid limit")
			return
		}
		if n < limit {
			limit = n
		}
	}

	txs, err := s.ledger.Recent(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionViews(txs))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	tx, err := req.toTransaction(userID)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}
	tx.ID = id

	if err := s.ledger.Update(r.Context(), tx); err != nil {
		writeError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	writeJSON(w, http.StatusOK, toTransactionView(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.ledger.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	c := core.Category{
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		IsIncome: req.IsIncome,
		Color:    req.Color,
		Icon:     req.Icon,
	}
	if err := c.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}

	created, err := s.categories.CreateCategory(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	writeJSON(w, http.StatusCreated, toCategoryView(created))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	cats, err := s.categories.ListCategories(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDeleteCategory removes the category only. Transactions keep
// their reference and surface under the Uncategorized bucket.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.categories.DeleteCategory(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}

	b, err := s.budgets.Upsert(r.Context(), core.Budget{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Amount:     amount,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	writeJSON(w, http.StatusOK, toBudgetView(b))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	period, err := parsePeriod(r, s.now())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	budgets, err := s.budgets.ListForPeriod(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetView(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFamilyMember(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req familyMemberRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	m := core.FamilyMember{
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		Relationship: strings.TrimSpace(req.Relationship),
	}
	if err := m.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}

	created, err := s.family.CreateFamilyMember(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, familyMemberView{
		ID: created.ID, Name: created.Name, Relationship: created.Relationship,
	})
}

func (s *Server) handleListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	members, err := s.family.ListFamilyMembers(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]familyMemberView, 0, len(members))
	for _, m := range members {
		out = append(out, familyMemberView{ID: m.ID, Name: m.Name, Relationship: m.Relationship})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteFamilyMember(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.family.DeleteFamilyMember(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.dashboard.Invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := s.dashboardParams(w, r)
	if !ok {
		return
	}
	ov, err := s.dashboard.Overview(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverviewView(ov))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := s.dashboardParams(w, r)
	if !ok {
		return
	}
	ov, err := s.dashboard.Overview(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProgressViews(ov.Progress))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := s.dashboardParams(w, r)
	if !ok {
		return
	}
	ov, err := s.dashboard.Overview(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTrendViews(ov.Trend))
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := s.dashboardParams(w, r)
	if !ok {
		return
	}
	ov, err := s.dashboard.Overview(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBreakdownViews(ov.Breakdown))
}

func (s *Server) handleRollups(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := s.dashboardParams(w, r)
	if !ok {
		return
	}
	ov, err := s.dashboard.Overview(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := struct {
		Entities []entityRollupView `json:"entities"`
		Family   []memberRollupView `json:"family"`
	}{
		Entities: toEntityRollupViews(ov.Entities),
		Family:   toMemberRollupViews(ov.Family),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := s.dashboardParams(w, r)
	if !ok {
		return
	}
	alerts, err := s.dashboard.Alerts(r.Context(), userID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertView(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	limit := 50
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeBadRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	ns, err := s.notifications.ListNotifications(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationViews(ns))
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.notifications.MarkNotificationRead(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dashboardParams(w http.ResponseWriter, r *http.Request) (int64, core.Period, bool) {
	userID, err := parseUserID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return 0, core.Period{}, false
	}
	period, err := parsePeriod(r, s.now())
	if err != nil {
		writeBadRequest(w, err.Error())
		return 0, core.Period{}, false
	}
	return userID, period, true
}
