package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var errMissingUserID = errors.New("user_id query parameter is required")

func parseUserID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if raw == "" {
		return 0, errMissingUserID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid user_id %q", raw)
	}
	return id, nil
}

// parsePeriod reads month and year query parameters, defaulting to the
// current calendar month when absent.
func parsePeriod(r *http.Request, now time.Time) (core.Period, error) {
	period := core.PeriodOf(now)

	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("invalid month %q", v)
		}
		period.Month = m
	}
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Period{}, fmt.Errorf("invalid year %q", v)
		}
		period.Year = y
	}

	if err := period.Validate(); err != nil {
		return core.Period{}, err
	}
	return period, nil
}

func parsePathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// decodeBody parses a JSON request body into dst, rejecting oversized
// and trailing-garbage payloads.
func decodeBody(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid request body: trailing data")
	}
	_, _ = io.Copy(io.Discard, body)
	return nil
}

type transactionRequest struct {
	Amount         string `json:"amount"`
	Type           string `json:"type"`
	CategoryID     int64  `json:"category_id"`
	FamilyMemberID int64  `json:"family_member_id"`
	Merchant       string `json:"merchant"`
	Account        string `json:"account"`
	Date           string `json:"date"` // YYYY-MM-DD
	LinkedType     string `json:"linked_type"`
	LinkedID       int64  `json:"linked_id"`
}

func (req transactionRequest) toTransaction(userID int64) (core.Transaction, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}
	return core.Transaction{
		UserID:         userID,
		Amount:         amount,
		Type:           core.TransactionType(req.Type),
		CategoryID:     req.CategoryID,
		FamilyMemberID: req.FamilyMemberID,
		Merchant:       strings.TrimSpace(req.Merchant),
		Account:        strings.TrimSpace(req.Account),
		Date:           date,
		LinkedType:     core.LinkedEntityType(req.LinkedType),
		LinkedID:       req.LinkedID,
	}, nil
}

type categoryRequest struct {
	Name     string `json:"name"`
	IsIncome bool   `json:"is_income"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
}

type budgetRequest struct {
	CategoryID int64  `json:"category_id"`
	Amount     string `json:"amount"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

type familyMemberRequest struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}
