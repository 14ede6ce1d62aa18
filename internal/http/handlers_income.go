package http

import (
	"errors"
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "set_income.html", authViewData{Flash: s.popFlash(w, r)})
	case http.MethodPost:
		s.handleSetIncomeSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSetIncomeSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.setFlash(w, "Invalid form submission.")
		http.Redirect(w, r, "/set_income", http.StatusFound)
		return
	}

	acc := accountFrom(r)
	err := s.svc.SetMonthlyIncome(r.Context(), acc.ID, r.Form.Get("monthly_income"))
	switch {
	case err == nil:
		s.setFlash(w, "Monthly income updated successfully.")
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, core.ErrInvalidNumber):
		s.setFlash(w, "Please enter a valid number for monthly income.")
		http.Redirect(w, r, "/set_income", http.StatusFound)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Income update failed",
			log.FieldError, err, log.FieldOperation, log.OpSetIncome)
		s.setFlash(w, "An error occurred. Please try again.")
		http.Redirect(w, r, "/set_income", http.StatusFound)
	}
}
