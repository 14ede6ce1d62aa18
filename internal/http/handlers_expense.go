package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

// dashboardViewData feeds the index page: the expense list plus the derived
// balance figures.
type dashboardViewData struct {
	Username         string
	Expenses         []core.ExpenseRecord
	Total            float64
	MonthlyIncome    float64
	RemainingBalance float64
	Flash            string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// "/" is the mux catch-all; anything unrouted lands here.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	acc := accountFrom(r)
	ov, err := s.svc.ListExpensesWithBalance(r.Context(), acc.ID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard load failed",
			log.FieldError, err, log.FieldOperation, log.OpList)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "index.html", dashboardViewData{
		Username:         acc.Username,
		Expenses:         ov.Expenses,
		Total:            ov.Total,
		MonthlyIncome:    ov.MonthlyIncome,
		RemainingBalance: ov.RemainingBalance,
		Flash:            s.popFlash(w, r),
	})
}

// addViewData feeds the add-expense form, which shows the income context
// alongside the inputs.
type addViewData struct {
	MonthlyIncome    float64
	RemainingBalance float64
	Flash            string
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleAddExpenseForm(w, r)
	case http.MethodPost:
		s.handleAddExpenseSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAddExpenseForm(w http.ResponseWriter, r *http.Request) {
	acc := accountFrom(r)
	ov, err := s.svc.ListExpensesWithBalance(r.Context(), acc.ID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Add form load failed",
			log.FieldError, err, log.FieldOperation, log.OpList)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "add.html", addViewData{
		MonthlyIncome:    ov.MonthlyIncome,
		RemainingBalance: ov.RemainingBalance,
		Flash:            s.popFlash(w, r),
	})
}

func (s *Server) handleAddExpenseSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.setFlash(w, "Invalid form submission.")
		http.Redirect(w, r, "/add", http.StatusFound)
		return
	}

	acc := accountFrom(r)
	_, err := s.svc.AddExpense(r.Context(), acc.ID, core.NewExpenseInput{
		Title:      r.Form.Get("title"),
		Category:   r.Form.Get("category"),
		AmountText: r.Form.Get("amount"),
		DateText:   r.Form.Get("date"),
		Note:       r.Form.Get("note"),
		Label:      r.Form.Get("label"),
	})
	switch {
	case err == nil:
		s.setFlash(w, "Expense added successfully.")
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, core.ErrEmptyTitle):
		s.setFlash(w, "Please enter a title for the expense.")
		http.Redirect(w, r, "/add", http.StatusFound)
	case errors.Is(err, core.ErrInvalidNumber):
		s.setFlash(w, "Please enter a valid number for amount.")
		http.Redirect(w, r, "/add", http.StatusFound)
	case errors.Is(err, core.ErrInvalidDate):
		s.setFlash(w, "Invalid date format. Use YYYY-MM-DD or similar.")
		http.Redirect(w, r, "/add", http.StatusFound)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Expense creation failed",
			log.FieldError, err, log.FieldOperation, log.OpCreate)
		s.setFlash(w, "An error occurred. Please try again.")
		http.Redirect(w, r, "/add", http.StatusFound)
	}
}

// handleDeleteExpense removes one record by id. The delete is scoped to the
// caller's account and always reports success to the user.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idText := strings.TrimPrefix(r.URL.Path, "/delete/")
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	acc := accountFrom(r)
	if err := s.svc.DeleteExpense(r.Context(), acc.ID, id); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Expense deletion failed",
			log.FieldError, err, log.FieldOperation, log.OpDelete, log.FieldExpenseID, id)
		s.setFlash(w, "An error occurred. Please try again.")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	s.setFlash(w, "Expense removed.")
	http.Redirect(w, r, "/", http.StatusFound)
}
