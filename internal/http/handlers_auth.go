package http

import (
	"errors"
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

// authViewData is the payload for the anonymous auth pages.
type authViewData struct {
	Flash string
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "register.html", authViewData{Flash: s.popFlash(w, r)})
	case http.MethodPost:
		s.handleRegisterSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.setFlash(w, "Invalid form submission.")
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	username := r.Form.Get("username")
	password := r.Form.Get("password")
	confirm := r.Form.Get("confirm_password")

	_, err := s.svc.Register(r.Context(), username, password, confirm)
	switch {
	case err == nil:
		s.setFlash(w, "Registration successful, please log in.")
		http.Redirect(w, r, "/login", http.StatusFound)
	case errors.Is(err, core.ErrPasswordMismatch):
		s.setFlash(w, "Passwords do not match.")
		http.Redirect(w, r, "/register", http.StatusFound)
	case errors.Is(err, core.ErrDuplicateUsername):
		s.setFlash(w, "Username already exists. Please choose another one.")
		http.Redirect(w, r, "/register", http.StatusFound)
	case errors.Is(err, core.ErrInvalidCredentials):
		s.setFlash(w, "Username and password are required.")
		http.Redirect(w, r, "/register", http.StatusFound)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Registration failed",
			log.FieldError, err, log.FieldOperation, log.OpRegister)
		s.setFlash(w, "An error occurred. Please try again.")
		http.Redirect(w, r, "/register", http.StatusFound)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "login.html", authViewData{Flash: s.popFlash(w, r)})
	case http.MethodPost:
		s.handleLoginSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.setFlash(w, "Invalid form submission.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	sess, err := s.svc.Login(r.Context(), r.Form.Get("username"), r.Form.Get("password"))
	if err != nil {
		if !errors.Is(err, core.ErrInvalidCredentials) {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Login failed",
				log.FieldError, err, log.FieldOperation, log.OpLogin)
		}
		s.setFlash(w, "Invalid username or password.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	s.setSessionCookie(w, sess.Token)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout clears the session unconditionally. Safe to call anonymously.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := s.svc.Logout(r.Context(), cookie.Value); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Logout failed",
				log.FieldError, err, log.FieldOperation, log.OpLogout)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "change_password.html", authViewData{Flash: s.popFlash(w, r)})
	case http.MethodPost:
		s.handleChangePasswordSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleChangePasswordSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.setFlash(w, "Invalid form submission.")
		http.Redirect(w, r, "/change_password", http.StatusFound)
		return
	}

	acc := accountFrom(r)
	err := s.svc.ChangePassword(r.Context(), acc.ID,
		r.Form.Get("current_password"),
		r.Form.Get("new_password"),
		r.Form.Get("confirm_password"))
	switch {
	case err == nil:
		s.setFlash(w, "Password changed successfully.")
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, core.ErrInvalidCredentials):
		s.setFlash(w, "Current password is incorrect.")
		http.Redirect(w, r, "/change_password", http.StatusFound)
	case errors.Is(err, core.ErrPasswordMismatch):
		s.setFlash(w, "Passwords do not match.")
		http.Redirect(w, r, "/change_password", http.StatusFound)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Password change failed",
			log.FieldError, err, log.FieldOperation, log.OpChangePassword)
		s.setFlash(w, "An error occurred. Please try again.")
		http.Redirect(w, r, "/change_password", http.StatusFound)
	}
}
