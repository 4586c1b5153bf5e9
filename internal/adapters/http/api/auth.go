package api

import (
	"mime"
	"net/http"
	"strings"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

type loginPage struct {
	App string
}

// handleLoginPage handles GET /login. A caller that is already logged in
// goes straight to the dashboard.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.resolve(w, r); err == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, r, "login.html", loginPage{App: AppName})
}

// handleLogin handles POST /login with a JSON or form body.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"

	req, err := decodeLogin(w, r, op)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		s.fail(w, r, badRequest(op, "Username and password are required"))
		return
	}

	account, err := s.deps.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	if err := s.sessions.Issue(w, account.Username, account.Role); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Success:  true,
		Message:  "Login successful",
		Redirect: "/",
	})
}

// handleLogout handles GET /logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func decodeLogin(w http.ResponseWriter, r *http.Request, op string) (loginRequest, error) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := decodeJSON(w, r, op, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return req, badRequest(op, "Request body must be a valid form")
	}
	req.Username = r.PostFormValue("username")
	req.Password = r.PostFormValue("password")
	return req, nil
}
