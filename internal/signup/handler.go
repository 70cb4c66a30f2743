package signup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/xeipuuv/gojsonschema"
)

const (
	maxBody = 64 << 10

	msgCreated  = "Registration successful!"
	msgMissing  = "All fields are required."
	msgEmail    = "Invalid email format."
	msgMismatch = "Passwords do not match."
	msgTooLong  = "Password must be at most 72 bytes."
	msgTaken    = "An account with this email already exists."
	msgBadBody  = "Malformed request body."
	msgInternal = "Registration failed. Please try again later."
)

var formSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["firstName", "lastName", "email", "password", "confirmPassword"],
	"properties": {
		"firstName":       {"type": "string"},
		"lastName":        {"type": "string"},
		"email":           {"type": "string"},
		"password":        {"type": "string"},
		"confirmPassword": {"type": "string"}
	}
}`)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler serves POST /signup for form-encoded and JSON bodies.
func Handler(svc *Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := decodeForm(w, r)
		if err != nil {
			logger.DebugContext(r.Context(), "signup body rejected", "err", err)
			if errors.Is(err, ErrMissingField) {
				writeJSON(w, http.StatusBadRequest, Response{Message: msgMissing})
				return
			}
			writeJSON(w, http.StatusBadRequest, Response{Message: msgBadBody})
			return
		}

		_, err = svc.Register(r.Context(), f)
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, Response{Success: true, Message: msgCreated})
		case errors.Is(err, ErrMissingField):
			writeJSON(w, http.StatusBadRequest, Response{Message: msgMissing})
		case errors.Is(err, ErrInvalidEmail):
			writeJSON(w, http.StatusBadRequest, Response{Message: msgEmail})
		case errors.Is(err, ErrPasswordMismatch):
			writeJSON(w, http.StatusBadRequest, Response{Message: msgMismatch})
		case errors.Is(err, ErrPasswordTooLong):
			writeJSON(w, http.StatusBadRequest, Response{Message: msgTooLong})
		case errors.Is(err, ErrEmailTaken):
			writeJSON(w, http.StatusConflict, Response{Message: msgTaken})
		default:
			writeJSON(w, http.StatusInternalServerError, Response{Message: msgInternal})
		}
	}
}

func decodeForm(w http.ResponseWriter, r *http.Request) (Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return Form{}, fmt.Errorf("read body: %w", err)
		}
		res, err := gojsonschema.Validate(formSchema, gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return Form{}, fmt.Errorf("decode body: %w", err)
		}
		if !res.Valid() {
			errs := make([]string, len(res.Errors()))
			for i, desc := range res.Errors() {
				errs[i] = desc.String()
			}
			return Form{}, fmt.Errorf("%w: %v", ErrMissingField, errs)
		}
		var f Form
		if err := json.Unmarshal(raw, &f); err != nil {
			return Form{}, fmt.Errorf("decode body: %w", err)
		}
		return f, nil
	}

	if err := r.ParseForm(); err != nil {
		return Form{}, fmt.Errorf("parse form: %w", err)
	}
	return Form{
		FirstName:       r.PostForm.Get("firstName"),
		LastName:        r.PostForm.Get("lastName"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
