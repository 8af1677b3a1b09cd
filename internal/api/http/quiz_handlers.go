package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	authmw "github.com/mind-engage/quizretry/internal/auth/middleware"
	"github.com/mind-engage/quizretry/internal/quiz"
	"github.com/mind-engage/quizretry/internal/session"
)

func StateHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.State(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, v)
	}
}

func uploadHandler(maxBytes int64, load func(r *http.Request, id string, f io.Reader, name string) (quiz.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				respondError(w, r, err)
				return
			}
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form with a file field required"})
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
			return
		}
		defer f.Close()

		v, err := load(r, authmw.SubjectFromContext(r.Context()), f, hdr.Filename)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, v)
	}
}

// UploadBankHandler loads the question bank from the "file" form field.
func UploadBankHandler(svc *quiz.Service, maxBytes int64) http.HandlerFunc {
	return uploadHandler(maxBytes, func(r *http.Request, id string, f io.Reader, name string) (quiz.View, error) {
		return svc.LoadBank(r.Context(), id, f, name)
	})
}

// UploadMissedHandler loads a missed list and starts a retry pass over it.
func UploadMissedHandler(svc *quiz.Service, maxBytes int64) http.HandlerFunc {
	return uploadHandler(maxBytes, func(r *http.Request, id string, f io.Reader, name string) (quiz.View, error) {
		return svc.LoadMissed(r.Context(), id, f, name)
	})
}

func StartPassHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mode  session.Mode `json:"mode"`
			Count int          `json:"count"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
				return
			}
		}
		v, err := svc.StartPass(r.Context(), authmw.SubjectFromContext(r.Context()), req.Mode, req.Count)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, v)
	}
}

func AnswerHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Choice string `json:"choice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		v, err := svc.Answer(r.Context(), authmw.SubjectFromContext(r.Context()), req.Choice)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, v)
	}
}

// actionHandler serves the body-less actions (next, retry, reset).
func actionHandler(run func(r *http.Request, id string) (quiz.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := run(r, authmw.SubjectFromContext(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, v)
	}
}

func NextHandler(svc *quiz.Service) http.HandlerFunc {
	return actionHandler(func(r *http.Request, id string) (quiz.View, error) { return svc.Next(r.Context(), id) })
}

func RetryHandler(svc *quiz.Service) http.HandlerFunc {
	return actionHandler(func(r *http.Request, id string) (quiz.View, error) { return svc.Retry(r.Context(), id) })
}

func ResetHandler(svc *quiz.Service) http.HandlerFunc {
	return actionHandler(func(r *http.Request, id string) (quiz.View, error) { return svc.Reset(r.Context(), id) })
}

// ExportHandler downloads the incorrect answers of the finished pass as CSV.
func ExportHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := svc.Export(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			respondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Name))
		w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
		if exp.Key != "" {
			w.Header().Set("X-Archive-Key", exp.Key)
		}
		_, _ = w.Write(exp.Data)
	}
}
