package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"sehyeong/promoworker/internal/observability"
	"sehyeong/promoworker/internal/tools"
	"sehyeong/promoworker/logger"
	perrors "sehyeong/promoworker/pkg/errors"
)

var validate = validator.New()

// NewRouter builds the HTTP surface of the tool service: tool discovery on
// GET /tools, invocation on POST /tools/{name}.
func NewRouter(engine *tools.Engine) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/tools", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"tools": tools.Registry})
	})

	r.Post("/tools/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		log := logger.ForTools().WithField("tool", name)

		var in tools.Invocation
		if req.ContentLength > 0 {
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				observability.ToolInvocations.WithLabelValues(name, "bad_request").Inc()
				writeError(w, http.StatusBadRequest, "요청 본문을 파싱할 수 없음")
				return
			}
		}
		if err := validate.Struct(in); err != nil {
			observability.ToolInvocations.WithLabelValues(name, "bad_request").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		started := time.Now()
		result, err := engine.Invoke(name, in)
		if err != nil {
			status := http.StatusInternalServerError
			outcome := "error"
			if se, ok := err.(*perrors.ScrapeError); ok && se.Type == perrors.ErrorTypeValidation {
				status = http.StatusBadRequest
				outcome = "bad_request"
			}
			observability.ToolInvocations.WithLabelValues(name, outcome).Inc()
			log.Warn().Err(err).Msg("도구 호출 실패")
			writeError(w, status, err.Error())
			return
		}

		observability.ToolInvocations.WithLabelValues(name, "ok").Inc()
		log.Info().Dur("elapsed", time.Since(started)).Msg("도구 호출 완료")
		writeJSON(w, http.StatusOK, map[string]interface{}{"result": result})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
