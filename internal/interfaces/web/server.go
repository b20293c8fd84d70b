package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/example/careslot/internal/application/usecases"
	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/practitioner"
	"github.com/example/careslot/internal/internaltypes"
	"github.com/example/careslot/internal/observability/metrics"
)

const defaultRequestTimeout = 90 * time.Second

type Options struct {
	Addr           string
	Sessions       *SessionManager
	Booking        usecases.BookingService
	Templates      *template.Template
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger
	// RequestTimeout bounds one search or booking, external calls included.
	RequestTimeout time.Duration
}

type Server struct {
	addr           string
	sessions       *SessionManager
	booking        usecases.BookingService
	tmpl           *template.Template
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	logger         zerolog.Logger
	timeout        time.Duration
}

func New(opts Options) *Server {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Server{
		addr:           opts.Addr,
		sessions:       opts.Sessions,
		booking:        opts.Booking,
		tmpl:           opts.Templates,
		metrics:        opts.Metrics,
		metricsHandler: opts.MetricsHandler,
		logger:         opts.Logger,
		timeout:        timeout,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Attach)
		r.Get("/", s.handleHome)
		r.Post("/search", s.handleSearch)
		r.Post("/book", s.handleBook)
		r.Post("/reset", s.handleReset)
		r.Route("/api", func(r chi.Router) {
			r.Post("/search", s.handleAPISearch)
			r.Post("/book", s.handleAPIBook)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		s.metrics.ObserveHTTP(r.Method, route, strconv.Itoa(status), elapsed.Seconds())
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func writeErr(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)
	_, _ = w.Write([]byte(err.Error()))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		writeErr(w, err, http.StatusInternalServerError)
	}
}

type bookForm struct {
	Selection       string
	PatientName     string
	PatientEmail    string
	AppointmentType string
	Notes           string
}

type pageData struct {
	Practitioners    []practitioner.Practitioner
	AppointmentTypes []string
	Query            string
	Search           *usecases.SearchResult
	RequestJSON      string
	Form             bookForm
	Booking          *appointment.BookingResult
	Error            string
}

func (s *Server) page() pageData {
	return pageData{
		Practitioners:    s.booking.Practitioners,
		AppointmentTypes: appointment.AppointmentTypes,
		Form:             bookForm{AppointmentType: appointment.AppointmentTypes[0]},
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	s.render(w, "index.html", s.page())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	data := s.page()
	data.Query = strings.TrimSpace(r.FormValue("request"))

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := s.booking.ProcessRequest(ctx, sessionIDFromCtx(r), data.Query)
	if err != nil {
		data.Error = usecases.UserMessage(err)
		s.render(w, "index.html", data)
		return
	}
	data.Search = &res
	if b, err := json.MarshalIndent(res.Request, "", "  "); err == nil {
		data.RequestJSON = string(b)
	}
	s.render(w, "index.html", data)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	data := s.page()
	data.Form = bookForm{
		Selection:       strings.TrimSpace(r.FormValue("selection")),
		PatientName:     strings.TrimSpace(r.FormValue("patient_name")),
		PatientEmail:    strings.TrimSpace(r.FormValue("patient_email")),
		AppointmentType: strings.TrimSpace(r.FormValue("appointment_type")),
		Notes:           strings.TrimSpace(r.FormValue("notes")),
	}
	// an unparseable number is just an invalid selection
	selection, _ := strconv.Atoi(data.Form.Selection)

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res := s.booking.Book(ctx, sessionIDFromCtx(r), usecases.BookRequest{
		Selection:       selection,
		PatientName:     data.Form.PatientName,
		PatientEmail:    data.Form.PatientEmail,
		AppointmentType: data.Form.AppointmentType,
		Notes:           data.Form.Notes,
	})
	data.Booking = &res
	s.render(w, "index.html", data)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type apiSearchRequest struct {
	Text string `json:"text"`
}

type apiError struct {
	Error string `json:"error"`
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	var in apiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "request body must be JSON with a text field"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := s.booking.ProcessRequest(ctx, sessionIDFromCtx(r), in.Text)
	if err != nil {
		writeJSON(w, statusFor(err), apiError{Error: usecases.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAPIBook(w http.ResponseWriter, r *http.Request) {
	var in usecases.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "request body must be a JSON booking"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res := s.booking.Book(ctx, sessionIDFromCtx(r), in)
	writeJSON(w, bookingStatus(res), res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, internaltypes.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, internaltypes.ErrUnauthorized):
		return http.StatusBadGateway
	case errors.Is(err, internaltypes.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func bookingStatus(res appointment.BookingResult) int {
	if res.Success {
		return http.StatusCreated
	}
	switch res.Failure {
	case appointment.FailureInvalidInput, appointment.FailureInvalidSelection:
		return http.StatusUnprocessableEntity
	case appointment.FailureNoSearch, appointment.FailureSlotTaken:
		return http.StatusConflict
	case appointment.FailureNotFound:
		return http.StatusNotFound
	case appointment.FailureCalendar:
		return http.StatusBadGateway
	case appointment.FailureUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
