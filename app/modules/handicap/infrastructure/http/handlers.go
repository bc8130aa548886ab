// Package handicaphttp serves the handicap module over HTTP.
package handicaphttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	handicapservice "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/application"
	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/parsers"
	handicaptime "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/time_utils"
	"github.com/Black-And-White-Club/handicap-bot/app/observability/attr"
	handicapevents "github.com/Black-And-White-Club/handicap-bot/pkg/events/handicap"
	"github.com/Black-And-White-Club/handicap-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

const maxUploadBytes = 10 << 20

// Handlers serves the /api/handicap routes.
type Handlers struct {
	service   handicapservice.Service
	publisher message.Publisher
	parsers   parsers.ParserFactory
	dates     *handicaptime.DateParser
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewHandlers creates the HTTP handlers. Round submissions and recalculation
// requests are published as events; everything else calls the service.
func NewHandlers(
	service handicapservice.Service,
	publisher message.Publisher,
	parserFactory parsers.ParserFactory,
	dates *handicaptime.DateParser,
	logger *slog.Logger,
	tracer trace.Tracer,
) *Handlers {
	return &Handlers{
		service:   service,
		publisher: publisher,
		parsers:   parserFactory,
		dates:     dates,
		logger:    logger,
		tracer:    tracer,
	}
}

// Routes registers the endpoints on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Post("/rounds", h.HandleSubmitRound)
	r.Delete("/rounds/{key}", h.HandleDeleteRound)
	r.Post("/scorecards", h.HandleImportScorecard)
	r.Get("/players", h.HandleListPlayers)
	r.Get("/players/{player}", h.HandleGetPlayer)
	r.Get("/players/{player}/chart.png", h.HandlePlayerChart)
	r.Post("/players/{player}/recalculate", h.HandleRecalculate)
	r.Get("/seasons/{year}", h.HandleSeasonSummary)
	r.Get("/seasons/{year}/report.xlsx", h.HandleSeasonReport)
}

// submitRoundRequest is the body of POST /rounds. Date accepts ISO dates and
// phrases like "yesterday".
type submitRoundRequest struct {
	Date          string                          `json:"date"`
	Variant       string                          `json:"variant,omitempty"`
	Nine          string                          `json:"nine"`
	Source        string                          `json:"source,omitempty"`
	Social        bool                            `json:"social,omitempty"`
	TeeTime       *time.Time                      `json:"tee_time,omitempty"`
	PCC           *int                            `json:"pcc,omitempty"`
	WeatherFactor *float64                        `json:"weather_factor,omitempty"`
	Scores        []handicapevents.ScorePayloadV1 `json:"scores"`
}

// HandleSubmitRound validates the envelope and publishes RoundSubmittedV1.
func (h *Handlers) HandleSubmitRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandicapHTTP.SubmitRound")
	defer span.End()

	var body submitRoundRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Nine == "" || len(body.Scores) == 0 {
		writeError(w, http.StatusBadRequest, "nine and scores are required")
		return
	}
	date, err := h.dates.Parse(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload := &handicapevents.RoundSubmittedPayloadV1{
		Date:          date,
		Variant:       body.Variant,
		Nine:          body.Nine,
		Source:        body.Source,
		Social:        body.Social,
		TeeTime:       body.TeeTime,
		PCC:           body.PCC,
		WeatherFactor: body.WeatherFactor,
		Scores:        body.Scores,
	}
	if payload.Source == "" {
		payload.Source = "api"
	}
	key := handicapdomain.NewRoundKey(date, body.Variant).String()

	if err := h.publish(r, handicapevents.RoundSubmittedV1, payload); err != nil {
		h.logger.ErrorContext(ctx, "Failed to publish round submission", attr.String("round_key", key), attr.Error(err))
		writeError(w, http.StatusServiceUnavailable, "could not queue round")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted", "round_key": key})
}

// HandleImportScorecard records an uploaded scorecard file. The optional
// "date" field supplies or overrides the card's date; "social" marks the
// round as not counting for handicaps.
func (h *Handlers) HandleImportScorecard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandicapHTTP.ImportScorecard")
	defer span.End()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	parser, err := h.parsers.GetParser(header.Filename)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	card, err := parser.Parse(data)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if raw := r.FormValue("date"); raw != "" {
		d, err := h.dates.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		card.Date = d
	}
	social, _ := strconv.ParseBool(r.FormValue("social"))

	recorded, err := h.service.RecordScorecard(ctx, *card, social, path.Base(header.Filename))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recorded)
}

// HandleDeleteRound removes a round by key.
func (h *Handlers) HandleDeleteRound(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRound(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListPlayers lists known players.
func (h *Handlers) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.service.ListPlayers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if players == nil {
		players = []string{}
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleGetPlayer returns the player's current handicap.
func (h *Handlers) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, ok := playerParam(w, r)
	if !ok {
		return
	}
	res, err := h.service.GetPlayerHandicap(r.Context(), player)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePlayerChart renders the index history as PNG.
func (h *Handlers) HandlePlayerChart(w http.ResponseWriter, r *http.Request) {
	player, ok := playerParam(w, r)
	if !ok {
		return
	}
	png, err := h.service.IndexHistoryChart(r.Context(), player)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleRecalculate publishes a backfill request for the player.
func (h *Handlers) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	player, ok := playerParam(w, r)
	if !ok {
		return
	}
	payload := &handicapevents.PlayerRecalculateRequestedPayloadV1{Player: player}
	if err := h.publish(r, handicapevents.PlayerRecalculateRequestedV1, payload); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to publish recalculation", attr.String("player", player), attr.Error(err))
		writeError(w, http.StatusServiceUnavailable, "could not queue recalculation")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted", "player": player})
}

// HandleSeasonSummary returns the season table.
func (h *Handlers) HandleSeasonSummary(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	summary, err := h.service.GetSeasonSummary(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleSeasonReport streams the XLSX season report.
func (h *Handlers) HandleSeasonReport(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="handicap-%d.xlsx"`, year))
	if err := h.service.ExportSeasonReport(r.Context(), year, w); err != nil {
		w.Header().Del("Content-Disposition")
		h.writeServiceError(w, r, err)
		return
	}
}

func (h *Handlers) publish(r *http.Request, topic string, payload any) error {
	msg, err := handlerwrapper.NewMessage(handlerwrapper.Result{Topic: topic, Payload: payload}, middleware.GetReqID(r.Context()))
	if err != nil {
		return err
	}
	return h.publisher.Publish(topic, msg)
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed",
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, handicapdomain.ErrValidation),
		errors.Is(err, handicapdomain.ErrInvalidCourseData),
		errors.Is(err, parsers.ErrUnsupportedFormat),
		errors.Is(err, handicaptime.ErrUnrecognisedDate),
		errors.Is(err, handicaptime.ErrFutureDate):
		return http.StatusBadRequest
	case errors.Is(err, handicapservice.ErrRoundExists):
		return http.StatusConflict
	case errors.Is(err, handicapservice.ErrPlayerNotFound),
		errors.Is(err, handicapservice.ErrRoundNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func playerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	player, err := url.PathUnescape(chi.URLParam(r, "player"))
	if err != nil || strings.TrimSpace(player) == "" {
		writeError(w, http.StatusBadRequest, "invalid player")
		return "", false
	}
	return player, true
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 9999 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return 0, false
	}
	return year, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
