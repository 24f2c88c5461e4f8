package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/couchcryptid/surf-prediction-service/internal/adapter/sqlite"
	"github.com/couchcryptid/surf-prediction-service/internal/domain"
)

const maxBodyBytes = 1 << 16

// Predictor computes predictions for a user.
type Predictor interface {
	PredictForUser(ctx context.Context, userID string) ([]domain.Prediction, error)
}

// Store manages a user's breaks and sessions.
type Store interface {
	GetBreaksForUser(ctx context.Context, userID string) ([]domain.Break, error)
	AddBreak(ctx context.Context, b domain.Break) (domain.Break, error)
	DeleteBreak(ctx context.Context, userID, breakID string) error
	LogSession(ctx context.Context, s domain.Session) (domain.Session, error)
	SessionStats(ctx context.Context, userID string) (domain.SessionStats, error)
}

type api struct {
	predictor Predictor
	store     Store
	logger    *slog.Logger
}

// conditions is the display form of a reading, in metric units.
type conditions struct {
	SwellHeight    string `json:"swell_height"`
	SwellPeriod    string `json:"swell_period"`
	WindSpeed      string `json:"wind_speed"`
	WindDirection  string `json:"wind_direction"`
	SwellDirection string `json:"swell_direction"`
}

type predictionView struct {
	domain.Prediction
	Conditions *conditions `json:"conditions,omitempty"`
}

func newPredictionView(p domain.Prediction) predictionView {
	v := predictionView{Prediction: p}
	if r := p.CurrentReading; r != nil {
		v.Conditions = &conditions{
			SwellHeight:    domain.FormatSwellHeight(r.SwellHeightFeet),
			SwellPeriod:    domain.FormatSwellPeriod(r.SwellPeriodSeconds),
			WindSpeed:      domain.FormatWindSpeed(r.WindSpeedKnots),
			WindDirection:  domain.FormatDirection(r.WindDirection),
			SwellDirection: domain.FormatDirection(r.SwellDirection),
		}
	}
	return v
}

func (a *api) handlePredictions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	predictions, err := a.predictor.PredictForUser(r.Context(), userID)
	if err != nil {
		a.internalError(w, "predict for user failed", err, userID)
		return
	}

	views := make([]predictionView, len(predictions))
	for i, p := range predictions {
		views[i] = newPredictionView(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "predictions": views})
}

func (a *api) handleListBreaks(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	breaks, err := a.store.GetBreaksForUser(r.Context(), userID)
	if err != nil {
		a.internalError(w, "list breaks failed", err, userID)
		return
	}
	if breaks == nil {
		breaks = []domain.Break{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "breaks": breaks})
}

type addBreakRequest struct {
	Name      string `json:"name"`
	Region    string `json:"region"`
	SourceURL string `json:"source_url"`
}

func (a *api) handleAddBreak(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	var req addBreakRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	b, err := a.store.AddBreak(r.Context(), domain.Break{
		UserID: userID, Name: req.Name, Region: req.Region, SourceURL: req.SourceURL,
	})
	switch {
	case errors.Is(err, sqlite.ErrInvalidBreak):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		a.internalError(w, "add break failed", err, userID)
	default:
		writeJSON(w, http.StatusCreated, b)
	}
}

func (a *api) handleDeleteBreak(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	err := a.store.DeleteBreak(r.Context(), userID, r.PathValue("breakID"))
	switch {
	case errors.Is(err, sqlite.ErrBreakNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		a.internalError(w, "delete break failed", err, userID)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type logSessionRequest struct {
	BreakID  string `json:"break_id"`
	Rating   string `json:"rating"`
	Date     string `json:"session_date"`
	TimeSlot string `json:"session_time"`
}

func (a *api) handleLogSession(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	var req logSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s, err := a.store.LogSession(r.Context(), domain.Session{
		UserID:   userID,
		BreakID:  req.BreakID,
		Rating:   domain.Rating(req.Rating),
		Date:     req.Date,
		TimeSlot: domain.TimeSlot(req.TimeSlot),
	})
	switch {
	case errors.Is(err, domain.ErrInvalidRating), errors.Is(err, domain.ErrInvalidTimeSlot), errors.Is(err, domain.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sqlite.ErrBreakNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		a.internalError(w, "log session failed", err, userID)
	default:
		writeJSON(w, http.StatusCreated, s)
	}
}

func (a *api) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	stats, err := a.store.SessionStats(r.Context(), userID)
	if err != nil {
		a.internalError(w, "session stats failed", err, userID)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) internalError(w http.ResponseWriter, msg string, err error, userID string) {
	a.logger.Error(msg, "error", err, "user_id", userID)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
