package main

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/baditaflorin/go_fit_predictor/internal/adapters/catalog"
	"github.com/baditaflorin/go_fit_predictor/internal/core/domain"
	"github.com/baditaflorin/go_fit_predictor/internal/core/fit"
	"github.com/baditaflorin/go_fit_predictor/internal/metrics"
	"github.com/baditaflorin/go_fit_predictor/internal/ports"
	"github.com/baditaflorin/go_fit_predictor/internal/profile"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// PredictRequest asks for the sizes of a catalog guide or an inline guide.
type PredictRequest struct {
	Measurements *domain.BodyMeasurements `json:"measurements"`
	Brand        string                   `json:"brand,omitempty"`
	Category     string                   `json:"category,omitempty"`
	Guide        *domain.SizeGuide        `json:"guide,omitempty"`
}

// PredictResponse lists the ranked sizes and the selected one.
type PredictResponse struct {
	Brand       string                 `json:"brand"`
	Category    string                 `json:"category"`
	Predictions []domain.FitPrediction `json:"predictions"`
	Best        *domain.FitPrediction  `json:"best"`
}

// BestFitRequest carries predictions computed elsewhere.
type BestFitRequest struct {
	Predictions []domain.FitPrediction `json:"predictions"`
}

// RecommendRequest asks for the best size in every catalog guide.
type RecommendRequest struct {
	Measurements *domain.BodyMeasurements `json:"measurements"`
}

// AvatarRequest submits media for avatar generation.
type AvatarRequest struct {
	MediaURI     string                   `json:"mediaUri"`
	MediaType    string                   `json:"mediaType"`
	Measurements *domain.BodyMeasurements `json:"measurements,omitempty"`
}

// WishlistRequest adds an item to the wishlist.
type WishlistRequest struct {
	ItemID string `json:"itemId"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server routes fit prediction requests.
type Server struct {
	predictor *fit.Predictor
	catalog   *catalog.Catalog
	profiles  *profile.Service
	metrics   *metrics.Metrics
	logger    ports.Logger

	metricsHandler fasthttp.RequestHandler
	avatarTimeout  time.Duration
}

// NewServer creates the HTTP handler set.
func NewServer(predictor *fit.Predictor, cat *catalog.Catalog, profiles *profile.Service, m *metrics.Metrics, logger ports.Logger) *Server {
	return &Server{
		predictor:      predictor,
		catalog:        cat,
		profiles:       profiles,
		metrics:        m,
		logger:         logger,
		metricsHandler: fasthttpadaptor.NewFastHTTPHandler(m.Handler()),
		avatarTimeout:  60 * time.Second,
	}
}

// Handle is the main fasthttp request handler
func (s *Server) Handle(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()
	path := string(ctx.Path())

	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "FitServer")

	route := path
	switch {
	case path == "/health":
		s.handleHealthCheck(ctx)
	case path == "/metrics":
		s.metricsHandler(ctx)
	case path == "/guides":
		s.handleGuides(ctx)
	case path == "/predict":
		s.handlePredict(ctx)
	case path == "/best-fit":
		s.handleBestFit(ctx)
	case path == "/recommend":
		s.handleRecommend(ctx)
	case strings.HasPrefix(path, "/profiles/"):
		route = s.handleProfiles(ctx, strings.TrimPrefix(path, "/profiles/"))
	default:
		route = "unmatched"
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
	}

	duration := time.Since(startTime)
	s.metrics.ObserveRequest(route, strconv.Itoa(ctx.Response.StatusCode()), duration.Seconds())
	s.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", path,
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", duration,
	)
}

// handleHealthCheck responds to health check requests
func (s *Server) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"guides": s.catalog.Len(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleGuides lists the catalog, optionally filtered by ?brand=
func (s *Server) handleGuides(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	brand := string(ctx.QueryArgs().Peek("brand"))
	guides := make([]domain.SizeGuide, 0, s.catalog.Len())
	for _, guide := range s.catalog.Guides() {
		if brand != "" && !strings.EqualFold(guide.Brand, brand) {
			continue
		}
		guides = append(guides, guide)
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, guides)
}

// handlePredict ranks the sizes of one guide
func (s *Server) handlePredict(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	var req PredictRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}
	if req.Measurements == nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "measurements are required")
		return
	}

	var guide domain.SizeGuide
	switch {
	case req.Guide != nil:
		guide = *req.Guide
	case req.Brand != "":
		var err error
		guide, err = s.catalog.Lookup(req.Brand, req.Category)
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			writeJSONError(ctx, err.Error())
			return
		}
	default:
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "either brand or guide is required")
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, s.predict(*req.Measurements, guide))
}

func (s *Server) predict(measurements domain.BodyMeasurements, guide domain.SizeGuide) PredictResponse {
	predictions := s.predictor.PredictFit(measurements, guide)
	resp := PredictResponse{
		Brand:       guide.Brand,
		Category:    guide.Category,
		Predictions: predictions,
	}
	if best, ok := fit.BestFitSize(predictions); ok {
		resp.Best = &best
		s.metrics.ObserveBest(guide.Brand, best)
	}
	return resp
}

// handleBestFit selects a size from caller-supplied predictions
func (s *Server) handleBestFit(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	var req BestFitRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}

	var best *domain.FitPrediction
	if b, ok := fit.BestFitSize(req.Predictions); ok {
		best = &b
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{"best": best})
}

// handleRecommend returns the best size of every catalog guide
func (s *Server) handleRecommend(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	var req RecommendRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}
	if req.Measurements == nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "measurements are required")
		return
	}

	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recs, err := s.predictor.RecommendAcross(c, *req.Measurements, s.catalog.Guides())
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		writeJSONError(ctx, err.Error())
		return
	}
	for _, rec := range recs {
		if rec.Found {
			s.metrics.ObserveBest(rec.Brand, rec.Best)
		}
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, recs)
}

// handleProfiles serves /profiles/{id}[/avatar|/wishlist[/{item}]|/predict].
// It returns the route label used for metrics.
func (s *Server) handleProfiles(ctx *fasthttp.RequestCtx, rest string) string {
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	userID := parts[0]
	if userID == "" {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
		return "/profiles"
	}

	c, cancel := context.WithTimeout(context.Background(), s.avatarTimeout)
	defer cancel()

	switch {
	case len(parts) == 1:
		s.handleProfile(c, ctx, userID)
		return "/profiles/{id}"
	case len(parts) == 2 && parts[1] == "avatar":
		s.handleAvatar(c, ctx, userID)
		return "/profiles/{id}/avatar"
	case len(parts) == 2 && parts[1] == "predict":
		s.handleProfilePredict(c, ctx, userID)
		return "/profiles/{id}/predict"
	case parts[1] == "wishlist" && len(parts) <= 3:
		itemID := ""
		if len(parts) == 3 {
			itemID = parts[2]
		}
		s.handleWishlist(c, ctx, userID, itemID)
		return "/profiles/{id}/wishlist"
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
		return "/profiles"
	}
}

func (s *Server) handleProfile(c context.Context, ctx *fasthttp.RequestCtx, userID string) {
	repo := s.profiles.Repository()

	switch string(ctx.Method()) {
	case fasthttp.MethodGet:
		record, err := repo.Load(c, userID)
		if err != nil {
			s.writeStoreError(ctx, err)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusOK)
		s.writeJSONResponse(ctx, record)
	case fasthttp.MethodPut:
		var m domain.BodyMeasurements
		if err := json.Unmarshal(ctx.PostBody(), &m); err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			writeJSONError(ctx, "Invalid request: "+err.Error())
			return
		}
		record := profile.AvatarRecord{UserID: userID, Measurements: m}
		if existing, err := repo.Load(c, userID); err == nil {
			record.AvatarURL = existing.AvatarURL
		}
		saved, err := repo.Save(c, record)
		if err != nil {
			s.writeStoreError(ctx, err)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusOK)
		s.writeJSONResponse(ctx, saved)
	case fasthttp.MethodDelete:
		if err := repo.Delete(c, userID); err != nil {
			s.writeStoreError(ctx, err)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	default:
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
	}
}

func (s *Server) handleAvatar(c context.Context, ctx *fasthttp.RequestCtx, userID string) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	var req AvatarRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}
	if req.MediaURI == "" {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "mediaUri is required")
		return
	}

	record, err := s.profiles.CreateAvatar(c, ports.AvatarRequest{
		UserID:       userID,
		MediaURI:     req.MediaURI,
		MediaType:    req.MediaType,
		Measurements: req.Measurements,
	})
	if err != nil {
		s.writeStoreError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusCreated)
	s.writeJSONResponse(ctx, record)
}

func (s *Server) handleProfilePredict(c context.Context, ctx *fasthttp.RequestCtx, userID string) {
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	brand := string(ctx.QueryArgs().Peek("brand"))
	category := string(ctx.QueryArgs().Peek("category"))
	guide, err := s.catalog.Lookup(brand, category)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, err.Error())
		return
	}

	predictions, err := s.profiles.PredictForUser(c, userID, guide)
	if err != nil {
		s.writeStoreError(ctx, err)
		return
	}

	resp := PredictResponse{Brand: guide.Brand, Category: guide.Category, Predictions: predictions}
	if best, ok := fit.BestFitSize(predictions); ok {
		resp.Best = &best
		s.metrics.ObserveBest(guide.Brand, best)
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, resp)
}

func (s *Server) handleWishlist(c context.Context, ctx *fasthttp.RequestCtx, userID, itemID string) {
	repo := s.profiles.Repository()

	var (
		items []string
		err   error
	)
	switch string(ctx.Method()) {
	case fasthttp.MethodGet:
		items, err = repo.Wishlist(c, userID)
	case fasthttp.MethodPost:
		var req WishlistRequest
		if jsonErr := json.Unmarshal(ctx.PostBody(), &req); jsonErr != nil || req.ItemID == "" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			writeJSONError(ctx, "itemId is required")
			return
		}
		items, err = repo.AddToWishlist(c, userID, req.ItemID)
	case fasthttp.MethodDelete:
		if itemID == "" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			writeJSONError(ctx, "item id is required")
			return
		}
		items, err = repo.RemoveFromWishlist(c, userID, itemID)
	default:
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}
	if err != nil {
		s.writeStoreError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{"items": items})
}

// writeStoreError maps profile and store errors to HTTP statuses
func (s *Server) writeStoreError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	case errors.Is(err, profile.ErrMeasurementsMissing):
		ctx.SetStatusCode(fasthttp.StatusUnprocessableEntity)
	case errors.Is(err, context.DeadlineExceeded):
		ctx.SetStatusCode(fasthttp.StatusGatewayTimeout)
	default:
		s.logger.Error("Profile operation failed", "error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
	writeJSONError(ctx, err.Error())
}

// writeJSONResponse writes a JSON response to the context
func (s *Server) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.logger.Error("Error marshaling JSON response", "error", err)
		writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}
