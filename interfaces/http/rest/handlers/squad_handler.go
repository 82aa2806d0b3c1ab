package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/commands"
	"github.com/OpenClique85/openclique-sub009/application/commands/bus"
	"github.com/OpenClique85/openclique-sub009/application/queries"
	querybus "github.com/OpenClique85/openclique-sub009/application/queries/bus"
	"github.com/OpenClique85/openclique-sub009/domain/core/aggregates"
	"github.com/OpenClique85/openclique-sub009/pkg/common"
	apperrors "github.com/OpenClique85/openclique-sub009/pkg/errors"
	"github.com/OpenClique85/openclique-sub009/pkg/utils"
)

const maxRequestBody = 1 << 20 // 1 MB

// SquadHandler exposes the squad formation endpoints
type SquadHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewSquadHandler creates a new squad handler
func NewSquadHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *SquadHandler {
	return &SquadHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// proposeSquadsRequest is the request body for the propose endpoint
type proposeSquadsRequest struct {
	SquadSize int                   `json:"squad_size" validate:"omitempty,min=2,max=12"`
	Options   *proposeSquadsOptions `json:"options"`
}

type proposeSquadsOptions struct {
	PrioritizeReferrals *bool `json:"prioritize_referrals"`
}

// confirmSquadRequest is the request body for the confirm endpoint
type confirmSquadRequest struct {
	SquadID            string                   `json:"squad_id" validate:"required,uuid"`
	Name               string                   `json:"name" validate:"max=100"`
	SuggestedName      string                   `json:"suggested_name" validate:"max=100"`
	Members            []aggregates.SquadMember `json:"members" validate:"required,min=1"`
	CompatibilityScore float64                  `json:"compatibility_score" validate:"min=0,max=1"`
	ReferralBonds      int                      `json:"referral_bonds" validate:"min=0"`
}

// eventIDParam reads the event ID from either router's URL parameters
func eventIDParam(r *http.Request) string {
	if id := chi.URLParam(r, "eventID"); id != "" {
		return id
	}
	return mux.Vars(r)["eventID"]
}

// ProposeSquads handles POST /events/{eventID}/squads/propose
func (h *SquadHandler) ProposeSquads(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDParam(r)
	if eventID == "" {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Event ID is required")
		return
	}

	// Body is optional: an empty request runs with defaults.
	var req proposeSquadsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
			common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, err.Error())
			return
		}
	}

	prioritize := true
	if req.Options != nil && req.Options.PrioritizeReferrals != nil {
		prioritize = *req.Options.PrioritizeReferrals
	}

	query := queries.ProposeSquadsQuery{
		EventID:             eventID,
		SquadSize:           req.SquadSize,
		PrioritizeReferrals: prioritize,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// ConfirmSquad handles POST /events/{eventID}/squads/confirm
func (h *SquadHandler) ConfirmSquad(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDParam(r)
	if eventID == "" {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Event ID is required")
		return
	}

	var req confirmSquadRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, err.Error())
		return
	}

	cmd := commands.ConfirmSquadCommand{
		EventID:            eventID,
		SquadID:            req.SquadID,
		Name:               req.Name,
		SuggestedName:      req.SuggestedName,
		Members:            req.Members,
		CompatibilityScore: req.CompatibilityScore,
		ReferralBonds:      req.ReferralBonds,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	name := req.Name
	if name == "" {
		name = req.SuggestedName
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"squad_id": req.SquadID,
		"event_id": eventID,
		"name":     name,
		"members":  len(req.Members),
	})
}

// ListSquads handles GET /events/{eventID}/squads
func (h *SquadHandler) ListSquads(w http.ResponseWriter, r *http.Request) {
	eventID := eventIDParam(r)
	if eventID == "" {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Event ID is required")
		return
	}

	query := queries.ListSquadsQuery{
		EventID:    eventID,
		Pagination: common.ExtractPaginationParams(r),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetSquad handles GET /squads/{squadID}
func (h *SquadHandler) GetSquad(w http.ResponseWriter, r *http.Request) {
	squadID := chi.URLParam(r, "squadID")
	if squadID == "" {
		squadID = mux.Vars(r)["squadID"]
	}
	if squadID == "" {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Squad ID is required")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetSquadQuery{SquadID: squadID})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// respondDomainError translates application errors to HTTP responses
func (h *SquadHandler) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		common.RespondErrorWithDetails(w, domainErr.StatusCode, domainErr.Code, domainErr.Message, domainErr.Details)
		return
	}

	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.ValidationError, validationErrs.Error())
		return
	}

	h.logger.Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	common.RespondError(w, http.StatusInternalServerError, common.StandardErrorCodes.InternalError, "Internal server error")
}
