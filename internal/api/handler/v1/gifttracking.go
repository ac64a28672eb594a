package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wishwell/giftsync/internal/api/handler/v1/request"
	"github.com/wishwell/giftsync/internal/api/handler/v1/response"
	"github.com/wishwell/giftsync/internal/cache"
	"github.com/wishwell/giftsync/internal/domain"
	"github.com/wishwell/giftsync/internal/service"
)

type GiftTrackingService interface {
	IsOrganizer(ctx context.Context, eventID, userID uint) (bool, error)
	EventTracking(ctx context.Context, eventID uint) ([]domain.RecipientState, error)
	BulkSave(ctx context.Context, rows []domain.RowUpdate, recipients []domain.RecipientUpdate) ([]uint, error)
}

type GiftTrackingHandler struct {
	svc  GiftTrackingService
	cSvc ContributionService
}

func NewGiftTrackingHandler(svc GiftTrackingService, cSvc ContributionService) *GiftTrackingHandler {
	return &GiftTrackingHandler{
		svc:  svc,
		cSvc: cSvc,
	}
}

// HandleBulkUpdateGetting godoc
// @Summary      Apply a batch of getting-quantity updates
// @Description  Applies every row or none. Each row carries the full current quantity for its (giver, item) pair.
// @Tags         giftTracking
// @Accept       json
// @Produce      json
// @Param        request   body      request.BulkUpdateGettingRequest true "request body"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /giftTracking/bulkUpdateGetting [post]
// @Security BearerAuth
func (h *GiftTrackingHandler) HandleBulkUpdateGetting(ctx *gin.Context) {
	var req request.BulkUpdateGettingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	updates := req.ToDomain()

	if err := h.cSvc.BulkUpdateGetting(ctx.Request.Context(), updates); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyBatch),
			errors.Is(err, service.ErrMissingIDs),
			errors.Is(err, service.ErrNegativeQuantity):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrItemNotFound):
			response.RenderErr(ctx, response.ErrNotFound("item", "ID", "batch"))
		default:
			err = fmt.Errorf("v1.HandleBulkUpdateGetting -> h.cSvc.BulkUpdateGetting -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	itemIDs := make([]uint, 0, len(updates))
	for _, update := range updates {
		itemIDs = append(itemIDs, update.ItemID)
	}
	invalidateItemCaches(ctx, itemIDs)

	response.OK(ctx, gin.H{"updated": len(updates)})
}

// HandleBulkUpdateGoInOn godoc
// @Summary      Apply a batch of joint-funding updates
// @Description  Applies every participation flag or none.
// @Tags         giftTracking
// @Accept       json
// @Produce      json
// @Param        request   body      request.BulkUpdateGoInOnRequest true "request body"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /giftTracking/bulkUpdateGoInOn [post]
// @Security BearerAuth
func (h *GiftTrackingHandler) HandleBulkUpdateGoInOn(ctx *gin.Context) {
	var req request.BulkUpdateGoInOnRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	updates := req.ToDomain()

	if err := h.cSvc.BulkUpdateGoInOn(ctx.Request.Context(), updates); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyBatch), errors.Is(err, service.ErrMissingIDs):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrItemNotFound):
			response.RenderErr(ctx, response.ErrNotFound("item", "ID", "batch"))
		default:
			err = fmt.Errorf("v1.HandleBulkUpdateGoInOn -> h.cSvc.BulkUpdateGoInOn -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	itemIDs := make([]uint, 0, len(updates))
	for _, update := range updates {
		itemIDs = append(itemIDs, update.ItemID)
	}
	invalidateItemCaches(ctx, itemIDs)

	response.OK(ctx, gin.H{"updated": len(updates)})
}

// HandleBulkSave godoc
// @Summary      Apply a tracking change-set
// @Description  Persists changed gift rows and recipient states in one atomic batch. Rows are whole-row replacements. An empty change-set is a no-op success.
// @Tags         giftTracking
// @Accept       json
// @Produce      json
// @Param        request   body      request.BulkSaveRequest true "request body"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /giftTracking/bulkSave [post]
// @Security BearerAuth
func (h *GiftTrackingHandler) HandleBulkSave(ctx *gin.Context) {
	var req request.BulkSaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	rows := req.Rows()
	recipients := req.Recipients()

	eventIDs, err := h.svc.BulkSave(ctx.Request.Context(), rows, recipients)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus),
			errors.Is(err, service.ErrMissingRowID),
			errors.Is(err, service.ErrNegativeQuantity):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrGiftRowNotFound):
			response.RenderErr(ctx, response.ErrNotFound("gift row", "ID", "batch"))
		case errors.Is(err, service.ErrRecipientNotFound):
			response.RenderErr(ctx, response.ErrNotFound("recipient", "ID", "batch"))
		default:
			err = fmt.Errorf("v1.HandleBulkSave -> h.svc.BulkSave -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	for _, eventID := range eventIDs {
		cache.InvalidateTracking(ctx.Request.Context(), eventID)
	}

	response.OK(ctx, gin.H{
		"savedItems":      len(rows),
		"savedRecipients": len(recipients),
	})
}

// HandleGetEventTracking godoc
// @Summary      Get the tracking baseline of an event
// @Description  Returns the organizer's per-recipient gift statuses, notes and gift rows. Organizer only.
// @Tags         giftTracking
// @Produce      json
// @Param        eventID   path      int  true  "event ID"
// @Success      200  {array}   domain.RecipientState
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /giftTracking/event/{eventID} [get]
// @Security BearerAuth
func (h *GiftTrackingHandler) HandleGetEventTracking(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("eventID must be a positive integer")))

		return
	}
	eventID := uint(id)

	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	organizer, err := h.svc.IsOrganizer(ctx.Request.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))

			return
		}

		err = fmt.Errorf("v1.HandleGetEventTracking -> h.svc.IsOrganizer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}
	if !organizer {
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotOrganizer))

		return
	}

	if cached, ok := cache.GetTracking(ctx.Request.Context(), eventID); ok {
		response.OKRaw(ctx, cached)

		return
	}

	states, err := h.svc.EventTracking(ctx.Request.Context(), eventID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetEventTracking -> h.svc.EventTracking -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	if data, err := json.Marshal(states); err == nil {
		cache.SetTracking(ctx.Request.Context(), eventID, data)
	} else {
		zap.L().Warn("failed to cache tracking", zap.Uint("eventID", eventID), zap.Error(err))
	}

	response.OK(ctx, states)
}

// invalidateItemCaches drops the cached contribution baselines for every
// distinct item touched by a bulk write.
func invalidateItemCaches(ctx *gin.Context, itemIDs []uint) {
	seen := make(map[uint]struct{}, len(itemIDs))
	for _, itemID := range itemIDs {
		if _, ok := seen[itemID]; ok {
			continue
		}
		seen[itemID] = struct{}{}
		cache.InvalidateContributors(ctx.Request.Context(), itemID)
	}
}
