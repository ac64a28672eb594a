package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wishwell/giftsync/internal/api/handler/v1/response"
	"github.com/wishwell/giftsync/internal/cache"
	"github.com/wishwell/giftsync/internal/domain"
	"github.com/wishwell/giftsync/internal/service"
)

type ContributionService interface {
	ItemContributors(ctx context.Context, itemID uint) (domain.Item, []domain.Contribution, error)
	BulkUpdateGetting(ctx context.Context, updates []domain.GettingUpdate) error
	BulkUpdateGoInOn(ctx context.Context, updates []domain.GoInOnUpdate) error
}

type ContributorHandler struct {
	svc  ContributionService
	uSvc UserService
}

func NewContributorHandler(svc ContributionService, uSvc UserService) *ContributorHandler {
	return &ContributorHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleGetItemContributors godoc
// @Summary      Get an item's contribution baseline
// @Description  Returns the item's allocation context plus its sparse contribution records. Users without a record are omitted.
// @Tags         contributors
// @Produce      json
// @Param        itemID   path      int  true  "item ID"
// @Success      200  {object}  response.ContributorsResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /contributors/item/{itemID} [get]
// @Security BearerAuth
func (h *ContributorHandler) HandleGetItemContributors(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("itemID"), 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("itemID must be a positive integer")))

		return
	}
	itemID := uint(id)

	if cached, ok := cache.GetContributors(ctx.Request.Context(), itemID); ok {
		response.OKRaw(ctx, cached)

		return
	}

	item, contributions, err := h.svc.ItemContributors(ctx.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("item", "ID", itemID))

			return
		}

		err = fmt.Errorf("v1.HandleGetItemContributors -> h.svc.ItemContributors -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	names := make(map[uint]domain.User, len(contributions))
	for _, c := range contributions {
		if _, seen := names[c.GiverID]; seen {
			continue
		}

		user, err := h.uSvc.GetUser(ctx.Request.Context(), c.GiverID)
		if err != nil {
			// A giver deleted after contributing still counts; serve the
			// record without a display name.
			if errors.Is(err, service.ErrUserNotFound) {
				continue
			}

			err = fmt.Errorf("v1.HandleGetItemContributors -> h.uSvc.GetUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))

			return
		}

		names[c.GiverID] = user
	}

	resp := response.NewContributorsResponse(item, contributions, names)

	if data, err := json.Marshal(resp); err == nil {
		cache.SetContributors(ctx.Request.Context(), itemID, data)
	} else {
		zap.L().Warn("failed to cache contributors", zap.Uint("itemID", itemID), zap.Error(err))
	}

	response.OK(ctx, resp)
}
