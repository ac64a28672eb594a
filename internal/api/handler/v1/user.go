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

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	GetRoster(ctx context.Context, ownerID uint) ([]domain.User, error)
	LinkUser(ctx context.Context, ownerID, userID uint) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetYourUsers godoc
// @Summary      Get the authenticated user's roster
// @Description  Returns every user the caller can allocate gifts for.
// @Tags         users
// @Produce      json
// @Success      200  {array}   response.RosterUser
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/yours [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetYourUsers(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	if cached, ok := cache.GetRoster(ctx.Request.Context(), userID); ok {
		response.OKRaw(ctx, cached)

		return
	}

	users, err := h.svc.GetRoster(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetYourUsers -> h.svc.GetRoster -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	roster := response.NewRoster(users)

	if data, err := json.Marshal(roster); err == nil {
		cache.SetRoster(ctx.Request.Context(), userID, data)
	} else {
		zap.L().Warn("failed to cache roster", zap.Uint("userID", userID), zap.Error(err))
	}

	response.OK(ctx, roster)
}

// HandleLinkUser godoc
// @Summary      Link a user to the caller's roster
// @Description  Adds a user to the caller's "your users" list. Re-linking is a no-op.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request   body      request.LinkUserRequest true "request body"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/link [post]
// @Security BearerAuth
func (h *UserHandler) HandleLinkUser(ctx *gin.Context) {
	userID, respErr := getUserID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)

		return
	}

	var req request.LinkUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := h.svc.LinkUser(ctx.Request.Context(), userID, req.UserID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", req.UserID))

			return
		}

		err = fmt.Errorf("v1.HandleLinkUser -> h.svc.LinkUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	cache.InvalidateRoster(ctx.Request.Context(), userID)

	response.OK(ctx, gin.H{"linked": req.UserID})
}

// HandleGetUser godoc
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        userID   path      int  true  "user ID"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/{userID} [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("userID"), 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("userID must be a positive integer")))

		return
	}

	user, err := h.svc.GetUser(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", id))

			return
		}

		err = fmt.Errorf("v1.HandleGetUser -> h.svc.GetUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	response.OK(ctx, user)
}
