package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishwell/giftsync/internal/api/middleware"
	"github.com/wishwell/giftsync/internal/domain"
	"github.com/wishwell/giftsync/internal/service"
)

type fakeTrackingSvc struct {
	organizerID uint
	eventErr    error
	states      []domain.RecipientState

	savedRows       []domain.RowUpdate
	savedRecipients []domain.RecipientUpdate
	saveErr         error
}

func (f *fakeTrackingSvc) IsOrganizer(_ context.Context, _, userID uint) (bool, error) {
	if f.eventErr != nil {
		return false, f.eventErr
	}

	return userID == f.organizerID, nil
}

func (f *fakeTrackingSvc) EventTracking(_ context.Context, _ uint) ([]domain.RecipientState, error) {
	return f.states, nil
}

func (f *fakeTrackingSvc) BulkSave(_ context.Context, rows []domain.RowUpdate, recipients []domain.RecipientUpdate) ([]uint, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.savedRows = rows
	f.savedRecipients = recipients

	return []uint{3}, nil
}

type fakeContributionSvc struct {
	gettingUpdates []domain.GettingUpdate
	goInOnUpdates  []domain.GoInOnUpdate
	err            error
}

func (f *fakeContributionSvc) ItemContributors(_ context.Context, _ uint) (domain.Item, []domain.Contribution, error) {
	return domain.Item{}, nil, f.err
}

func (f *fakeContributionSvc) BulkUpdateGetting(_ context.Context, updates []domain.GettingUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.gettingUpdates = updates

	return nil
}

func (f *fakeContributionSvc) BulkUpdateGoInOn(_ context.Context, updates []domain.GoInOnUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.goInOnUpdates = updates

	return nil
}

func newTestRouter(svc GiftTrackingService, cSvc ContributionService, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		if userID != 0 {
			ctx.Set(middleware.ContextKeyUserID, userID)
		}
	})

	handler := NewGiftTrackingHandler(svc, cSvc)
	router.POST("/giftTracking/bulkUpdateGetting", handler.HandleBulkUpdateGetting)
	router.POST("/giftTracking/bulkUpdateGoInOn", handler.HandleBulkUpdateGoInOn)
	router.POST("/giftTracking/bulkSave", handler.HandleBulkSave)
	router.GET("/giftTracking/event/:eventID", handler.HandleGetEventTracking)

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))

	return envelope
}

func TestHandleBulkUpdateGetting(t *testing.T) {
	cSvc := &fakeContributionSvc{}
	router := newTestRouter(&fakeTrackingSvc{}, cSvc, 10)

	recorder := postJSON(t, router, "/giftTracking/bulkUpdateGetting", []map[string]any{
		{"giverId": 1, "getterId": 50, "numberGetting": 2, "itemId": 7},
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, true, envelope["success"])
	require.Len(t, cSvc.gettingUpdates, 1)
	assert.Equal(t, 2, cSvc.gettingUpdates[0].NumberGetting)
}

func TestHandleBulkUpdateGetting_NegativeQuantity(t *testing.T) {
	cSvc := &fakeContributionSvc{}
	router := newTestRouter(&fakeTrackingSvc{}, cSvc, 10)

	recorder := postJSON(t, router, "/giftTracking/bulkUpdateGetting", []map[string]any{
		{"giverId": 1, "getterId": 50, "numberGetting": -1, "itemId": 7},
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, false, envelope["success"])
	assert.Empty(t, cSvc.gettingUpdates)
}

func TestHandleBulkUpdateGoInOn(t *testing.T) {
	cSvc := &fakeContributionSvc{}
	router := newTestRouter(&fakeTrackingSvc{}, cSvc, 10)

	recorder := postJSON(t, router, "/giftTracking/bulkUpdateGoInOn", []map[string]any{
		{"giverId": 1, "getterId": 50, "itemId": 7, "participating": true},
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, cSvc.goInOnUpdates, 1)
	assert.True(t, cSvc.goInOnUpdates[0].Participating)
}

func TestHandleBulkSave(t *testing.T) {
	svc := &fakeTrackingSvc{}
	router := newTestRouter(svc, &fakeContributionSvc{}, 10)

	recorder := postJSON(t, router, "/giftTracking/bulkSave", map[string]any{
		"changedItems": []map[string]any{
			{"rowId": 1, "status": "done", "numberGetting": 2, "actualPrice": 19.99},
		},
		"changedRecipients": []map[string]any{
			{"recipientId": 1, "status": "in-progress", "note": "wrapped"},
		},
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, svc.savedRows, 1)
	assert.Equal(t, domain.StatusDone, svc.savedRows[0].Status)
	require.Len(t, svc.savedRecipients, 1)
	assert.Equal(t, "wrapped", svc.savedRecipients[0].Note)
}

func TestHandleBulkSave_InvalidStatus(t *testing.T) {
	svc := &fakeTrackingSvc{}
	router := newTestRouter(svc, &fakeContributionSvc{}, 10)

	recorder := postJSON(t, router, "/giftTracking/bulkSave", map[string]any{
		"changedItems": []map[string]any{
			{"rowId": 1, "status": "finished"},
		},
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, svc.savedRows)
}

func TestHandleGetEventTracking(t *testing.T) {
	svc := &fakeTrackingSvc{
		organizerID: 10,
		states: []domain.RecipientState{
			{ID: 1, EventID: 3, Name: "Ada", Status: domain.StatusPending},
		},
	}
	router := newTestRouter(svc, &fakeContributionSvc{}, 10)

	req := httptest.NewRequest(http.MethodGet, "/giftTracking/event/3", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Equal(t, true, envelope["success"])
}

func TestHandleGetEventTracking_NotOrganizer(t *testing.T) {
	svc := &fakeTrackingSvc{organizerID: 10}
	router := newTestRouter(svc, &fakeContributionSvc{}, 11)

	req := httptest.NewRequest(http.MethodGet, "/giftTracking/event/3", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestHandleGetEventTracking_EventNotFound(t *testing.T) {
	svc := &fakeTrackingSvc{eventErr: service.ErrEventNotFound}
	router := newTestRouter(svc, &fakeContributionSvc{}, 10)

	req := httptest.NewRequest(http.MethodGet, "/giftTracking/event/99", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandleGetEventTracking_BadID(t *testing.T) {
	router := newTestRouter(&fakeTrackingSvc{}, &fakeContributionSvc{}, 10)

	req := httptest.NewRequest(http.MethodGet, "/giftTracking/event/abc", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
