package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skjutsgruppen/rideshare/backend/internal/dispatch"
	"github.com/skjutsgruppen/rideshare/backend/internal/domain"
	"github.com/skjutsgruppen/rideshare/backend/internal/handler"
)

// mockFeedServicer is a test double for handler.FeedServicer.
type mockFeedServicer struct {
	list func(ctx context.Context, p domain.PaginationParams) ([]dispatch.Variant, int64, error)
}

func (m *mockFeedServicer) List(ctx context.Context, p domain.PaginationParams) ([]dispatch.Variant, int64, error) {
	return m.list(ctx, p)
}

// compile-time check: mockFeedServicer must satisfy handler.FeedServicer.
var _ handler.FeedServicer = (*mockFeedServicer)(nil)

func offerFixture() domain.Trip {
	return domain.Trip{
		ID:        12,
		Type:      domain.TripTypeOffer,
		TripStart: &domain.Place{Name: "Göteborg"},
		TripEnd:   &domain.Place{Name: "Oslo"},
		Date:      time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		Seats:     3,
		User:      &domain.User{ID: 1, FirstName: "Bo"},
	}
}

func TestListFeed_OK(t *testing.T) {
	var seen domain.PaginationParams
	h := newHTTPHandler(t, handler.Deps{Feed: &mockFeedServicer{
		list: func(_ context.Context, p domain.PaginationParams) ([]dispatch.Variant, int64, error) {
			seen = p
			return []dispatch.Variant{
				dispatch.OfferCard{Offer: offerFixture(), Handlers: dispatch.Handlers{OnPress: "open:trip:12", OnSharePress: "share:trip:12"}},
				dispatch.GroupCard{Group: domain.Group{ID: 3, Name: "Pendlare"}},
			}, 7, nil
		},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed?page=2&limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 2, Limit: 2}, seen)

	var body handler.CardPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 2, Total: 7}, body.Pagination)

	offer := body.Data[0]
	assert.Equal(t, dispatch.KindOffer, offer.Kind)
	require.NotNil(t, offer.Offer)
	assert.Equal(t, 12, offer.Offer.ID)
	assert.Nil(t, offer.Group)
	assert.Equal(t, dispatch.Action("open:trip:12"), offer.OnPress)
	assert.Equal(t, dispatch.Action("share:trip:12"), offer.OnSharePress)

	assert.Equal(t, dispatch.KindGroup, body.Data[1].Kind)
	require.NotNil(t, body.Data[1].Group)
	assert.Equal(t, "Pendlare", body.Data[1].Group.Name)
}

func TestListFeed_WireShape(t *testing.T) {
	h := newHTTPHandler(t, handler.Deps{Feed: &mockFeedServicer{
		list: func(_ context.Context, _ domain.PaginationParams) ([]dispatch.Variant, int64, error) {
			return []dispatch.Variant{dispatch.AskCard{Ask: domain.Trip{ID: 4, Type: domain.TripTypeWanted}, Handlers: dispatch.Handlers{OnPress: "open:trip:4"}}}, 1, nil
		},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var raw struct {
		Data []map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw.Data, 1)
	assert.JSONEq(t, `"ask"`, string(raw.Data[0]["kind"]))
	assert.JSONEq(t, `"open:trip:4"`, string(raw.Data[0]["onPress"]))
	assert.Contains(t, raw.Data[0], "ask")
	assert.NotContains(t, raw.Data[0], "offer")
	assert.NotContains(t, raw.Data[0], "onSharePress")
}

func TestListFeed_DefaultsAndEmpty(t *testing.T) {
	var seen domain.PaginationParams
	h := newHTTPHandler(t, handler.Deps{Feed: &mockFeedServicer{
		list: func(_ context.Context, p domain.PaginationParams) ([]dispatch.Variant, int64, error) {
			seen = p
			return []dispatch.Variant{}, 0, nil
		},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: 20}, seen)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":20,"total":0}}`, rec.Body.String())
}

func TestListFeed_BadParam(t *testing.T) {
	h := newHTTPHandler(t, handler.Deps{Feed: &mockFeedServicer{}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed?page=abc", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec.Body).Error.Code)
}

func TestListFeed_ServiceError(t *testing.T) {
	h := newHTTPHandler(t, handler.Deps{Feed: &mockFeedServicer{
		list: func(_ context.Context, _ domain.PaginationParams) ([]dispatch.Variant, int64, error) {
			return nil, 0, errors.New("db down")
		},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/feed", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec.Body)
	assert.Equal(t, "internal", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "db down")
}
