package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Append(ctx context.Context, image []byte, timestamp time.Time) (*domain.DetectionEvent, error) {
	args := m.Called(ctx, image, timestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DetectionEvent), args.Error(1)
}

func (m *MockEventRepository) ListUnread(ctx context.Context) ([]domain.DetectionEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionEvent), args.Error(1)
}

func (m *MockEventRepository) CountUnread(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockGalleryRepository struct {
	mock.Mock
}

func (m *MockGalleryRepository) Register(ctx context.Context, label string, embedding []float64) (*domain.GalleryEntry, error) {
	args := m.Called(ctx, label, embedding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GalleryEntry), args.Error(1)
}

func (m *MockGalleryRepository) Nearest(ctx context.Context, embedding []float64) (*domain.Match, error) {
	args := m.Called(ctx, embedding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Match), args.Error(1)
}

func (m *MockGalleryRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func createEventsApp(events *MockEventRepository, gallery *MockGalleryRepository) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})

	h := NewEventsHandler(events, gallery, testLogger())
	app.Get("/v1/events", h.List)
	app.Get("/v1/events/count", h.Count)
	app.Get("/v1/gallery/count", h.GalleryCount)
	return app
}

func TestEventsHandler_List(t *testing.T) {
	newer := domain.DetectionEvent{
		ID:        uuid.New(),
		Image:     []byte("frame-2"),
		CreatedAt: time.Now(),
		Read:      true,
	}
	older := domain.DetectionEvent{
		ID:        uuid.New(),
		Image:     []byte("frame-1"),
		CreatedAt: time.Now().Add(-time.Minute),
		Read:      true,
	}

	t.Run("returns unread events newest first", func(t *testing.T) {
		events := &MockEventRepository{}
		events.On("ListUnread", mock.Anything).Return([]domain.DetectionEvent{newer, older}, nil)

		app := createEventsApp(events, &MockGalleryRepository{})

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/events", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, 200, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		var list EventListResponse
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Equal(t, 2, list.Count)
		require.Len(t, list.Events, 2)
		assert.Equal(t, newer.ID, list.Events[0].ID)
		assert.Equal(t, older.ID, list.Events[1].ID)

		// Image bytes travel as base64.
		assert.Contains(t, string(body), base64.StdEncoding.EncodeToString([]byte("frame-2")))
	})

	t.Run("empty log yields empty list", func(t *testing.T) {
		events := &MockEventRepository{}
		events.On("ListUnread", mock.Anything).Return([]domain.DetectionEvent{}, nil)

		app := createEventsApp(events, &MockGalleryRepository{})

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/events", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, 200, resp.StatusCode)

		var list EventListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Equal(t, 0, list.Count)
		assert.NotNil(t, list.Events)
	})

	t.Run("store failure maps to 503", func(t *testing.T) {
		events := &MockEventRepository{}
		events.On("ListUnread", mock.Anything).Return(nil, domain.ErrStoreUnavailable)

		app := createEventsApp(events, &MockGalleryRepository{})

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/events", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, 503, resp.StatusCode)
	})
}

func TestEventsHandler_Count(t *testing.T) {
	events := &MockEventRepository{}
	events.On("CountUnread", mock.Anything).Return(3, nil)

	app := createEventsApp(events, &MockGalleryRepository{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/events/count", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, 200, resp.StatusCode)

	var count CountResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&count))
	assert.Equal(t, 3, count.Count)

	// Counting must not consume anything.
	events.AssertNotCalled(t, "ListUnread", mock.Anything)
}

func TestEventsHandler_GalleryCount(t *testing.T) {
	gallery := &MockGalleryRepository{}
	gallery.On("Count", mock.Anything).Return(5, nil)

	app := createEventsApp(&MockEventRepository{}, gallery)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/gallery/count", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, 200, resp.StatusCode)

	var count CountResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&count))
	assert.Equal(t, 5, count.Count)
}
