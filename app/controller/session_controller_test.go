package controller

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mifoto-print/cart"
	"mifoto-print/catalog"
	"mifoto-print/models"
	"mifoto-print/repository"
	"mifoto-print/service"
)

type trackingPhotoRepository struct {
	*repository.MemoryPhotoRepository
	mu     sync.Mutex
	stored map[string]bool
}

func newTrackingPhotoRepository() *trackingPhotoRepository {
	return &trackingPhotoRepository{MemoryPhotoRepository: repository.NewMemoryPhotoRepository(), stored: map[string]bool{}}
}

func (r *trackingPhotoRepository) Save(ctx context.Context, photo models.SourcePhoto) error {
	r.mu.Lock()
	r.stored[photo.ID] = true
	r.mu.Unlock()
	return r.MemoryPhotoRepository.Save(ctx, photo)
}

func (r *trackingPhotoRepository) Delete(ctx context.Context, photoID string) error {
	r.mu.Lock()
	delete(r.stored, photoID)
	r.mu.Unlock()
	return r.MemoryPhotoRepository.Delete(ctx, photoID)
}

func (r *trackingPhotoRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stored)
}

func uploadRequest(t *testing.T, sessionID string) *http.Request {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, imaging.Encode(&img, imaging.New(40, 30, color.NRGBA{G: 200, A: 255}), imaging.PNG))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", "extra.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetPathValue("id", sessionID)
	return req
}

func TestUploadPhotoRejectedByBatchLimitLeavesNoStoredPhoto(t *testing.T) {
	sizes := catalog.Default()
	photos := newTrackingPhotoRepository()
	sessions := service.NewEditorSessions(sizes)
	manager := cart.NewManager(cart.NewAggregator(sizes), repository.NewMemoryCartRepository())
	c := NewSessionController(sizes, sessions, photos, service.NewCompositor(sizes, nil, service.DefaultQuality), manager)

	session, err := sessions.Create("medium")
	require.NoError(t, err)
	for i := 0; i < service.MaxPhotosPerBatch; i++ {
		_, err := session.AddPhoto(models.SourcePhoto{ID: fmt.Sprintf("p%d", i)}, 1)
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	c.UploadPhoto(rec, uploadRequest(t, session.ID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, photos.count())
}

func TestUploadPhotoStoresAcceptedPhoto(t *testing.T) {
	sizes := catalog.Default()
	photos := newTrackingPhotoRepository()
	sessions := service.NewEditorSessions(sizes)
	manager := cart.NewManager(cart.NewAggregator(sizes), repository.NewMemoryCartRepository())
	c := NewSessionController(sizes, sessions, photos, service.NewCompositor(sizes, nil, service.DefaultQuality), manager)

	session, err := sessions.Create("kiosco")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.UploadPhoto(rec, uploadRequest(t, session.ID))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, photos.count())
	assert.Len(t, session.Copies(), 2)
}
