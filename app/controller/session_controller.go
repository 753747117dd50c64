package controller

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"mifoto-print/cart"
	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/logger"
	"mifoto-print/models"
	"mifoto-print/repository"
	"mifoto-print/service"
	"mifoto-print/utils"
)

const defaultPreviewScale = 0.25

// SessionController handles the photo editor: uploads, per-copy edits, previews and
// committing the copies to an order
type SessionController struct {
	catalog    *catalog.Catalog
	sessions   *service.EditorSessions
	photos     repository.PhotoRepositoryInterface
	compositor *service.Compositor
	carts      *cart.Manager
}

func NewSessionController(
	c *catalog.Catalog,
	sessions *service.EditorSessions,
	photos repository.PhotoRepositoryInterface,
	compositor *service.Compositor,
	carts *cart.Manager,
) *SessionController {
	return &SessionController{catalog: c, sessions: sessions, photos: photos, compositor: compositor, carts: carts}
}

func sessionResponse(s *service.EditorSession) models.SessionResponse {
	return models.SessionResponse{ID: s.ID, SizeID: s.SizeID, PhotoCount: s.PhotoCount(), Copies: s.Copies()}
}

// CreateSession handles POST /sessions
// Example request:
// POST /sessions
// {"sizeId": "kiosco"}
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, "CreateSession", err)
		return
	}
	session, err := c.sessions.Create(req.SizeID)
	if err != nil {
		writeError(w, "CreateSession", err)
		return
	}
	logger.L().Infof("✅ CreateSession: session %s for size %s", session.ID, session.SizeID)
	writeJSON(w, http.StatusCreated, sessionResponse(session))
}

// UploadPhoto handles POST /sessions/{id}/photos (multipart: photo, quantity)
func (c *SessionController) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	session, err := c.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, "UploadPhoto", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, "UploadPhoto", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, "UploadPhoto", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "photo file is required"))
		return
	}
	defer file.Close()

	quantity := c.catalog.InitialQuantity(session.SizeID)
	if raw := r.FormValue("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, "UploadPhoto", fmt.Errorf("%w: %q", pkgerrors.ErrInvalidQuantity, raw))
			return
		}
	}

	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadBytes+1))
	if err != nil {
		writeError(w, "UploadPhoto", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to read upload"))
		return
	}
	photo, err := service.ValidateUpload(header.Filename, data)
	if err != nil {
		writeError(w, "UploadPhoto", err)
		return
	}
	if quantity < 1 {
		writeError(w, "UploadPhoto", fmt.Errorf("%w: got %d", pkgerrors.ErrInvalidQuantity, quantity))
		return
	}
	if err := c.photos.Save(r.Context(), photo); err != nil {
		writeError(w, "UploadPhoto", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to store photo"))
		return
	}
	copies, err := session.AddPhoto(photo, quantity)
	if err != nil {
		if delErr := c.photos.Delete(r.Context(), photo.ID); delErr != nil {
			logger.L().Warnf("⚠️  UploadPhoto: failed to remove rejected photo %s: %v", photo.ID, delErr)
		}
		writeError(w, "UploadPhoto", err)
		return
	}

	logger.L().Infof("✅ UploadPhoto: %s added to session %s as %d copies", photo.DisplayName, session.ID, len(copies))
	writeJSON(w, http.StatusCreated, models.UploadResponse{Photo: photo, Copies: copies})
}

// UpdateSettings handles PATCH /sessions/{id}/settings
// Example request:
// {"copyIds": ["..."], "margins": "white-5", "fit": "fit"}
// margins also accepts labels such as "blanco 5mm"
func (c *SessionController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	session, err := c.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, "UpdateSettings", err)
		return
	}
	var req models.UpdateSettingsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, "UpdateSettings", err)
		return
	}
	if req.Margins != nil {
		style, _ := utils.ParseMarginStyle(string(*req.Margins))
		req.Margins = &style
	}
	if err := session.Apply(req.CopyIDs, req.Patch()); err != nil {
		writeError(w, "UpdateSettings", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

// Rotate handles POST /sessions/{id}/rotate
func (c *SessionController) Rotate(w http.ResponseWriter, r *http.Request) {
	session, err := c.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, "Rotate", err)
		return
	}
	var req models.RotateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, "Rotate", err)
		return
	}
	if err := session.Rotate(req.CopyIDs); err != nil {
		writeError(w, "Rotate", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

// Preview handles GET /sessions/{id}/copies/{copyId}/preview?scale=0.25
// Responds with the composed JPEG.
func (c *SessionController) Preview(w http.ResponseWriter, r *http.Request) {
	session, err := c.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, "Preview", err)
		return
	}
	scale := defaultPreviewScale
	if raw := r.URL.Query().Get("scale"); raw != "" {
		scale, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, "Preview", fmt.Errorf("%w: %q", pkgerrors.ErrInvalidScale, raw))
			return
		}
	}
	cp, photo, err := session.Copy(r.PathValue("copyId"))
	if err != nil {
		writeError(w, "Preview", err)
		return
	}

	result, err := c.compositor.RenderCopy(r.Context(), photo, session.SizeID, cp, scale)
	if err != nil {
		writeError(w, "Preview", err)
		return
	}
	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Raster); err != nil {
		logger.L().Errorf("❌ Preview: Error writing image: %v", err)
	}
}

// Commit handles POST /sessions/{id}/commit
// Adds every copy of the session to the order and closes the session.
func (c *SessionController) Commit(w http.ResponseWriter, r *http.Request) {
	session, err := c.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, "Commit", err)
		return
	}
	var req models.CommitRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, "Commit", err)
		return
	}
	copies := session.Copies()
	if len(copies) == 0 {
		writeError(w, "Commit", fmt.Errorf("%w: session has no photos", pkgerrors.ErrInvalidQuantity))
		return
	}

	orderSession, err := c.carts.Get(r.Context(), req.OrderID)
	if err != nil {
		writeError(w, "Commit", err)
		return
	}
	order, err := orderSession.AddCopies(r.Context(), session.SizeID, copies)
	if err != nil {
		writeError(w, "Commit", err)
		return
	}
	c.sessions.Close(session.ID)

	logger.L().Infof("✅ Commit: %d copies of session %s added to order %s", len(copies), session.ID, order.ID)
	writeJSON(w, http.StatusOK, order)
}
