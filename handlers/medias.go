package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"microtwit/models"
	"microtwit/storage"
)

// POSTMediaHandler stores the "file" form field and records its path. The
// blob is written before the row, so a failed insert can leave an unreferenced
// blob behind.
func (api *API) POSTMediaHandler(w http.ResponseWriter, r *http.Request) {
	const path = "post_media"

	r.Body = http.MaxBytesReader(w, r.Body, api.maxUpload)
	if err := r.ParseMultipartForm(api.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.fail(w, path, http.StatusBadRequest, models.ErrorValidation,
				fmt.Sprintf("Upload exceeds %d bytes", api.maxUpload))
			return
		}
		api.fail(w, path, http.StatusBadRequest, models.ErrorValidation, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		api.fail(w, path, http.StatusBadRequest, models.ErrorValidation, "Missing file field")
		return
	}
	defer file.Close()

	ctx := r.Context()
	name := storage.UniqueName(header.Filename)

	mediaPath, err := api.blobs.Save(ctx, name, file)
	if err != nil {
		api.internalError(w, r, path, err, "Failed to store media")
		return
	}

	media := &models.Media{MediaPath: mediaPath}
	if err := api.store.Medias.Add(ctx, media); err != nil {
		api.logger.WithField("media_path", mediaPath).Warn("Stored blob has no media row")
		api.internalError(w, r, path, err, "Failed to insert media")
		return
	}

	api.logger.WithFields(logrus.Fields{
		"media_id":   media.ID,
		"media_path": mediaPath,
		"size":       header.Size,
	}).Info("Media uploaded")

	api.metrics.MediaUploaded.WithLabelValues("media").Inc()
	api.succeed(w, path, http.StatusCreated, models.UploadMediaResponse{Result: true, MediaID: media.ID})
}
