package http

import (
	"net/http"

	"github.com/tewff14/searh-your-moments-webapp/internal/usecase"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

type VideoHandler struct {
	videoUsecase usecase.VideoUC
	logger       logger.Logger
}

func NewVideoHandler(videoUsecase usecase.VideoUC, logger logger.Logger) *VideoHandler {
	return &VideoHandler{videoUsecase: videoUsecase, logger: logger}
}

// uploadVideo
//
//	@Summary		Загрузка видео
//	@Description	Сохраняет видеофайл и запускает фоновую индексацию кадров
//	@Tags			videos
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file					true	"Видеофайл"
//	@Param			title	formData	string					false	"Название (по умолчанию — имя файла)"
//	@Success		201		{object}	map[string]interface{}	"Идентификатор созданного видео"
//	@Failure		400		{object}	ErrorResponse			"Ошибка валидации"
//	@Failure		415		{object}	ErrorResponse			"Файл не является видео"
//	@Router			/videos [post]
func (h *VideoHandler) uploadVideo(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 500 << 20
		maxFileSize         = 500 << 20
		maxMemory           = 32 << 20
	)

	userID, err := UserIDFromCtx(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	upload, err := parseVideoUpload(r, maxFileSize)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.videoUsecase.UploadVideo(r.Context(), usecase.NewUploadVideoReq(
		userID, upload.Title, upload.FileName, upload.ContentType, upload.Data,
	))
	if err != nil {
		h.logger.Warnf("upload failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"VideoID": res.VideoID,
	})
}

// listVideos
//
//	@Summary		Список видео пользователя
//	@Tags			videos
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		usecase.VideoInfo
//	@Failure		401	{object}	ErrorResponse
//	@Router			/videos [get]
func (h *VideoHandler) listVideos(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromCtx(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	videos, err := h.videoUsecase.ListVideos(r.Context(), userID)
	if err != nil {
		h.logger.Warnf("list videos failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, videos)
}

// getVideo
//
//	@Summary		Информация о видео
//	@Tags			videos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"ID видео"
//	@Success		200	{object}	usecase.VideoInfo
//	@Failure		404	{object}	ErrorResponse
//	@Router			/videos/{id} [get]
func (h *VideoHandler) getVideo(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromCtx(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	videoID, err := videoIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := h.videoUsecase.GetVideo(r.Context(), userID, videoID)
	if err != nil {
		h.logger.Warnf("get video %d failed: %s", videoID, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, info)
}

// deleteVideo
//
//	@Summary		Удаление видео
//	@Description	Удаляет запись, файл, превью и записи векторного индекса
//	@Tags			videos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int						true	"ID видео"
//	@Success		200	{object}	map[string]interface{}	"Число удаленных записей индекса"
//	@Failure		404	{object}	ErrorResponse
//	@Router			/videos/{id} [delete]
func (h *VideoHandler) deleteVideo(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromCtx(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	videoID, err := videoIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	removed, err := h.videoUsecase.DeleteVideo(r.Context(), userID, videoID)
	if err != nil {
		h.logger.Warnf("delete video %d failed: %s", videoID, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"RemovedFrames": removed,
	})
}

// streamVideo
//
//	@Summary		Ссылка на стриминг видео
//	@Description	Возвращает временную presigned-ссылку на видеофайл
//	@Tags			videos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int						true	"ID видео"
//	@Success		200	{object}	map[string]interface{}	"URL"
//	@Failure		404	{object}	ErrorResponse
//	@Router			/videos/{id}/stream [get]
func (h *VideoHandler) streamVideo(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromCtx(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	videoID, err := videoIDParam(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	url, err := h.videoUsecase.StreamURL(r.Context(), userID, videoID)
	if err != nil {
		h.logger.Warnf("stream url for video %d failed: %s", videoID, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"URL": url,
	})
}
