package http

import (
	"encoding/json"
	"net/http"

	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/internal/usecase"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

// defaultSearchLimit применяется, если клиент не передал limit.
const defaultSearchLimit = 10

type SearchHandler struct {
	searchUsecase usecase.SearchUC
	videoUsecase  usecase.VideoUC
	logger        logger.Logger
}

func NewSearchHandler(searchUsecase usecase.SearchUC, videoUsecase usecase.VideoUC, logger logger.Logger) *SearchHandler {
	return &SearchHandler{
		searchUsecase: searchUsecase,
		videoUsecase:  videoUsecase,
		logger:        logger,
	}
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func parseSearchRequest(r *http.Request) (*searchRequest, error) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, e.ErrStatusBadRequest
	}
	if req.Limit == 0 {
		req.Limit = defaultSearchLimit
	}
	return &req, nil
}

// searchGlobal
//
//	@Summary		Поиск по всем видео
//	@Description	Возвращает лучший кадр каждого подходящего видео, по убыванию близости
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		searchRequest	true	"Текст запроса и лимит"
//	@Success		200		{array}		usecase.GlobalSearchResult
//	@Failure		400		{object}	ErrorResponse
//	@Router			/search/global [post]
func (h *SearchHandler) searchGlobal(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromCtx(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	req, err := parseSearchRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	results, err := h.searchUsecase.SearchGlobal(r.Context(), &usecase.GlobalSearchReq{
		OwnerID: userID,
		Query:   req.Query,
		Limit:   req.Limit,
	})
	if err != nil {
		h.logger.Warnf("global search failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, results)
}

// searchInVideo
//
//	@Summary		Поиск внутри видео
//	@Description	Возвращает лучшие кадры одного проиндексированного видео
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int				true	"ID видео"
//	@Param			request	body		searchRequest	true	"Текст запроса и лимит"
//	@Success		200		{array}		usecase.InVideoSearchResult
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Видео еще не проиндексировано"
//	@Router			/search/videos/{id} [post]
func (h *SearchHandler) searchInVideo(w http.ResponseWriter, r *http.Request) {
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

	req, err := parseSearchRequest(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	// Искать можно только по завершенному индексу; заодно проверяется владелец.
	info, err := h.videoUsecase.GetVideo(r.Context(), userID, videoID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if info.IndexingStatus != domain.StatusCompleted {
		WriteError(w, e.ErrVideoNotReady)
		return
	}

	results, err := h.searchUsecase.SearchInVideo(r.Context(), &usecase.InVideoSearchReq{
		VideoID: videoID,
		Query:   req.Query,
		Limit:   req.Limit,
	})
	if err != nil {
		h.logger.Warnf("in-video search failed for video %d: %s", videoID, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, results)
}
