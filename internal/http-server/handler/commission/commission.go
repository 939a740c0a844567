package commission

import (
	"encoding/json"
	"net/http"
	"strconv"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/http-server/handler/commission/dto"
	"commission-tracker/internal/http-server/handler/response"
	commission_uc "commission-tracker/internal/usecase/commission"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

type CommissionHandler struct {
	usecase       commissionUsecase
	validate      *validator.Validate
	maxUploadSize int64
	logger        *zlog.Zerolog
}

func NewCommissionHandler(usecase commissionUsecase, maxUploadSize int64, logger *zlog.Zerolog) *CommissionHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = domain.DefaultMaxUploadSize
	}
	return &CommissionHandler{
		usecase:       usecase,
		validate:      validator.New(),
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

func (h *CommissionHandler) CreateCommission(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	form, err := parseUploadForm(r)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}
	defer form.cleanup()

	if err := form.require("artistId", "characterIds", "price", "dateCommissioned"); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	invoice, err := form.invoice()
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	characterIDs, err := form.characterIDs()
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	required := commission_uc.RequiredInput{
		ArtistID:         form.values.Get("artistId"),
		CharacterIDs:     characterIDs,
		Price:            form.values.Get("price"),
		DateCommissioned: form.values.Get("dateCommissioned"),
		Invoice:          invoice,
	}

	c, err := h.usecase.Create(r.Context(), required, form.supplemental())
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	h.logger.Info().Int64("commission_id", c.ID).Msg("Commission created via API")
	response.JSON(w, h.logger, http.StatusCreated, dto.NewCommissionResponse(c))
}

func (h *CommissionHandler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	commissions, err := h.usecase.List(r.Context())
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, dto.NewCommissionListResponse(commissions))
}

func (h *CommissionHandler) GetCommission(w http.ResponseWriter, r *http.Request) {
	id, err := commissionID(r)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	c, err := h.usecase.Get(r.Context(), id)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, dto.NewCommissionResponse(c))
}

func (h *CommissionHandler) CompleteCommission(w http.ResponseWriter, r *http.Request) {
	id, err := commissionID(r)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	form, err := parseUploadForm(r)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}
	defer form.cleanup()

	if err := form.require("title", "description", "thumbnailLabel"); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	c, err := h.usecase.Complete(r.Context(), id, form.supplemental())
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, dto.NewCommissionResponse(c))
}

func (h *CommissionHandler) UpdateCommission(w http.ResponseWriter, r *http.Request) {
	id, err := commissionID(r)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	var req dto.UpdateCommissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, h.logger, ErrInvalidBody.WithCause(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, h.logger, ErrInvalidUpdateBody.WithCause(err))
		return
	}

	upd := domain.CommissionUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.NSFW != nil {
		nsfw := bool(*req.NSFW)
		upd.NSFW = &nsfw
	}

	c, err := h.usecase.Update(r.Context(), id, upd)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	response.JSON(w, h.logger, http.StatusOK, dto.NewCommissionResponse(c))
}

func (h *CommissionHandler) DeleteCommission(w http.ResponseWriter, r *http.Request) {
	id, err := commissionID(r)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	if err := h.usecase.Delete(r.Context(), id); err != nil {
		response.Error(w, h.logger, err)
		return
	}

	h.logger.Info().Int64("commission_id", id).Msg("Commission deleted via API")
	w.WriteHeader(http.StatusNoContent)
}

func commissionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, commission_uc.ErrInvalidID
	}
	return id, nil
}
