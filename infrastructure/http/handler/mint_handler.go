package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bluecarbon/registry-api/application/port/inbound"
	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/http/middleware"
	"github.com/bluecarbon/registry-api/infrastructure/http/response"
	"github.com/bluecarbon/registry-api/infrastructure/http/validator"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

type MintHandler struct {
	mintUseCase    inbound.MintUseCase
	log            logger.Logger
	includeDetails bool
}

func NewMintHandler(mintUseCase inbound.MintUseCase, log logger.Logger, includeDetails bool) *MintHandler {
	return &MintHandler{
		mintUseCase:    mintUseCase,
		log:            log,
		includeDetails: includeDetails,
	}
}

// MintResponse is the success payload of POST /api/mint.
type MintResponse struct {
	Mint           string `json:"mint"`
	Transaction    string `json:"transaction"`
	Amount         uint64 `json:"amount"`
	Decimals       uint8  `json:"decimals"`
	Recipient      string `json:"recipient"`
	ExplorerURL    string `json:"explorer_url"`
	ProcessingTime string `json:"processing_time"`
}

// Mint handles POST /api/mint. Rate limiting, validation, authentication
// and the admin check have all run by the time the orchestrator is
// invoked; validation still happens here so no orchestration step can see
// a malformed request.
func (h *MintHandler) Mint(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body validator.MintRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.ErrorWithTiming(w, r, apperror.NewValidationFailed(map[string][]string{
			"body": {"request body must be valid JSON"},
		}), h.includeDetails, time.Since(start))
		return
	}

	req, fields := validator.ValidateMintRequest(body)
	if fields != nil {
		response.ErrorWithTiming(w, r, apperror.NewValidationFailed(fields), h.includeDetails, time.Since(start))
		return
	}

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.ErrorWithTiming(w, r, apperror.NewUnauthorized("User not authenticated"), h.includeDetails, time.Since(start))
		return
	}

	result, err := h.mintUseCase.Mint(r.Context(), req, identity.ID)
	if err != nil {
		response.ErrorWithTiming(w, r, apperror.Map(err), h.includeDetails, time.Since(start))
		return
	}

	response.JSON(w, http.StatusOK, MintResponse{
		Mint:           result.Mint,
		Transaction:    result.Transaction,
		Amount:         result.Amount,
		Decimals:       result.Decimals,
		Recipient:      result.Recipient,
		ExplorerURL:    result.ExplorerURL,
		ProcessingTime: strconv.FormatInt(result.ProcessingTime.Milliseconds(), 10) + "ms",
	})
}
