package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bluecarbon/registry-api/application/port/inbound"
	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/http/middleware"
	"github.com/bluecarbon/registry-api/infrastructure/http/response"
	"github.com/bluecarbon/registry-api/infrastructure/http/validator"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

type WalletHandler struct {
	walletUseCase  inbound.WalletUseCase
	log            logger.Logger
	includeDetails bool
}

func NewWalletHandler(walletUseCase inbound.WalletUseCase, log logger.Logger, includeDetails bool) *WalletHandler {
	return &WalletHandler{
		walletUseCase:  walletUseCase,
		log:            log,
		includeDetails: includeDetails,
	}
}

// Get handles GET /api/wallet.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Error(w, r, apperror.NewUnauthorized("User not authenticated"), h.includeDetails)
		return
	}

	info, err := h.walletUseCase.Get(r.Context(), identity.ID)
	if err != nil {
		response.Error(w, r, apperror.Map(err), h.includeDetails)
		return
	}
	response.JSON(w, http.StatusOK, info)
}

// Save handles POST /api/wallet. A wallet address can be claimed by one
// identity at a time.
func (h *WalletHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Error(w, r, apperror.NewUnauthorized("User not authenticated"), h.includeDetails)
		return
	}

	var body validator.WalletRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, apperror.NewValidationFailed(map[string][]string{
			"body": {"request body must be valid JSON"},
		}), h.includeDetails)
		return
	}

	if fields := validator.ValidateWalletRequest(body); fields != nil {
		response.Error(w, r, apperror.NewValidationFailed(fields), h.includeDetails)
		return
	}

	source := ""
	if body.Metadata != nil {
		source = body.Metadata.Source
	}

	wallet, err := h.walletUseCase.Save(r.Context(), identity.ID, body.WalletAddress, source)
	if err != nil {
		response.Error(w, r, apperror.Map(err), h.includeDetails)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"walletAddress": wallet.Address,
		"connectedAt":   wallet.ConnectedAt,
		"verified":      wallet.Verified,
		"hasWallet":     true,
	})
}

// Delete handles DELETE /api/wallet.
func (h *WalletHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Error(w, r, apperror.NewUnauthorized("User not authenticated"), h.includeDetails)
		return
	}

	if err := h.walletUseCase.Delete(r.Context(), identity.ID); err != nil {
		response.Error(w, r, apperror.Map(err), h.includeDetails)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Wallet disconnected",
		"hasWallet": false,
	})
}
