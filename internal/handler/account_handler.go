package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/cqrs"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/middleware"
)

// AccountCommander defines the write-side workflow operations used by
// AccountHandler.
type AccountCommander interface {
	CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (string, error)
	ActivateAccount(ctx context.Context, cmd cqrs.ActivateAccountCommand) (string, error)
	EmailActivationLink(ctx context.Context, cmd cqrs.EmailActivationLinkCommand) (string, error)
	EmailActivationLinkByEmail(ctx context.Context, cmd cqrs.EmailActivationLinkByEmailCommand) (string, error)
	EmailMySecret(ctx context.Context, cmd cqrs.EmailSecretCommand) (string, error)
	EmailMySecretByEmail(ctx context.Context, cmd cqrs.EmailSecretByEmailCommand) (string, error)
	SendLoginID(ctx context.Context, cmd cqrs.SendLoginIDCommand) (string, error)
	UpdatePassword(ctx context.Context, cmd cqrs.UpdatePasswordCommand) (string, error)
	DeleteExpiredAccount(ctx context.Context, cmd cqrs.DeleteExpiredAccountCommand) (string, error)
	DeleteMyData(ctx context.Context, cmd cqrs.DeleteMyDataCommand) (string, error)
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	IsAccountActive(ctx context.Context, q cqrs.AccountActiveQuery) (string, error)
	ValidateLoginSecret(ctx context.Context, q cqrs.ValidateSecretQuery) (string, error)
}

// AccountHandler maps HTTP requests onto workflow operations. Every
// workflow error becomes a 400 with the message as payload; successes are
// wrapped in a message field.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

func (h *AccountHandler) IsAccountActive(c *gin.Context) {
	message, err := h.queries.IsAccountActive(c.Request.Context(), cqrs.AccountActiveQuery{
		AuthenticationID: c.Param("authenticationId"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AccountHandler) ActivateAccount(c *gin.Context) {
	message, err := h.commands.ActivateAccount(c.Request.Context(), cqrs.ActivateAccountCommand{
		AuthenticationID: c.Param("authenticationId"),
		Secret:           c.Param("secret"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AccountHandler) EmailActivationLink(c *gin.Context) {
	message, err := h.commands.EmailActivationLink(c.Request.Context(), cqrs.EmailActivationLinkCommand{
		AuthenticationID: c.Param("authenticationId"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AccountHandler) EmailActivationLinkByEmail(c *gin.Context) {
	email := c.Param("email")
	if !middleware.ValidateEmail(email) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
		return
	}
	message, err := h.commands.EmailActivationLinkByEmail(c.Request.Context(), cqrs.EmailActivationLinkByEmailCommand{
		Email: email,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AccountHandler) EmailMySecret(c *gin.Context) {
	message, err := h.commands.EmailMySecret(c.Request.Context(), cqrs.EmailSecretCommand{
		AuthenticationID: c.Param("authenticationId"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AccountHandler) EmailMySecretByEmail(c *gin.Context) {
	email := c.Param("email")
	if !middleware.ValidateEmail(email) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
		return
	}
	message, err := h.commands.EmailMySecretByEmail(c.Request.Context(), cqrs.EmailSecretByEmailCommand{
		Email: email,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AccountHandler) CreateAccount(c *gin.Context) {
	email := c.Param("email")
	if !middleware.ValidateEmail(email) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid email format")
		return
	}
	message, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		AuthenticationID: c.Param("authenticationId"),
		Email:            email,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

func (h *AccountHandler) SendLoginID(c *gin.Context) {
	message, err := h.commands.SendLoginID(c.Request.Context(), cqrs.SendLoginIDCommand{
		Email: c.Param("email"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AccountHandler) ValidateSecret(c *gin.Context) {
	message, err := h.queries.ValidateLoginSecret(c.Request.Context(), cqrs.ValidateSecretQuery{
		AuthenticationID: c.Param("authenticationId"),
		Secret:           c.Param("secret"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AccountHandler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}
	message, err := h.commands.UpdatePassword(c.Request.Context(), cqrs.UpdatePasswordCommand{
		Email:    c.Param("email"),
		Secret:   c.Param("secret"),
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *AccountHandler) DeleteExpiredAccount(c *gin.Context) {
	message, err := h.commands.DeleteExpiredAccount(c.Request.Context(), cqrs.DeleteExpiredAccountCommand{
		Email: c.Param("email"),
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// DeleteMyData deletes the caller's own account. The subject comes from the
// verified token, never from the path.
func (h *AccountHandler) DeleteMyData(c *gin.Context) {
	authenticationID, ok := middleware.GetAuthenticationID(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	message, err := h.commands.DeleteMyData(c.Request.Context(), cqrs.DeleteMyDataCommand{
		AuthenticationID: authenticationID,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
