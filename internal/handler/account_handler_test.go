package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonamsamdupkhangsar/account-rest-service/internal/cqrs"
)

type mockCommander struct {
	createAccount              func(cmd cqrs.CreateAccountCommand) (string, error)
	activateAccount            func(cmd cqrs.ActivateAccountCommand) (string, error)
	emailActivationLink        func(cmd cqrs.EmailActivationLinkCommand) (string, error)
	emailActivationLinkByEmail func(cmd cqrs.EmailActivationLinkByEmailCommand) (string, error)
	emailMySecret              func(cmd cqrs.EmailSecretCommand) (string, error)
	emailMySecretByEmail       func(cmd cqrs.EmailSecretByEmailCommand) (string, error)
	sendLoginID                func(cmd cqrs.SendLoginIDCommand) (string, error)
	updatePassword             func(cmd cqrs.UpdatePasswordCommand) (string, error)
	deleteExpiredAccount       func(cmd cqrs.DeleteExpiredAccountCommand) (string, error)
	deleteMyData               func(cmd cqrs.DeleteMyDataCommand) (string, error)
}

func (m *mockCommander) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (string, error) {
	return m.createAccount(cmd)
}

func (m *mockCommander) ActivateAccount(ctx context.Context, cmd cqrs.ActivateAccountCommand) (string, error) {
	return m.activateAccount(cmd)
}

func (m *mockCommander) EmailActivationLink(ctx context.Context, cmd cqrs.EmailActivationLinkCommand) (string, error) {
	return m.emailActivationLink(cmd)
}

func (m *mockCommander) EmailActivationLinkByEmail(ctx context.Context, cmd cqrs.EmailActivationLinkByEmailCommand) (string, error) {
	return m.emailActivationLinkByEmail(cmd)
}

func (m *mockCommander) EmailMySecret(ctx context.Context, cmd cqrs.EmailSecretCommand) (string, error) {
	return m.emailMySecret(cmd)
}

func (m *mockCommander) EmailMySecretByEmail(ctx context.Context, cmd cqrs.EmailSecretByEmailCommand) (string, error) {
	return m.emailMySecretByEmail(cmd)
}

func (m *mockCommander) SendLoginID(ctx context.Context, cmd cqrs.SendLoginIDCommand) (string, error) {
	return m.sendLoginID(cmd)
}

func (m *mockCommander) UpdatePassword(ctx context.Context, cmd cqrs.UpdatePasswordCommand) (string, error) {
	return m.updatePassword(cmd)
}

func (m *mockCommander) DeleteExpiredAccount(ctx context.Context, cmd cqrs.DeleteExpiredAccountCommand) (string, error) {
	return m.deleteExpiredAccount(cmd)
}

func (m *mockCommander) DeleteMyData(ctx context.Context, cmd cqrs.DeleteMyDataCommand) (string, error) {
	return m.deleteMyData(cmd)
}

type mockQuerier struct {
	isAccountActive     func(q cqrs.AccountActiveQuery) (string, error)
	validateLoginSecret func(q cqrs.ValidateSecretQuery) (string, error)
}

func (m *mockQuerier) IsAccountActive(ctx context.Context, q cqrs.AccountActiveQuery) (string, error) {
	return m.isAccountActive(q)
}

func (m *mockQuerier) ValidateLoginSecret(ctx context.Context, q cqrs.ValidateSecretQuery) (string, error) {
	return m.validateLoginSecret(q)
}

func setupRouter(commands AccountCommander, queries AccountQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAccountHandler(commands, queries)

	router := gin.New()
	accounts := router.Group("/accounts")
	{
		accounts.GET("/active/:authenticationId", h.IsAccountActive)
		accounts.PUT("/activate/:authenticationId/:secret", h.ActivateAccount)
		accounts.PUT("/emailactivationlink/:authenticationId", h.EmailActivationLink)
		accounts.PUT("/emailactivationlink/email/:email", h.EmailActivationLinkByEmail)
		accounts.PUT("/emailmysecret/:authenticationId", h.EmailMySecret)
		accounts.PUT("/emailmysecret/email/:email", h.EmailMySecretByEmail)
		accounts.POST("/:authenticationId/:email", h.CreateAccount)
		accounts.PUT("/email/authenticationId/:email", h.SendLoginID)
		accounts.PUT("/validate/secret/:authenticationId/:secret", h.ValidateSecret)
		accounts.PUT("/password/:email/:secret", h.UpdatePassword)
		accounts.DELETE("/email/:email", h.DeleteExpiredAccount)
		accounts.DELETE("/delete", fakeAuth("tokenuser"), h.DeleteMyData)
	}
	return router
}

// fakeAuth stands in for the JWT middleware and injects the token subject.
func fakeAuth(authenticationID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticationID != "" {
			c.Set("authenticationId", authenticationID)
		}
		c.Next()
	}
}

func perform(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateAccountHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		result     string
		err        error
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name:       "created",
			path:       "/accounts/user1/user1@sonam.cloud",
			result:     "Account created successfully.  Check email for activating account",
			wantStatus: http.StatusCreated,
			wantKey:    "message",
			wantValue:  "Account created successfully.  Check email for activating account",
		},
		{
			name:       "duplicate active account",
			path:       "/accounts/user1/user1@sonam.cloud",
			err:        errors.New("Account is already active with authenticationId"),
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantValue:  "Account is already active with authenticationId",
		},
		{
			name:       "invalid email",
			path:       "/accounts/user1/not-an-email",
			wantStatus: http.StatusBadRequest,
			wantKey:    "error",
			wantValue:  "Invalid email format",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commands := &mockCommander{
				createAccount: func(cmd cqrs.CreateAccountCommand) (string, error) {
					assert.Equal(t, "user1", cmd.AuthenticationID)
					return tt.result, tt.err
				},
			}
			router := setupRouter(commands, &mockQuerier{})

			w := perform(router, http.MethodPost, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantValue, decodeBody(t, w)[tt.wantKey])
		})
	}
}

func TestActivateAccountHandler(t *testing.T) {
	commands := &mockCommander{
		activateAccount: func(cmd cqrs.ActivateAccountCommand) (string, error) {
			assert.Equal(t, "user1", cmd.AuthenticationID)
			assert.Equal(t, "abcDEF1234", cmd.Secret)
			return "account activated", nil
		},
	}
	router := setupRouter(commands, &mockQuerier{})

	w := perform(router, http.MethodPut, "/accounts/activate/user1/abcDEF1234", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "account activated", decodeBody(t, w)["message"])
}

func TestActivateAccountHandlerWorkflowError(t *testing.T) {
	commands := &mockCommander{
		activateAccount: func(cmd cqrs.ActivateAccountCommand) (string, error) {
			return "", errors.New("secret has expired")
		},
	}
	router := setupRouter(commands, &mockQuerier{})

	w := perform(router, http.MethodPut, "/accounts/activate/user1/stale12345", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "secret has expired", decodeBody(t, w)["error"])
}

func TestIsAccountActiveHandler(t *testing.T) {
	queries := &mockQuerier{
		isAccountActive: func(q cqrs.AccountActiveQuery) (string, error) {
			assert.Equal(t, "user1", q.AuthenticationID)
			return "Account active status is true", nil
		},
	}
	router := setupRouter(&mockCommander{}, queries)

	w := perform(router, http.MethodGet, "/accounts/active/user1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Account active status is true", decodeBody(t, w)["message"])
}

func TestValidateSecretHandler(t *testing.T) {
	queries := &mockQuerier{
		validateLoginSecret: func(q cqrs.ValidateSecretQuery) (string, error) {
			if q.Secret == "abcDEF1234" {
				return "passwordsecret matches", nil
			}
			return "", errors.New("secret does not match")
		},
	}
	router := setupRouter(&mockCommander{}, queries)

	w := perform(router, http.MethodPut, "/accounts/validate/secret/user1/abcDEF1234", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "passwordsecret matches", decodeBody(t, w)["message"])

	w = perform(router, http.MethodPut, "/accounts/validate/secret/user1/wrong12345", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "secret does not match", decodeBody(t, w)["error"])
}

func TestEmailActivationLinkHandlers(t *testing.T) {
	commands := &mockCommander{
		emailActivationLink: func(cmd cqrs.EmailActivationLinkCommand) (string, error) {
			assert.Equal(t, "user1", cmd.AuthenticationID)
			return "Email activation link has been sent", nil
		},
		emailActivationLinkByEmail: func(cmd cqrs.EmailActivationLinkByEmailCommand) (string, error) {
			assert.Equal(t, "user1@sonam.cloud", cmd.Email)
			return "Email activation link has been sent", nil
		},
	}
	router := setupRouter(commands, &mockQuerier{})

	w := perform(router, http.MethodPut, "/accounts/emailactivationlink/user1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Email activation link has been sent", decodeBody(t, w)["message"])

	w = perform(router, http.MethodPut, "/accounts/emailactivationlink/email/user1@sonam.cloud", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodPut, "/accounts/emailactivationlink/email/not-an-email", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email format", decodeBody(t, w)["error"])
}

func TestEmailMySecretHandlers(t *testing.T) {
	commands := &mockCommander{
		emailMySecret: func(cmd cqrs.EmailSecretCommand) (string, error) {
			return "", errors.New("Account is not active or does not exist")
		},
		emailMySecretByEmail: func(cmd cqrs.EmailSecretByEmailCommand) (string, error) {
			assert.Equal(t, "user1@sonam.cloud", cmd.Email)
			return "email sent", nil
		},
	}
	router := setupRouter(commands, &mockQuerier{})

	w := perform(router, http.MethodPut, "/accounts/emailmysecret/user1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Account is not active or does not exist", decodeBody(t, w)["error"])

	w = perform(router, http.MethodPut, "/accounts/emailmysecret/email/user1@sonam.cloud", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "email sent", decodeBody(t, w)["message"])
}

func TestSendLoginIDHandler(t *testing.T) {
	commands := &mockCommander{
		sendLoginID: func(cmd cqrs.SendLoginIDCommand) (string, error) {
			assert.Equal(t, "user1@sonam.cloud", cmd.Email)
			return "email sent", nil
		},
	}
	router := setupRouter(commands, &mockQuerier{})

	w := perform(router, http.MethodPut, "/accounts/email/authenticationId/user1@sonam.cloud", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "email sent", decodeBody(t, w)["message"])
}

func TestUpdatePasswordHandler(t *testing.T) {
	commands := &mockCommander{
		updatePassword: func(cmd cqrs.UpdatePasswordCommand) (string, error) {
			assert.Equal(t, "user1@sonam.cloud", cmd.Email)
			assert.Equal(t, "abcDEF1234", cmd.Secret)
			assert.Equal(t, "newPassword1", cmd.Password)
			return "password updated", nil
		},
	}
	router := setupRouter(commands, &mockQuerier{})

	body, _ := json.Marshal(map[string]string{"password": "newPassword1"})
	w := perform(router, http.MethodPut, "/accounts/password/user1@sonam.cloud/abcDEF1234", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "password updated", decodeBody(t, w)["message"])
}

func TestUpdatePasswordHandlerValidation(t *testing.T) {
	router := setupRouter(&mockCommander{}, &mockQuerier{})

	tests := []struct {
		name string
		body []byte
	}{
		{"malformed json", []byte("{")},
		{"missing password", []byte(`{}`)},
		{"password too short", []byte(`{"password": "short"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodPut, "/accounts/password/user1@sonam.cloud/abcDEF1234", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestDeleteExpiredAccountHandler(t *testing.T) {
	commands := &mockCommander{
		deleteExpiredAccount: func(cmd cqrs.DeleteExpiredAccountCommand) (string, error) {
			assert.Equal(t, "user1@sonam.cloud", cmd.Email)
			return "deleted authenticationId that is active false", nil
		},
	}
	router := setupRouter(commands, &mockQuerier{})

	w := perform(router, http.MethodDelete, "/accounts/email/user1@sonam.cloud", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deleted authenticationId that is active false", decodeBody(t, w)["message"])
}

func TestDeleteMyDataHandler(t *testing.T) {
	commands := &mockCommander{
		deleteMyData: func(cmd cqrs.DeleteMyDataCommand) (string, error) {
			assert.Equal(t, "tokenuser", cmd.AuthenticationID)
			return "account deleted with userid", nil
		},
	}
	router := setupRouter(commands, &mockQuerier{})

	w := perform(router, http.MethodDelete, "/accounts/delete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "account deleted with userid", decodeBody(t, w)["message"])
}

func TestDeleteMyDataHandlerUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAccountHandler(&mockCommander{}, &mockQuerier{})
	router := gin.New()
	router.DELETE("/accounts/delete", fakeAuth(""), h.DeleteMyData)

	w := perform(router, http.MethodDelete, "/accounts/delete", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decodeBody(t, w)["error"])
}
