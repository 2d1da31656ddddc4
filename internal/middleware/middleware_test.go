package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
	"github.com/yigit/tutorledger/internal/pkg/auth"
	"github.com/yigit/tutorledger/internal/pkg/websession"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "middleware-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "tutorledger.test",
	})
}

func testSessions() *websession.Manager {
	return websession.NewManager(websession.Options{Name: "tl", Secret: "0123456789abcdef0123456789abcdef", MaxAge: 3600})
}

func newRouter(m *AuthMiddleware, sessions *websession.Manager) *gin.Engine {
	r := gin.New()
	r.Use(SessionContext(sessions))
	protected := r.Group("", m.JWTAuth())
	protected.GET("/whoami", func(c *gin.Context) {
		id := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID, "role": id.Role})
	})
	protected.GET("/teacher-only", m.RoleRequired(models.RoleTeacher), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTAuth_Bearer(t *testing.T) {
	jwtService := testJWT()
	r := newRouter(NewAuthMiddleware(jwtService, testSessions()), testSessions())

	pair, err := jwtService.GenerateTokenPair(&models.User{ID: 5, Username: "teacher", RoleType: models.RoleTeacher})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":5,"role":"TEACHER"}`, w.Body.String())
}

func TestJWTAuth_CookieSession(t *testing.T) {
	sessions := testSessions()
	r := newRouter(NewAuthMiddleware(testJWT(), sessions), sessions)

	login := httptest.NewRecorder()
	loginReq := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, sessions.SetIdentity(login, loginReq, 9, models.RoleParent))
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookies[len(cookies)-1])
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":9,"role":"PARENT"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/teacher-only", nil)
	req.AddCookie(cookies[len(cookies)-1])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeForbidden, resp.Error.Code)
	assert.Equal(t, RedirectHome, resp.RedirectTo)
}

func TestJWTAuth_Anonymous(t *testing.T) {
	sessions := testSessions()
	r := newRouter(NewAuthMiddleware(testJWT(), sessions), sessions)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, RedirectLogin, resp.RedirectTo)

	browser := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	browser.Header.Set("Accept", "text/html,application/xhtml+xml")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, browser)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RedirectLogin, w.Header().Get("Location"))
	assert.NotEmpty(t, w.Result().Cookies(), "an error flash is stored for the next view")
}

func TestJWTAuth_BadTokens(t *testing.T) {
	r := newRouter(NewAuthMiddleware(testJWT(), testSessions()), testSessions())

	for header, code := range map[string]dto.ErrorCode{
		"Basic abc":           dto.ErrorCodeInvalidToken,
		"Bearer not.a.jwt":    dto.ErrorCodeInvalidToken,
		"Bearer x.y.z.w.vvvv": dto.ErrorCodeInvalidToken,
	} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, code, decodeError(t, w).Error.Code, header)
	}
}

func TestHandleAPIError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{apperrors.NewForbiddenError("parents are not allowed to add sessions"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.NewDuplicateIdentityError("email", "a@b.c"), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.ErrParentNotFound, http.StatusUnprocessableEntity, dto.ErrorCodeParentNotFound},
		{apperrors.NewValidationError("date", "bad date"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
		HandleAPIError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, tc.code, decodeError(t, w).Error.Code, tc.err.Error())
	}
}

func TestHandleAPIError_CarriesFieldAndMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleAPIError(c, apperrors.NewValidationError("amount", "amount must have two decimals"))
	resp := decodeError(t, w)
	assert.Equal(t, "amount", resp.Error.Field)
	assert.Equal(t, "amount must have two decimals", resp.Error.Message)
}

func TestHandleAPIError_StoresFlash(t *testing.T) {
	sessions := testSessions()
	r := gin.New()
	r.Use(SessionContext(sessions))
	r.POST("/fail", func(c *gin.Context) {
		HandleAPIError(c, apperrors.ErrParentNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/fail", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[len(cookies)-1])
	flashes, err := sessions.Flashes(httptest.NewRecorder(), next)
	require.NoError(t, err)
	require.Len(t, flashes, 1)
	assert.Equal(t, websession.SeverityError, flashes[0].Severity)
}

func TestParamID(t *testing.T) {
	r := gin.New()
	r.GET("/students/:id", func(c *gin.Context) {
		id, ok := ParamID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/12", nil))
	assert.JSONEq(t, `{"id":12}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
