package users

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestRouter(store *memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	service := NewService(store, logger)
	handlers := NewUserHandlers(service, logger)

	router := gin.New()
	api := router.Group("/api")
	handlers.RegisterRoutes(api)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeUser(t *testing.T, w *httptest.ResponseRecorder) UserResponse {
	t.Helper()

	var user UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	return user
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

func TestCreateUserEndpoint(t *testing.T) {
	t.Run("ValidRequestCreates", func(t *testing.T) {
		router := newTestRouter(newMemStore())

		w := doRequest(t, router, http.MethodPost, "/api/users",
			`{"name":"Ana","email":"ana@x.com","age":25}`)
		require.Equal(t, http.StatusCreated, w.Code)

		user := decodeUser(t, w)
		assert.Equal(t, "Ana", user.Name)
		assert.Equal(t, "ana@x.com", user.Email)
		assert.Equal(t, 25, user.Age)
		assert.NotEmpty(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("InvalidFieldsRejected", func(t *testing.T) {
		store := newMemStore()
		router := newTestRouter(store)

		cases := []struct {
			name string
			body string
		}{
			{"EmptyName", `{"name":"","email":"ana@x.com","age":25}`},
			{"ShortName", `{"name":"A","email":"ana@x.com","age":25}`},
			{"MalformedEmail", `{"name":"Ana","email":"not-an-email","age":25}`},
			{"ZeroAge", `{"name":"Ana","email":"ana@x.com","age":0}`},
			{"NegativeAge", `{"name":"Ana","email":"ana@x.com","age":-3}`},
			{"AgeOverLimit", `{"name":"Ana","email":"ana@x.com","age":151}`},
			{"NotJSON", `{"name":`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				w := doRequest(t, router, http.MethodPost, "/api/users", tc.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.NotEmpty(t, decodeMessage(t, w))
			})
		}

		// Nothing was persisted
		assert.Empty(t, store.docs)
	})

	t.Run("DuplicateEmailConflicts", func(t *testing.T) {
		router := newTestRouter(newMemStore())

		w := doRequest(t, router, http.MethodPost, "/api/users",
			`{"name":"Ana","email":"ana@x.com","age":25}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(t, router, http.MethodPost, "/api/users",
			`{"name":"Other","email":"ana@x.com","age":30}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NotEmpty(t, decodeMessage(t, w))
	})
}

func TestGetUserEndpoints(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(t, router, http.MethodPost, "/api/users",
		`{"name":"Ana","email":"ana@x.com","age":25}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeUser(t, w)

	t.Run("ByID", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/users/"+created.ID, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created, decodeUser(t, w))
	})

	t.Run("ByEmail", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/users/email/"+url.PathEscape("ana@x.com"), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created, decodeUser(t, w))
	})

	t.Run("ListAll", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/users", "")
		require.Equal(t, http.StatusOK, w.Code)

		var list []UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, created, list[0])
	})

	t.Run("UnknownIDIs404", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/users/"+primitive.NewObjectID().Hex(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NotEmpty(t, decodeMessage(t, w))
	})

	t.Run("MalformedIDIs404", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/users/not-an-id", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UnknownEmailIs404", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/api/users/email/nobody@x.com", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSearchUsersEndpoint(t *testing.T) {
	t.Run("MissingNameIs400WithoutStoreCall", func(t *testing.T) {
		store := newMemStore()
		router := newTestRouter(store)

		w := doRequest(t, router, http.MethodGet, "/api/users/search", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doRequest(t, router, http.MethodGet, "/api/users/search?name=", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doRequest(t, router, http.MethodGet, "/api/users/search?name=%20%20", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		assert.Zero(t, store.searchCalls)
	})

	t.Run("SubstringMatchIncludesUser", func(t *testing.T) {
		router := newTestRouter(newMemStore())

		w := doRequest(t, router, http.MethodPost, "/api/users",
			`{"name":"Anabela","email":"ana@x.com","age":25}`)
		require.Equal(t, http.StatusCreated, w.Code)
		created := decodeUser(t, w)

		w = doRequest(t, router, http.MethodGet, "/api/users/search?name=abel", "")
		require.Equal(t, http.StatusOK, w.Code)

		var list []UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)
	})

	t.Run("NoMatchIsEmptyArray", func(t *testing.T) {
		router := newTestRouter(newMemStore())

		w := doRequest(t, router, http.MethodGet, "/api/users/search?name=zzz", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestUpdateUserEndpoint(t *testing.T) {
	t.Run("PartialUpdate", func(t *testing.T) {
		router := newTestRouter(newMemStore())

		w := doRequest(t, router, http.MethodPost, "/api/users",
			`{"name":"Ana","email":"ana@x.com","age":25}`)
		require.Equal(t, http.StatusCreated, w.Code)
		created := decodeUser(t, w)

		w = doRequest(t, router, http.MethodPut, "/api/users/"+created.ID, `{"age":26}`)
		require.Equal(t, http.StatusOK, w.Code)

		updated := decodeUser(t, w)
		assert.Equal(t, 26, updated.Age)
		assert.Equal(t, "Ana", updated.Name)
		assert.Equal(t, "ana@x.com", updated.Email)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("UnknownIDIs404", func(t *testing.T) {
		router := newTestRouter(newMemStore())

		w := doRequest(t, router, http.MethodPut, "/api/users/"+primitive.NewObjectID().Hex(), `{"age":26}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidFieldIs400", func(t *testing.T) {
		router := newTestRouter(newMemStore())

		w := doRequest(t, router, http.MethodPut, "/api/users/"+primitive.NewObjectID().Hex(), `{"age":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("TakenEmailIs409", func(t *testing.T) {
		router := newTestRouter(newMemStore())

		w := doRequest(t, router, http.MethodPost, "/api/users",
			`{"name":"Ana","email":"ana@x.com","age":25}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(t, router, http.MethodPost, "/api/users",
			`{"name":"Bea","email":"bea@x.com","age":30}`)
		require.Equal(t, http.StatusCreated, w.Code)
		second := decodeUser(t, w)

		w = doRequest(t, router, http.MethodPut, "/api/users/"+second.ID, `{"email":"ana@x.com"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeleteUserEndpoint(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(t, router, http.MethodPost, "/api/users",
		`{"name":"Ana","email":"ana@x.com","age":25}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeUser(t, w)

	w = doRequest(t, router, http.MethodDelete, "/api/users/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	w = doRequest(t, router, http.MethodDelete, "/api/users/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/users/not-an-id", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserLifecycle(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(t, router, http.MethodPost, "/api/users",
		`{"name":"Ana","email":"ana@x.com","age":25}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeUser(t, w)

	w = doRequest(t, router, http.MethodGet, "/api/users/email/ana@x.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeUser(t, w))

	w = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/users/%s", created.ID), `{"age":26}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeUser(t, w)
	assert.Equal(t, 26, updated.Age)
	assert.Equal(t, "Ana", updated.Name)

	w = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/users/%s", created.ID), "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/users/%s", created.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
