package complaint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlpAus/fame-list-backend/internal/platform/apperr"
	"github.com/SlpAus/fame-list-backend/internal/platform/remote"
)

func TestSubmit_Validation(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()
	svc := NewService(srv.URL, remote.NewClientWith(srv.Client()))

	cases := []Complaint{
		{TargetUser: "u", Reason: "r"},
		{Telegram: "@me", Reason: "r"},
		{Telegram: "@me", TargetUser: "u", Reason: "   "},
	}
	for _, c := range cases {
		err := svc.Submit(context.Background(), c)
		assert.True(t, apperr.IsValidation(err))
	}
	assert.Zero(t, calls.Load())
}

func TestSubmit_SendsTrimmedBody(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()
	svc := NewService(srv.URL, remote.NewClientWith(srv.Client()))

	err := svc.Submit(context.Background(), Complaint{Telegram: " @me ", TargetUser: "@target", Reason: "wrong caste"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"telegram": "@me", "targetUser": "@target", "reason": "wrong caste"}, got)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	r := gin.New()
	r.POST("/api/complaints", NewHandler(NewService(srv.URL, remote.NewClientWith(srv.Client())), nil).Submit)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/complaints", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	valid := `{"telegram":"@me","targetUser":"@t","reason":"r"}`
	assert.Equal(t, http.StatusOK, post(valid).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"telegram":"@me"}`).Code)

	status.Store(http.StatusInternalServerError)
	assert.Equal(t, http.StatusBadGateway, post(valid).Code)
}
