package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-dashboard/apiclient"
	"restaurant-dashboard/cart"
	"restaurant-dashboard/orders"
	"restaurant-dashboard/statemachine"
	"restaurant-dashboard/views"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{&views.ValidationError{Fields: map[string]string{"name": "is required"}}, http.StatusUnprocessableEntity, "invalid input: name is required"},
		{fmt.Errorf("%w (2 linked orders)", views.ErrHasDependents), http.StatusConflict, ""},
		{views.ErrUnknownEntity, http.StatusNotFound, ""},
		{orders.ErrUnknownOrder, http.StatusNotFound, ""},
		{views.ErrNoPendingDelete, http.StatusBadRequest, ""},
		{statemachine.ErrOverrideDenied, http.StatusForbidden, ""},
		{statemachine.ErrTerminal, http.StatusUnprocessableEntity, ""},
		{fmt.Errorf("%w: nope", statemachine.ErrInvalidTransition), http.StatusUnprocessableEntity, ""},
		{cart.ErrEmptyCart, http.StatusBadRequest, ""},
		{&apiclient.HTTPError{Status: http.StatusConflict, Message: "Email already registered"}, http.StatusConflict, "Email already registered"},
		{&apiclient.NetworkError{Method: "GET", URL: "http://api", Err: errors.New("refused")}, http.StatusBadGateway, "Unable to reach the server. Check your connection and try again."},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		respondError(c, tc.err, gin.H{"page": "x"})
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotNil(t, body["view"])
		if tc.msg != "" {
			assert.Equal(t, tc.msg, body["error"])
		}
	}
}

func TestRespondError_CanceledWritesNoBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	respondError(c, fmt.Errorf("list: %w", context.Canceled), nil)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, 499, rec.Code)
	assert.Empty(t, rec.Body.String())
}
