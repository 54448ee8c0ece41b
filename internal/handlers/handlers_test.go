package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

func TestRespondErrorMapsKinds(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := &Handlers{Logger: zap.New(core)}

	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{apperr.InsufficientStock(), http.StatusConflict, apperr.MsgInsufficientStock},
		{apperr.Forbidden(apperr.MsgForbidden), http.StatusForbidden, apperr.MsgForbidden},
		{apperr.NotFound(apperr.MsgOrderNotFound), http.StatusNotFound, apperr.MsgOrderNotFound},
		{apperr.Validation("bad"), http.StatusBadRequest, "bad"},
		{errors.New("connection refused"), http.StatusInternalServerError, apperr.MsgInternal},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.respondError(c, tc.err)

		assert.Equal(t, tc.code, w.Code)
		assert.Contains(t, w.Body.String(), tc.msg)
		assert.NotContains(t, w.Body.String(), "connection refused")
	}
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestBindingMessageUsesWireNames(t *testing.T) {
	var input ProcessOrderInput
	err := binding.Validator.ValidateStruct(&input)

	assert.Equal(t, "order_id is required", bindingMessage(err))
	assert.Equal(t, "Invalid request body", bindingMessage(errors.New("unexpected EOF")))
}

func TestNotBlankValidator(t *testing.T) {
	input := ExperienceReviewInput{Text: "   "}
	err := binding.Validator.ValidateStruct(&input)

	assert.Equal(t, "review_text is required", bindingMessage(err))
}
