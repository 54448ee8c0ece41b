package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/auth"
	"github.com/01moynul/storefront-fulfillment/internal/badges"
	"github.com/01moynul/storefront-fulfillment/internal/cart"
	"github.com/01moynul/storefront-fulfillment/internal/demo"
	"github.com/01moynul/storefront-fulfillment/internal/inventory"
	"github.com/01moynul/storefront-fulfillment/internal/middleware"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/orders"
	"github.com/01moynul/storefront-fulfillment/internal/reviews"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"github.com/01moynul/storefront-fulfillment/internal/tickets"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SessionCookie describes the cookie login sets.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Auth      *auth.Service
	Tokens    *auth.TokenManager
	Products  store.ProductStore
	Orders    *orders.QueryService
	Engine    *orders.Engine
	Inventory *inventory.Reader
	Reviews   *reviews.Service
	Tickets   *tickets.Service
	Cart      *cart.Service
	Badges    *badges.Reporter

	Cookie SessionCookie
	// DemoAccounts is listed by /auth/demo-users when non-empty.
	DemoAccounts []demo.Account
	Logger       *zap.Logger
}

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			// Report fields by their wire names.
			v.RegisterTagNameFunc(func(field reflect.StructField) string {
				for _, tag := range []string{"json", "form"} {
					name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
					if name != "" && name != "-" {
						return name
					}
				}
				return field.Name
			})
			_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
				return strings.TrimSpace(fl.Field().String()) != ""
			})
		}
	})
}

// respondError is the one place expected failures become {status, message}.
// Internal causes are logged and never shown.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal(err)
	}
	if appErr.Kind == apperr.KindInternal {
		h.Logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		_ = c.Error(err)
	}
	status := appErr.Kind.HTTPStatus()
	c.JSON(status, gin.H{"status": status, "message": appErr.Message})
}

// respondBindError reports a malformed or invalid request body as a 400.
func (h *Handlers) respondBindError(c *gin.Context, err error) {
	h.respondError(c, apperr.Validation(bindingMessage(err)))
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Field()
		switch fe.Tag() {
		case "required", "notblank":
			return fmt.Sprintf("%s is required", field)
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
		case "min", "gte":
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "max", "lte":
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		case "email":
			return fmt.Sprintf("%s must be a valid email address", field)
		}
		return fmt.Sprintf("%s is invalid", field)
	}
	return "Invalid request body"
}

func (h *Handlers) actor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		h.respondError(c, apperr.Unauthorized(apperr.MsgUnauthorized))
	}
	return actor, ok
}

func (h *Handlers) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(c, apperr.Validationf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

func ok(c *gin.Context, payload gin.H) {
	payload["status"] = http.StatusOK
	c.JSON(http.StatusOK, payload)
}
