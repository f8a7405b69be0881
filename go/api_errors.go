package orderserver

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	orderapp "github.com/Apurer/go-gin-order-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-order-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	userapp "github.com/Apurer/go-gin-order-api/internal/domains/users/application"
	apierrors "github.com/Apurer/go-gin-order-api/internal/shared/errors"
)

var responder = apierrors.NewChainedResponder("", mapOrderError, mapUserError)

func errInvalidID(param string) error {
	return fmt.Errorf("path parameter %q must be a positive integer", param)
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderports.ErrNotFound):
		return apierrors.NewNotFoundProblem("order", err.Error()), true
	case errors.Is(err, orderports.ErrItemNotFound):
		return apierrors.NewNotFoundProblem("order item", err.Error()), true
	case errors.Is(err, orderports.ErrUserNotFound):
		return apierrors.NewNotFoundProblem("user", err.Error()), true
	case errors.Is(err, orderapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, orderapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, orderapp.ErrInvalidInput), errors.Is(err, orderdomain.ErrInvalidStatus):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapUserError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, userapp.ErrAuthentication):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrAdminConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	responder.BadRequest(c, err.Error())
}

func respondUnauthenticated(c *gin.Context, err error) {
	responder.Respond(c, apierrors.ErrUnauthorized.WithDetail(err.Error()))
}
