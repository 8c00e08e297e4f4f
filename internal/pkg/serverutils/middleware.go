// FILE: internal/pkg/serverutils/middleware.go
package serverutils

import (
	"errors"
	"os"
	"strings"

	"culqi-payments-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ErrorHandlerMiddleware maps domain errors bubbling out of handlers to HTTP
// responses so controllers only translate the happy path.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		switch {
		case apperrors.IsValidation(err):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, err.Error()))
		case apperrors.IsNotFound(err):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(404, err.Error()))
		case apperrors.IsStateConflict(err):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(409, err.Error()))
		case errors.Is(err, apperrors.ErrVerificationFailed), errors.Is(err, apperrors.ErrUnsignedEvent):
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, err.Error()))
		case apperrors.IsUnavailable(err):
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(502, err.Error()))
		case apperrors.IsGatewayError(err):
			var gwErr *apperrors.GatewayError
			errors.As(err, &gwErr)
			status := gwErr.Status
			if status < 400 || status > 599 {
				status = fiber.StatusUnprocessableEntity
			}
			return ctx.Status(status).JSON(ErrorResponse(status, gwErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, err.Error()))
	}
}

// JwtMiddleware guards management endpoints. The webhook endpoint never uses
// it, gateways authenticate through the signature header instead.
func JwtMiddleware(ctx *fiber.Ctx) error {
	header := ctx.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing or invalid authorization header"))
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid or expired token"))
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if sub, subErr := claims.GetSubject(); subErr == nil {
			ctx.Locals("userId", sub)
		}
	}

	return ctx.Next()
}
