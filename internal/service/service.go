// Package service implements the bookstore's use cases on top of the store:
// the auth gate, catalog management, carts and order placement.
package service

import (
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
	"github.com/pagebound/bookstore-server/internal/logger"
	"github.com/pagebound/bookstore-server/internal/store"
	"github.com/pagebound/bookstore-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// mapStoreError translates store errors into domain errors. Domain errors pass
// through unchanged; anything unrecognised is a persistence failure.
func mapStoreError(err error, action string) error {
	if err == nil {
		return nil
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		switch storeErr.Code {
		case http.StatusNotFound:
			return domainerrors.NotFound(storeErr.Message)
		case http.StatusConflict:
			return domainerrors.AlreadyExists(storeErr.Message)
		case http.StatusBadRequest:
			return domainerrors.Validation(storeErr.Message)
		}
	}

	return domainerrors.Persistence(err, "failed to "+action)
}

// orDiscard lets services be constructed with a nil logger.
func orDiscard(l *slog.Logger) *slog.Logger {
	return logger.OrDiscard(l)
}
