package serr

import (
	"errors"
	"fmt"
	"log/slog"

	"inventory/internal/storage"
)

func Ferr(op string, err string) error {
	return fmt.Errorf("%s: %s", op, err)
}

func LogFerr(err error, op, logErr string, log *slog.Logger) (bool, error) {
	if err != nil {
		log.Error(
			logErr,
			slog.String("op", op),
			slog.String("error", err.Error()))
		return false, fmt.Errorf("%s: %s: %w", op, logErr, err)
	}
	return true, nil
}

// Gerr handles an error coming back from a record store. Not-found errors
// are logged at debug level and keep storage.ErrAppNotFound in the chain;
// anything else is logged as a failure.
func Gerr(op, errNotFound, errStd string, log *slog.Logger, storeErr error) (bool, error) {
	if storeErr != nil {
		if errors.Is(storeErr, storage.ErrAppNotFound) {
			log.Debug(
				errNotFound,
				slog.String("op", op),
				slog.String("error", storeErr.Error()))
			return false, fmt.Errorf("%s: %w", op, storage.ErrAppNotFound)
		}
		log.Error(
			errStd,
			slog.String("op", op),
			slog.String("error", storeErr.Error()))
		return false, fmt.Errorf("%s: %s: %w", op, errStd, storeErr)
	}

	return true, nil
}
