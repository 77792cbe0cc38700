package dashboard

import (
	"errors"
	"fmt"

	"github.com/andresuchdata/reorder-dashboard/internal/client"
)

var (
	ErrDeleteDeclined       = errors.New("confirmation required")
	ErrSimulationInProgress = errors.New("a simulation is already running")
	ErrExportInProgress     = errors.New("an export is already running")
)

const loadFailedMessage = "Failed to load data. Make sure the API is running."

// DeletePrompt is the question a Confirmer is asked before a delete.
func DeletePrompt(productID string) string {
	return fmt.Sprintf("Are you sure you want to delete product: %s?", productID)
}

// ErrorMessage is the single line shown to the user for err. Server
// messages pass through unchanged; other client errors are shown without
// the controller's own wrapping.
func ErrorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return netErr.Error()
	}
	var decodeErr *client.DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Error()
	}
	return err.Error()
}

func reloadMessage(err error) string {
	if client.IsNetworkError(err) {
		return loadFailedMessage
	}
	return ErrorMessage(err)
}
