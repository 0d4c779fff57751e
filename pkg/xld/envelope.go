package xld

import "encoding/json"

// Envelope is the uniform wrapper of every API response.
// A response is successful only when its status is 2xx and Data is non-null.
type Envelope[T any] struct {
	Message   string `json:"message"`
	Data      *T     `json:"data"`
	Copyright string `json:"copyright"`
}

// authResponse is the body of /authenticate, which is not enveloped
type authResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

func decodeEnvelope[T any](body []byte) (*Envelope[T], error) {
	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// unwrap returns the envelope data or an *APIError built from the status and
// the envelope message, falling back to defaultMessage.
func (e *Envelope[T]) unwrap(statusCode int, defaultMessage string) (*T, error) {
	if !isSuccess(statusCode) || e.Data == nil {
		return nil, NewAPIError(messageOr(e.Message, defaultMessage), statusCode)
	}
	return e.Data, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
