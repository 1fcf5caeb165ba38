package response

// messages holds one format per code, in code order.
var messages = map[ErrCode]string{
	ErrCodeMalformedJSON:        "The JSON you provided was not well-formed or did not validate against our published format.",
	ErrCodeRequestBody:          "Request body is empty.",
	ErrCodeResourceExists:       "Resource %s already exists.",
	ErrCodeResourceNotFound:     "Resource %s not found.",
	ErrCodeInvalidConfiguration: "Invalid configuration: %s",
	ErrCodeGenerationFailed:     "Generation failed: %s",
	ErrCodeUnsupportedBoard:     "Unsupported board %q, expected one of: %s.",
}

var ErrMalformedJSON = &responseError{
	Code:    ErrCodeMalformedJSON,
	Message: messages[ErrCodeMalformedJSON],
}

var ErrRequestBody = &responseError{
	Code:    ErrCodeRequestBody,
	Message: messages[ErrCodeRequestBody],
}
