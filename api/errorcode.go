package api

var (
	errorMessageMap = map[int64]string{
		999:  "internal server error",
		1000: "invalid api token",

		1010: "invalid parameters",

		1100: "no case data available",
		1101: "refresh case data fail",
		1102: "case storage unavailable",
	}

	errorInternalServer    = errorJSON(999)
	errorInvalidAPIToken   = errorJSON(1000)
	errorInvalidParameters = errorJSON(1010)

	errorNoCaseData         = errorJSON(1100)
	errorRefreshFail        = errorJSON(1101)
	errorStorageUnavailable = errorJSON(1102)
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// errorJSON converts an error code to a standardized error object
func errorJSON(code int64) ErrorResponse {
	var message string
	if msg, ok := errorMessageMap[code]; ok {
		message = msg
	} else {
		message = "unknown"
	}

	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}
