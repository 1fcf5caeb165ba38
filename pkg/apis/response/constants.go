package response

type ErrCode int

// New codes go at the end, with a message in messages.
const (
	_                           ErrCode = 10000 + iota
	ErrCodeMalformedJSON                // 10001
	ErrCodeRequestBody                  // 10002
	ErrCodeResourceExists               // 10003
	ErrCodeResourceNotFound             // 10004
	ErrCodeInvalidConfiguration         // 10005
	ErrCodeGenerationFailed             // 10006
	ErrCodeUnsupportedBoard             // 10007
)
