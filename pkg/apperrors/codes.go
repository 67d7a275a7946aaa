package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// Общие коды ошибок
const (
	// Системные ошибки
	CodeInternalError ErrorCode = "INTERNAL_ERROR"

	// Ошибки запроса
	CodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Коды загрузки записей
const (
	CodeNoFileProvided     ErrorCode = "NO_FILE_PROVIDED"
	CodeMissingFilePart    ErrorCode = "MISSING_FILE_PART"
	CodeNoFileSelected     ErrorCode = "NO_FILE_SELECTED"
	CodeInvalidFileType    ErrorCode = "INVALID_FILE_TYPE"
	CodePayloadTooLarge    ErrorCode = "PAYLOAD_TOO_LARGE"
	CodeStorageWriteFailed ErrorCode = "STORAGE_WRITE_FAILED"
)
