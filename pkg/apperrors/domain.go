package apperrors

import "net/http"

// --- Uploads ---

// ErrNoFileProvided - тело запроса пустое (raw-режим).
var ErrNoFileProvided = New(
	CodeNoFileProvided,
	"validation",
	"No file uploaded",
	http.StatusBadRequest,
)

// ErrMissingFilePart - в multipart-форме нет поля с файлом.
var ErrMissingFilePart = New(
	CodeMissingFilePart,
	"validation",
	"No audio file part",
	http.StatusBadRequest,
)

// ErrNoFileSelected - поле есть, но имя файла пустое.
var ErrNoFileSelected = New(
	CodeNoFileSelected,
	"validation",
	"No selected file",
	http.StatusBadRequest,
)

// ErrInvalidFileType - расширение файла не разрешено.
var ErrInvalidFileType = New(
	CodeInvalidFileType,
	"validation",
	"Invalid file type",
	http.StatusBadRequest,
)

// ErrPayloadTooLarge - тело запроса больше upload.max_size.
var ErrPayloadTooLarge = New(
	CodePayloadTooLarge,
	"request",
	"File too large",
	http.StatusRequestEntityTooLarge, // 413
)

// ErrStorageWriteFailed - не удалось записать файл.
// Клиент видит только общее сообщение, причина уходит в лог.
var ErrStorageWriteFailed = New(
	CodeStorageWriteFailed,
	"storage",
	"File upload failed",
	http.StatusInternalServerError,
)

// ErrRateLimited - клиент превысил лимит запросов.
var ErrRateLimited = New(
	CodeRateLimited,
	"request",
	"Too many requests",
	http.StatusTooManyRequests, // 429
)
