package dto

const (
	StatusSuccess          = "success"
	MessageUploadSucceeded = "File uploaded successfully"
)

// ============================================
// RESPONSE STRUCTURES
// ============================================

// UploadResponse - ответ на успешную загрузку записи
type UploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// NewUploadResponse собирает успешный ответ для сохранённого файла
func NewUploadResponse(filename string) *UploadResponse {
	return &UploadResponse{
		Status:   StatusSuccess,
		Filename: filename,
		Message:  MessageUploadSucceeded,
	}
}

// HealthResponse - ответ /health
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
