package utils

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TimestampLayout - формат метки времени в именах записей (YYYYMMDD_HHMMSS)
const TimestampLayout = "20060102_150405"

const maxFilenameLength = 200

// Имена устройств Windows, которые нельзя использовать как имя файла
var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// FormatTimestamp форматирует t как YYYYMMDD_HHMMSS
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// SanitizeFilename превращает имя файла от клиента в безопасное базовое имя.
//
// Берётся только последний сегмент пути (разделители / и \), юникод
// приводится к ASCII через NFKD, пробелы заменяются на '_', остаются только
// [A-Za-z0-9._-]. Повторяющиеся точки схлопываются, точки и '_' по краям
// удаляются. Результат никогда не содержит разделителей пути и не равен
// "." или "..". Пустая строка означает, что безопасного имени не осталось.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	b.Grow(len(name))

	lastDot := false
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r > unicode.MaxASCII, unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			r = '_'
		case r == '.':
			if lastDot {
				continue
			}
		case r == '_', r == '-',
			'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		default:
			continue
		}
		lastDot = r == '.'
		b.WriteRune(r)
	}

	safe := strings.Trim(b.String(), "._")
	safe = strings.TrimLeft(safe, "-")

	if safe == "" {
		return ""
	}

	stem := strings.ToUpper(strings.SplitN(safe, ".", 2)[0])
	if windowsDeviceNames[stem] {
		safe = "_" + safe
	}

	if len(safe) > maxFilenameLength {
		ext := filepath.Ext(safe)
		if len(ext) >= maxFilenameLength {
			ext = ""
		}
		safe = strings.TrimRight(safe[:maxFilenameLength-len(ext)], "._") + ext
	}

	return safe
}

// FileExtension возвращает расширение (после последней точки) в нижнем
// регистре. ok == false, если точки в имени нет.
func FileExtension(filename string) (ext string, ok bool) {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return "", false
	}
	return strings.ToLower(filename[i+1:]), true
}

// AllowedExtension проверяет, что расширение filename входит в allowed.
// Возвращает найденное расширение.
func AllowedExtension(filename string, allowed []string) (string, bool) {
	ext, ok := FileExtension(filename)
	if !ok || ext == "" {
		return "", false
	}
	for _, a := range allowed {
		if ext == a {
			return ext, true
		}
	}
	return "", false
}

// WithSuffix вставляет "_suffix" перед расширением:
// WithSuffix("a.wav", "x1") == "a_x1.wav"
func WithSuffix(filename, suffix string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "_" + suffix + ext
}
