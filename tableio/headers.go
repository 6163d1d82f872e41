package tableio

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}\.\d+$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(Z|[+-]\d{2}:\d{2})$`),
}

func isDate(text string) bool {
	for _, p := range datePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// HeaderLooksLikeData reports whether the first row is more likely a data row
// than a header.
func HeaderLooksLikeData(firstRow []string) bool {
	if len(firstRow) == 0 {
		return true
	}
	headerLikeCount := 0
	for _, field := range firstRow {
		if isLikelyHeader(field) {
			headerLikeCount++
		}
	}
	return float64(headerLikeCount)/float64(len(firstRow)) < 0.5
}

// isLikelyHeader определяет, похож ли текст на заголовок
func isLikelyHeader(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return false
	}
	if isDate(text) {
		return false
	}

	letters, total := 0, 0
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			letters++
			total++
		case unicode.IsSpace(r):
		default:
			total++
		}
	}
	// Если букв больше 30% от всех символов - вероятно это заголовок
	return letters > 0 && float64(letters)/float64(total) >= 0.3
}

func generateColumnName(index int) string {
	return fmt.Sprintf("column_%d", index+1)
}

// ValidateHeaders проверяет и исправляет дубликаты в заголовках
func ValidateHeaders(headers []string) []string {
	seen := make(map[string]bool)
	result := make([]string, len(headers))

	for i, header := range headers {
		original := header
		counter := 1
		// Пока находим дубликаты, добавляем счетчик к имени
		for seen[header] {
			header = fmt.Sprintf("%s_%d", original, counter)
			counter++
		}
		seen[header] = true
		result[i] = header
	}
	return result
}

// isDateData проверяет, похожи ли данные на даты
func isDateData(values []string) bool {
	if len(values) == 0 {
		return false
	}
	dateCount := 0
	for _, value := range values {
		if isDate(strings.TrimSpace(value)) {
			dateCount++
		}
	}
	return float64(dateCount)/float64(len(values)) >= 0.8
}

var nonAlphanumeric = regexp.MustCompile("[^a-zA-Z0-9]+")

func replaceSpecialSymbols(input string) string {
	return strings.Trim(nonAlphanumeric.ReplaceAllString(input, "_"), "_")
}
