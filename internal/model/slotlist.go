package model

import (
	"encoding/json"
	"strings"
)

// slotListEnvelope текущий формат хранения каталога слотов.
// Поле MinPreferences осталось от старой схемы, теперь авторитетны
// границы min_faculty/max_faculty самого события
type slotListEnvelope struct {
	Slots          []string `json:"slots"`
	MinPreferences int      `json:"minPreferences,omitempty"`
}

// DecodeSlotList разбирает список слотов из любой исторической кодировки:
// структурный объект {"slots": [...]}, голый JSON-массив, JSON-строка
// или сырая строка с метками через запятую. Битые данные деградируют
// в пустой список, ошибки не возвращаются
func DecodeSlotList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	// Сначала пробуем текущий структурный формат
	var envelope slotListEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Slots != nil {
		return cleanSlotList(envelope.Slots)
	}

	// Старый формат: голый массив меток
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanSlotList(list)
	}

	// Совсем старый формат: строка с метками через запятую,
	// иногда дополнительно завёрнутая в JSON-строку
	joined := string(raw)
	var quoted string
	if err := json.Unmarshal(raw, &quoted); err == nil {
		joined = quoted
	}

	// В этой ветке принимаем только то, что похоже на метку слота
	var labels []string
	for _, s := range strings.Split(joined, ",") {
		if strings.Contains(s, ":") && strings.Contains(s, "-") {
			labels = append(labels, s)
		}
	}

	return cleanSlotList(labels)
}

// EncodeSlotList сериализует каталог слотов в текущий структурный формат
func EncodeSlotList(slots []string) ([]byte, error) {
	return json.Marshal(slotListEnvelope{Slots: cleanSlotList(slots)})
}

// cleanSlotList убирает пробелы и пустые элементы
func cleanSlotList(slots []string) []string {
	cleaned := make([]string, 0, len(slots))
	for _, s := range slots {
		s = strings.ReplaceAll(s, " ", "")
		if s == "" || strings.ContainsAny(s, "{}[]\"") {
			continue
		}
		cleaned = append(cleaned, s)
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
