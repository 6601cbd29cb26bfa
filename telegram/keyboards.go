package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BuildQuestionKeyboard lays out one option per row plus a hint button.
// Callback data carries the round ID and the option index (Telegram caps
// callback data at 64 bytes); the option text is recovered from the
// message's own reply markup when the callback arrives.
func BuildQuestionKeyboard(roundID string, options []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options)+1)
	for i, option := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, fmt.Sprintf("answer|%s|%d", roundID, i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💡 Hint", fmt.Sprintf("hint|%s", roundID)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// optionTextFromMarkup resolves an option index back to its text using the
// keyboard attached to the question message. Returns "" when the index does
// not point at an answer row, e.g. on a stale or tampered callback.
func optionTextFromMarkup(markup *tgbotapi.InlineKeyboardMarkup, index int) string {
	if markup == nil || index < 0 || index >= len(markup.InlineKeyboard) {
		return ""
	}
	row := markup.InlineKeyboard[index]
	if len(row) == 0 || row[0].CallbackData == nil || !strings.HasPrefix(*row[0].CallbackData, "answer|") {
		return ""
	}
	return row[0].Text
}
