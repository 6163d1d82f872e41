// Package telegram publishes rendered charts to a Telegram chat.
package telegram

import (
	"fmt"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// maxSizePhoto is the largest chart still sent as a photo; bigger ones go as
// documents so Telegram does not recompress them.
const maxSizePhoto = 150000

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Sender struct {
	api    sender
	chatID int64
	logger *log.Logger
}

func NewSender(token string, chatID int64, logger *log.Logger) (*Sender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("tg error: %w", err)
	}
	logger.Info("authorized on account", "user", api.Self.UserName)
	return &Sender{api: api, chatID: chatID, logger: logger}, nil
}

// SendChart отправляет график в чат с подписью.
func (s *Sender) SendChart(fileName string, data []byte, title string) error {
	file := tgbotapi.FileBytes{Name: fileName, Bytes: data}
	caption := generateCaption(title, len(data))

	var msg tgbotapi.Chattable
	if len(data) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(s.chatID, file)
		photo.Caption = caption
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(s.chatID, file)
		doc.Caption = caption
		msg = doc
	}
	if _, err := s.api.Send(msg); err != nil {
		s.logger.Error("error sending chart", "file", fileName, "err", err)
		errMsg := tgbotapi.NewMessage(s.chatID, fmt.Sprintf("Не удалось отправить график %s. Ошибка: %v", title, err))
		if _, sendErr := s.api.Send(errMsg); sendErr != nil {
			s.logger.Error("error sending error message", "chat", s.chatID, "err", sendErr)
		}
		return fmt.Errorf("error sending chart %s: %w", fileName, err)
	}
	return nil
}

// generateCaption stays within the 1024 character limit of Telegram captions.
func generateCaption(title string, size int) string {
	caption := title
	if size >= maxSizePhoto {
		caption += "\nФайл отправлен документом без сжатия."
	}
	if r := []rune(caption); len(r) > 1024 {
		caption = string(r[:1021]) + "..."
	}
	return caption
}
