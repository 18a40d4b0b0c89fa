// Package notify delivers operator-facing messages. Delivery failures
// are the caller's to log; they never influence trading state.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"band-trading-bot/internal/api"
	"band-trading-bot/internal/faults"
	"band-trading-bot/internal/interfaces"
)

const telegramBaseURL = "https://api.telegram.org"

// Telegram sends messages and documents through the Telegram bot API.
type Telegram struct {
	botToken string
	chatID   string
	api      *api.Client
	http     *http.Client
}

var _ interfaces.Notifier = (*Telegram)(nil)

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		api:      api.NewClient(api.WithTimeout(10 * time.Second)),
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether credentials are configured.
func (t *Telegram) Enabled() bool {
	return t.botToken != "" && t.chatID != ""
}

func (t *Telegram) SendMessage(ctx context.Context, text string) error {
	if !t.Enabled() {
		return nil
	}

	payload := map[string]interface{}{
		"chat_id": t.chatID,
		"text":    text,
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", telegramBaseURL, t.botToken)
	if _, err := t.api.POST(ctx, endpoint, payload); err != nil {
		return faults.Notify("telegram.sendMessage", err)
	}
	return nil
}

// SendDocument uploads a local file with a caption as multipart form
// data.
func (t *Telegram) SendDocument(ctx context.Context, path, caption string) error {
	if !t.Enabled() {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return faults.Notify("telegram.sendDocument", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", t.chatID); err != nil {
		return faults.Notify("telegram.sendDocument", err)
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return faults.Notify("telegram.sendDocument", err)
		}
	}
	part, err := w.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return faults.Notify("telegram.sendDocument", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return faults.Notify("telegram.sendDocument", err)
	}
	if err := w.Close(); err != nil {
		return faults.Notify("telegram.sendDocument", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendDocument", telegramBaseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return faults.Notify("telegram.sendDocument", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.http.Do(req)
	if err != nil {
		return faults.Notify("telegram.sendDocument", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return faults.Notify("telegram.sendDocument",
			fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(body)))
	}
	return nil
}
